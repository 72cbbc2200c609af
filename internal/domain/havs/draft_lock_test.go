package havs_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"fieldops-app/internal/domain/havs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestLoadDraftWeek_LocksRowOnPostgres(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=fieldops dbname=fieldops sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		sqls []string
	)
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture", func(d *gorm.DB) {
		mu.Lock()
		defer mu.Unlock()
		sqls = append(sqls, d.Statement.SQL.String())
	}))

	_, err = havs.LoadDraftWeek(db, 1, "week-1")
	require.NoError(t, err)

	require.Len(t, sqls, 1)
	assert.True(t, strings.HasSuffix(sqls[0], "FOR UPDATE"), sqls[0])
}

func TestLoadDraftWeek_DoesNotLeakLockIntoLaterQueries(t *testing.T) {
	f := newFixture(t)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		w, err := havs.LoadDraftWeek(tx, f.ganger.ID, f.week.ID)
		require.NoError(t, err)
		assert.Equal(t, f.week.ID, w.ID)

		var n int64
		return tx.Model(&havs.Member{}).Where("week_id = ?", w.ID).Count(&n).Error
	})
	require.NoError(t, err)
}

func TestTouchDraft_RefusesWeekSubmittedAfterLoad(t *testing.T) {
	f := newFixture(t)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		w, err := havs.LoadDraftWeek(tx, f.ganger.ID, f.week.ID)
		if err != nil {
			return err
		}
		// a submit committing between the draft check and the stamp
		require.NoError(t, tx.Model(&havs.Week{}).Where("id = ?", w.ID).Update("status", havs.StatusSubmitted).Error)
		return havs.TouchDraft(tx, w.ID, time.Now().UTC())
	})
	assert.ErrorIs(t, err, havs.ErrWeekSubmitted)
}

func TestTouchDraft_StampsDraft(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)

	require.NoError(t, havs.TouchDraft(f.db, f.week.ID, at))

	var w havs.Week
	require.NoError(t, f.db.First(&w, "id = ?", f.week.ID).Error)
	require.NotNil(t, w.LastSavedAt)
	assert.True(t, at.Equal(*w.LastSavedAt))
}
