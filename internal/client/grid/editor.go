// Package grid is the exposure-entry editor for one HAVS week. It keeps the
// minute matrix in memory, recomputes totals on every edit and persists
// changes through a debounced save plus a periodic save while the week is a
// draft.
package grid

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"fieldops-app/internal/client/api"
	"fieldops-app/internal/domain/havs"

	"go.uber.org/zap"
)

const (
	DefaultDebounce = 1500 * time.Millisecond
	DefaultInterval = 30 * time.Second
)

var (
	ErrReadOnly        = errors.New("week has been submitted and is read-only")
	ErrNegativeMinutes = errors.New("minutes cannot be negative")
	ErrUnknownMember   = errors.New("member is not part of this week")
	ErrClosed          = errors.New("editor is closed")
	ErrWeekMismatch    = errors.New("reloaded week is not the week being edited")
)

// Saver persists grid rows. *api.Client satisfies it.
type Saver interface {
	SaveEntries(ctx context.Context, weekID string, entries []havs.EntryInput) (*havs.SaveResult, error)
	Submit(ctx context.Context, weekID string, in havs.SubmitInput) (*havs.WeekDetails, error)
}

type State int

const (
	Clean State = iota
	Dirty
	Saving
	SaveFailed
	ReadOnly
)

func (s State) String() string {
	switch s {
	case Clean:
		return "saved"
	case Dirty:
		return "unsaved"
	case Saving:
		return "saving"
	case SaveFailed:
		return "save failed"
	case ReadOnly:
		return "read-only"
	}
	return "unknown"
}

type rowKey struct {
	member    string
	equipment string
}

type Option func(*Editor)

func WithScheduler(s Scheduler) Option {
	return func(e *Editor) { e.sched = s }
}

func WithDebounce(d time.Duration) Option {
	return func(e *Editor) { e.debounce = d }
}

func WithInterval(d time.Duration) Option {
	return func(e *Editor) { e.interval = d }
}

// Editor is safe for concurrent use. Its two background tasks, the debounce
// and the interval, are owned by the editor and stopped by Close or by the
// week being submitted.
type Editor struct {
	ctx      context.Context
	saver    Saver
	sched    Scheduler
	debounce time.Duration
	interval time.Duration

	mu          sync.Mutex
	weekID      string
	status      string
	members     map[string]bool
	rows        map[rowKey]havs.DayMinutes
	dirty       map[rowKey]struct{}
	state       State
	lastErr     error
	lastSavedAt *time.Time
	inFlight    int
	closed      bool

	pending Task
	ticker  Task
}

// New opens an editor on week. ctx bounds the background saves.
func New(ctx context.Context, saver Saver, week *havs.WeekDetails, opts ...Option) *Editor {
	e := &Editor{
		ctx:      ctx,
		saver:    saver,
		sched:    RealScheduler{},
		debounce: DefaultDebounce,
		interval: DefaultInterval,
		weekID:   week.ID,
		dirty:    map[rowKey]struct{}{},
	}
	for _, opt := range opts {
		opt(e)
	}

	e.load(week)
	if week.IsSubmitted() {
		e.state = ReadOnly
		return e
	}
	e.ticker = e.sched.Every(e.interval, e.tick)
	return e
}

func (e *Editor) load(week *havs.WeekDetails) {
	e.status = week.Status
	e.lastSavedAt = week.LastSavedAt
	e.members = make(map[string]bool, len(week.Members))
	e.rows = map[rowKey]havs.DayMinutes{}
	for _, m := range week.Members {
		e.members[m.ID] = true
		for _, entry := range m.Entries {
			e.rows[rowKey{m.ID, entry.EquipmentName}] = entry.DayMinutes
		}
	}
}

// Reload replaces the matrix with week, e.g. after the roster changed.
// Unsaved edits for members still on the roster are kept. A draft week that
// was read-only becomes editable again and the interval save resumes.
func (e *Editor) Reload(week *havs.WeekDetails) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if week.ID != e.weekID {
		return fmt.Errorf("%w: editing %s, got %s", ErrWeekMismatch, e.weekID, week.ID)
	}

	kept := map[rowKey]havs.DayMinutes{}
	for k := range e.dirty {
		kept[k] = e.rows[k]
	}
	e.load(week)
	for k, v := range kept {
		if !e.members[k.member] {
			delete(e.dirty, k)
			continue
		}
		e.rows[k] = v
	}

	if week.IsSubmitted() {
		e.dirty = map[rowKey]struct{}{}
		e.readOnlyLocked()
		return nil
	}
	if e.state == ReadOnly {
		e.state = Clean
		e.settleLocked()
	}
	if e.ticker == nil {
		e.ticker = e.sched.Every(e.interval, e.tick)
	}
	return nil
}

// SetMinutes records minutes for one cell. Fractions are rounded to the
// nearest whole minute.
func (e *Editor) SetMinutes(memberID, equipment string, day havs.Day, minutes float64) error {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return havs.ErrInvalidMinutes
	}
	if minutes < 0 {
		return ErrNegativeMinutes
	}
	v := int(math.Round(minutes))
	if v > havs.MaxDayMinutes {
		return havs.ErrInvalidMinutes
	}
	if !day.Valid() {
		return havs.ErrInvalidMinutes
	}
	eq, err := havs.LookupEquipment(equipment)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.state == ReadOnly {
		return ErrReadOnly
	}
	if !e.members[memberID] {
		return ErrUnknownMember
	}

	k := rowKey{memberID, eq.Name}
	row := e.rows[k]
	if row.Get(day) == v {
		return nil
	}
	row.Set(day, v)
	e.rows[k] = row
	e.dirty[k] = struct{}{}
	if e.state == Clean {
		e.state = Dirty
	}

	if e.pending != nil {
		e.pending.Stop()
	}
	e.pending = e.sched.After(e.debounce, e.debounced)
	return nil
}

func (e *Editor) Minutes(memberID, equipment string, day havs.Day) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rows[rowKey{memberID, equipment}].Get(day)
}

func (e *Editor) RowTotal(memberID, equipment string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rows[rowKey{memberID, equipment}].Total()
}

func (e *Editor) MemberTotal(memberID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for k, row := range e.rows {
		if k.member == memberID {
			total += row.Total()
		}
	}
	return total
}

func (e *Editor) WeekTotal() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.weekTotalLocked()
}

func (e *Editor) weekTotalLocked() int {
	total := 0
	for _, row := range e.rows {
		total += row.Total()
	}
	return total
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Err is the error from the last failed save, or nil once a save succeeds.
func (e *Editor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func (e *Editor) Status() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Editor) LastSavedAt() *time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSavedAt
}

func (e *Editor) debounced() { _ = e.flush(e.ctx) }

func (e *Editor) tick() { _ = e.flush(e.ctx) }

// SaveNow persists pending edits immediately.
func (e *Editor) SaveNow(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.state == ReadOnly {
		e.mu.Unlock()
		return ErrReadOnly
	}
	e.mu.Unlock()
	return e.flush(ctx)
}

// batchLocked snapshots the dirty rows. Zero rows are sent too so the server
// prunes them.
func (e *Editor) batchLocked() (map[rowKey]havs.DayMinutes, []havs.EntryInput) {
	sent := make(map[rowKey]havs.DayMinutes, len(e.dirty))
	inputs := make([]havs.EntryInput, 0, len(e.dirty))
	for k := range e.dirty {
		row := e.rows[k]
		sent[k] = row
		inputs = append(inputs, havs.EntryInput{MemberID: k.member, EquipmentName: k.equipment, Minutes: row})
	}
	return sent, inputs
}

func (e *Editor) flush(ctx context.Context) error {
	e.mu.Lock()
	if e.closed || e.state == ReadOnly || len(e.dirty) == 0 {
		e.mu.Unlock()
		return nil
	}
	sent, inputs := e.batchLocked()
	e.inFlight++
	e.state = Saving
	weekID := e.weekID
	e.mu.Unlock()

	res, err := e.saver.SaveEntries(ctx, weekID, inputs)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight--
	if err != nil {
		e.failedLocked(err)
		return err
	}

	e.acceptLocked(sent)
	e.lastErr = nil
	if res != nil && !res.SavedAt.IsZero() {
		saved := res.SavedAt
		e.lastSavedAt = &saved
	}
	e.settleLocked()
	return nil
}

// acceptLocked clears dirty marks for rows the server now holds. Rows edited
// again while the save was in flight stay dirty.
func (e *Editor) acceptLocked(sent map[rowKey]havs.DayMinutes) {
	for k, v := range sent {
		if e.rows[k] != v {
			continue
		}
		delete(e.dirty, k)
		if v.IsZero() {
			delete(e.rows, k)
		}
	}
}

func (e *Editor) settleLocked() {
	switch {
	case e.state == ReadOnly:
	case e.inFlight > 0:
		e.state = Saving
	case len(e.dirty) > 0:
		e.state = Dirty
	default:
		e.state = Clean
	}
}

func (e *Editor) failedLocked(err error) {
	e.lastErr = err
	if api.IsLocked(err) {
		// submitted elsewhere
		zap.L().Info("week locked by server", zap.String("week_id", e.weekID))
		e.status = havs.StatusSubmitted
		e.readOnlyLocked()
		return
	}
	zap.L().Warn("havs save failed", zap.String("week_id", e.weekID), zap.Int("rows", len(e.dirty)), zap.Error(err))
	if e.state != ReadOnly {
		e.state = SaveFailed
	}
}

// Submit sends pending edits and locks the week in one call. A week with no
// recorded exposure is refused without contacting the server.
func (e *Editor) Submit(ctx context.Context, notes string) (*havs.WeekDetails, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	if e.state == ReadOnly {
		e.mu.Unlock()
		return nil, ErrReadOnly
	}
	if e.weekTotalLocked() == 0 {
		e.mu.Unlock()
		return nil, havs.ErrNothingToSubmit
	}
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	_, inputs := e.batchLocked()
	e.inFlight++
	e.state = Saving
	weekID := e.weekID
	e.mu.Unlock()

	d, err := e.saver.Submit(ctx, weekID, havs.SubmitInput{Entries: inputs, Notes: notes})

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight--
	if err != nil {
		e.failedLocked(err)
		return nil, err
	}

	e.load(d)
	e.dirty = map[rowKey]struct{}{}
	e.lastErr = nil
	e.readOnlyLocked()
	return d, nil
}

func (e *Editor) readOnlyLocked() {
	e.state = ReadOnly
	e.stopTasksLocked()
}

func (e *Editor) stopTasksLocked() {
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
}

// Close stops both background tasks. Unsaved edits are not flushed; call
// SaveNow first to keep them.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.stopTasksLocked()
}
