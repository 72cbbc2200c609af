package archive

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"fieldops-app/config"
	"fieldops-app/internal/domain/havs"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func sampleWeek() *havs.WeekDetails {
	return &havs.WeekDetails{
		ID:             "3f0c9f7e-1111-4a4a-9c9c-000000000001",
		GangerName:     "Gary Hughes",
		WeekEnding:     "2024-06-09",
		Status:         havs.StatusSubmitted,
		RevisionNumber: 2,
		Members: []havs.MemberDetails{{
			ID: "m1", Name: "Jane Doe", PersonType: havs.PersonOperative, Source: "manual", TotalMinutes: 45,
			Entries: []havs.EntryDetails{{
				EquipmentName: "Hydraulic Breaker",
				Category:      havs.CategoryCivils,
				DayMinutes:    havs.DayMinutes{Mon: 45},
				TotalMinutes:  45,
			}},
		}},
	}
}

func TestNew_NoBucketIsNoop(t *testing.T) {
	a, err := New(context.Background(), config.ArchiveConfig{})
	require.NoError(t, err)
	assert.IsType(t, Noop{}, a)
}

func TestWeek_WritesCSVToS3(t *testing.T) {
	fake := &fakeS3{}
	a := &S3{client: fake, bucket: "havs-archive"}

	key, err := Week(context.Background(), a, "havs", sampleWeek())
	require.NoError(t, err)
	assert.Equal(t, "havs/2024-06-09/3f0c9f7e-1111-4a4a-9c9c-000000000001/r2.csv", key)

	require.NotNil(t, fake.in)
	assert.Equal(t, "havs-archive", aws.ToString(fake.in.Bucket))
	assert.Equal(t, key, aws.ToString(fake.in.Key))
	assert.Equal(t, csvContentType, aws.ToString(fake.in.ContentType))
	assert.True(t, strings.HasPrefix(fake.body, "Week Ending,Ganger,"))
	assert.Contains(t, fake.body, "Jane Doe")
	assert.Equal(t, int64(len(fake.body)), aws.ToInt64(fake.in.ContentLength))
}

func TestS3_PutWrapsErrors(t *testing.T) {
	a := &S3{client: &fakeS3{err: errors.New("access denied")}, bucket: "b"}
	err := a.Put(context.Background(), "k", []byte("x"), csvContentType)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://b/k")
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	key, err := Week(context.Background(), m, "", sampleWeek())
	require.NoError(t, err)

	body, ok := m.Get(key)
	require.True(t, ok)
	assert.Contains(t, string(body), "Hydraulic Breaker")
	assert.Equal(t, []string{key}, m.Keys())
}
