package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wareflow/backend/pkg/errors"
)

func newSlaFixture() (*SlaService, *fakeClock, *fakeSlaRepo) {
	clock := newFakeClock()
	repo := newFakeSlaRepo()
	return NewSlaService(repo, clock, NewEventBus()), clock, repo
}

func TestSlaService_StartSetsDueDate(t *testing.T) {
	svc, clock, _ := newSlaFixture()
	ctx := context.Background()

	rec, err := svc.Start(ctx, "doc-1", 48)
	require.NoError(t, err)

	assert.Equal(t, clock.Now(), rec.StartDate)
	assert.Equal(t, clock.Now().Add(48*time.Hour), rec.DueDate)
	assert.Equal(t, 48, rec.ResponseHours)
	assert.Nil(t, rec.Met)
}

func TestSlaService_PauseResumeExtendsDueDate(t *testing.T) {
	svc, clock, _ := newSlaFixture()
	ctx := context.Background()

	rec, err := svc.Start(ctx, "doc-1", 24)
	require.NoError(t, err)
	originalDue := rec.DueDate

	clock.Advance(2 * time.Hour)
	reason := "waiting for parts"
	_, err = svc.Pause(ctx, "doc-1", &reason)
	require.NoError(t, err)

	clock.Advance(5 * time.Hour)
	rec, err = svc.Resume(ctx, "doc-1")
	require.NoError(t, err)

	assert.Equal(t, originalDue.Add(5*time.Hour), rec.DueDate)
	assert.False(t, rec.IsPaused())
	assert.NotNil(t, rec.StopClockEnd)
}

func TestSlaService_RepeatedPauseCyclesCompose(t *testing.T) {
	svc, clock, _ := newSlaFixture()
	ctx := context.Background()

	rec, err := svc.Start(ctx, "doc-1", 24)
	require.NoError(t, err)
	originalDue := rec.DueDate

	// Two pauses of 3h and 90m; the due date moves by their sum.
	for _, span := range []time.Duration{3 * time.Hour, 90 * time.Minute} {
		clock.Advance(time.Hour)
		_, err = svc.Pause(ctx, "doc-1", nil)
		require.NoError(t, err)
		clock.Advance(span)
		_, err = svc.Resume(ctx, "doc-1")
		require.NoError(t, err)
	}

	rec, err = svc.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, originalDue.Add(3*time.Hour+90*time.Minute), rec.DueDate)
}

func TestSlaService_DoublePauseRejected(t *testing.T) {
	svc, _, _ := newSlaFixture()
	ctx := context.Background()

	_, err := svc.Start(ctx, "doc-1", 24)
	require.NoError(t, err)
	_, err = svc.Pause(ctx, "doc-1", nil)
	require.NoError(t, err)

	_, err = svc.Pause(ctx, "doc-1", nil)
	var alreadyPaused *apperrors.AlreadyPausedError
	require.ErrorAs(t, err, &alreadyPaused)
	assert.Equal(t, "doc-1", alreadyPaused.DocumentID)
}

func TestSlaService_ZeroLengthPause(t *testing.T) {
	svc, _, _ := newSlaFixture()
	ctx := context.Background()

	rec, err := svc.Start(ctx, "doc-1", 24)
	require.NoError(t, err)
	originalDue := rec.DueDate

	// Pause and resume at the same instant extends by zero.
	_, err = svc.Pause(ctx, "doc-1", nil)
	require.NoError(t, err)
	rec, err = svc.Resume(ctx, "doc-1")
	require.NoError(t, err)

	assert.Equal(t, originalDue, rec.DueDate)
}

func TestSlaService_ResumeWithoutPauseIsNoOp(t *testing.T) {
	svc, clock, _ := newSlaFixture()
	ctx := context.Background()

	rec, err := svc.Start(ctx, "doc-1", 24)
	require.NoError(t, err)
	originalDue := rec.DueDate

	clock.Advance(time.Hour)
	rec, err = svc.Resume(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, originalDue, rec.DueDate)
}

func TestSlaService_EvaluateBoundary(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		wantMet bool
	}{
		{"well before due", 10 * time.Hour, true},
		{"exactly at due date", 24 * time.Hour, true},
		{"one second late", 24*time.Hour + time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, clock, _ := newSlaFixture()
			ctx := context.Background()

			_, err := svc.Start(ctx, "doc-1", 24)
			require.NoError(t, err)

			clock.Advance(tt.advance)
			met, err := svc.Evaluate(ctx, "doc-1")
			require.NoError(t, err)
			require.NotNil(t, met)
			assert.Equal(t, tt.wantMet, *met)
		})
	}
}

func TestSlaService_EvaluateIsImmutable(t *testing.T) {
	svc, clock, _ := newSlaFixture()
	ctx := context.Background()

	_, err := svc.Start(ctx, "doc-1", 24)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	met, err := svc.Evaluate(ctx, "doc-1")
	require.NoError(t, err)
	require.True(t, *met)

	// A later evaluation past the due date keeps the first outcome.
	clock.Advance(48 * time.Hour)
	met, err = svc.Evaluate(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, *met)
}

func TestSlaService_EvaluateWithoutRecord(t *testing.T) {
	svc, _, _ := newSlaFixture()

	met, err := svc.Evaluate(context.Background(), "untracked")
	require.NoError(t, err)
	assert.Nil(t, met)
}

func TestSlaService_IsOverdue(t *testing.T) {
	svc, clock, _ := newSlaFixture()
	ctx := context.Background()

	rec, err := svc.Start(ctx, "doc-1", 24)
	require.NoError(t, err)
	assert.False(t, svc.IsOverdue(rec))

	clock.Advance(25 * time.Hour)
	rec, err = svc.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, svc.IsOverdue(rec))

	// Paused records are never overdue.
	rec, err = svc.Pause(ctx, "doc-1", nil)
	require.NoError(t, err)
	assert.False(t, svc.IsOverdue(rec))
}
