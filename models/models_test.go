package models

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountResult(t *testing.T) {
	ok := Counted(7)
	assert.False(t, ok.Degraded())
	assert.Equal(t, 7, ok.Count)

	bad := Degraded(context.DeadlineExceeded)
	assert.True(t, bad.Degraded())
	assert.Equal(t, 0, bad.Count)
	assert.ErrorIs(t, bad.Cause, context.DeadlineExceeded)
	assert.Equal(t, ErrCodeScrapeDegraded, CodeOf(bad.Cause))
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("open: %w", NewCountError(ErrCodeSessionUnavailable, "launch failed", errors.New("no chrome")))
	assert.Equal(t, ErrCodeSessionUnavailable, CodeOf(wrapped))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("plain")))
}

func TestCountError_Messages(t *testing.T) {
	e := NewCountError(ErrCodeSessionUnavailable, "failed to launch browser", errors.New("exec: chromium: not found"))
	assert.Equal(t, "SESSION_UNAVAILABLE: failed to launch browser: exec: chromium: not found", e.Error())
	assert.Equal(t, "failed to launch browser: exec: chromium: not found", e.Cause())

	bare := NewCountError(ErrCodeInvalidInput, MsgEmptyURL, nil)
	assert.Equal(t, MsgEmptyURL, bare.Cause())
}

func TestTally(t *testing.T) {
	rows := []BatchRow{
		{Status: RowOK, Count: 3},
		{Status: RowSkipped},
		{Status: RowDegraded},
		{Status: RowOK},
	}
	assert.Equal(t, BatchStats{Total: 4, OK: 2, Degraded: 1, Skipped: 1}, Tally(rows))
	assert.True(t, rows[1].Skipped())
}
