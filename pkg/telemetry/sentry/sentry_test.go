package sentry

import (
	"context"
	"testing"
	"time"

	sentrygo "github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutDsnIsNoop(t *testing.T) {
	t.Parallel()

	require.NoError(t, New(Options{}))
	assert.NotPanics(t, func() {
		Report("boom")
		CaptureException(context.Background(), eris.New("refresh failed"), map[string]string{"refresher": "redis"})
		Shutdown(context.Background(), time.Millisecond)
	})
}

func TestDropCancellation(t *testing.T) {
	t.Parallel()

	event := &sentrygo.Event{Message: "x"}

	tests := []struct {
		name string
		hint *sentrygo.EventHint
		kept bool
	}{
		{name: "no hint", hint: nil, kept: true},
		{name: "no exception", hint: &sentrygo.EventHint{}, kept: true},
		{name: "plain error", hint: &sentrygo.EventHint{OriginalException: eris.New("redis down")}, kept: true},
		{name: "cancelled", hint: &sentrygo.EventHint{OriginalException: context.Canceled}, kept: false},
		{
			name: "wrapped deadline",
			hint: &sentrygo.EventHint{OriginalException: eris.Wrap(context.DeadlineExceeded, "refresh")},
			kept: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := dropCancellation(event, tc.hint)
			if tc.kept {
				assert.Same(t, event, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}
