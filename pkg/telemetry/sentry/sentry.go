// Package sentry forwards panics and handled errors from the warband daemon to Sentry. Every
// function is a no-op until New is called with a DSN.
package sentry

import (
	"context"
	"errors"
	"time"

	sentrygo "github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel/trace"
)

const panicFlushTimeout = 5 * time.Second

type Options struct {
	Dsn         string
	Environment string
	Release     string
	Tags        map[string]string
}

func New(opt Options) error {
	if opt.Dsn == "" {
		return nil
	}

	err := sentrygo.Init(sentrygo.ClientOptions{
		Dsn:              opt.Dsn,
		Environment:      opt.Environment,
		Release:          opt.Release,
		Tags:             opt.Tags,
		AttachStacktrace: true,
		BeforeSend:       dropCancellation,
	})
	return eris.Wrap(err, "failed to initialize sentry")
}

// dropCancellation discards events caused by a cancelled or expired context. Those are part of a
// normal shutdown.
func dropCancellation(event *sentrygo.Event, hint *sentrygo.EventHint) *sentrygo.Event {
	if hint == nil || hint.OriginalException == nil {
		return event
	}
	if errors.Is(hint.OriginalException, context.Canceled) ||
		errors.Is(hint.OriginalException, context.DeadlineExceeded) {
		return nil
	}
	return event
}

// Report sends a recovered panic value and waits for it to be delivered.
func Report(r any) {
	if !isInitialized() {
		return
	}
	sentrygo.CurrentHub().Recover(r)
	sentrygo.Flush(panicFlushTimeout)
}

// CaptureException reports a handled error. The active span, if any, and the given tags are
// attached to the event.
func CaptureException(ctx context.Context, err error, tags map[string]string) {
	if !isInitialized() || err == nil {
		return
	}
	sentrygo.WithScope(func(scope *sentrygo.Scope) {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			scope.SetTag("trace_id", sc.TraceID().String())
			scope.SetTag("span_id", sc.SpanID().String())
		}
		scope.SetTags(tags)
		sentrygo.CaptureException(err)
	})
}

// Shutdown flushes buffered events, waiting at most timeout or until the ctx deadline.
func Shutdown(ctx context.Context, timeout time.Duration) {
	if !isInitialized() {
		return
	}
	wait := timeout
	if dl, ok := ctx.Deadline(); ok {
		if until := time.Until(dl); until > 0 && until < wait {
			wait = until
		}
	}
	if wait <= 0 {
		wait = time.Second
	}
	sentrygo.Flush(wait)
}

func isInitialized() bool {
	return sentrygo.CurrentHub().Client() != nil
}
