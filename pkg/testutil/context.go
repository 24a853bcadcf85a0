package testutil

import (
	"context"
	"log/slog"

	"flywheel/pkg/collect"
	"flywheel/pkg/instance"
)

// FreshContext binds a new root collect context and a new instance context to a
// background context, so registrations made by one test are invisible to the
// others.
func FreshContext() (context.Context, *collect.Context) {
	root := collect.NewRoot(collect.WithLogger(DiscardLogger()))
	ctx := collect.WithRoot(context.Background(), root)
	ctx = instance.Scope(ctx, instance.New())
	return ctx, root
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
