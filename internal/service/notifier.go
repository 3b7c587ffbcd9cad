package service

import (
	"context"

	"github.com/cloo-solutions/lunchpick/internal/domain"
)

// Notifier shows a blocking notice to the user.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n domain.Notice)

func (f NotifierFunc) Notify(ctx context.Context, n domain.Notice) {
	f(ctx, n)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, domain.Notice) {}
