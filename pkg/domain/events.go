package domain

import (
	"context"
	"time"
)

// StageEvent is emitted when the run enters a stage.
type StageEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Stage     Stage         `json:"stage"`
	File      string        `json:"file,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
}

// LifecycleHooks defines callbacks for run observability.
type LifecycleHooks struct {
	OnStage   func(context.Context, *StageEvent)
	OnFailure func(context.Context, *Error)
}

// ChainHooks merges hook sets; each callback runs in argument order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStage: func(ctx context.Context, e *StageEvent) {
			for _, h := range hooks {
				if h.OnStage != nil {
					h.OnStage(ctx, e)
				}
			}
		},
		OnFailure: func(ctx context.Context, e *Error) {
			for _, h := range hooks {
				if h.OnFailure != nil {
					h.OnFailure(ctx, e)
				}
			}
		},
	}
}
