package appcore

import "context"

// BaseUseCase is embedded by use cases that must not reach the store once
// the request is gone.
type BaseUseCase struct{}

// ValidateContext returns the cancellation cause of ctx, or nil while it is live.
func (BaseUseCase) ValidateContext(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	return context.Cause(ctx)
}
