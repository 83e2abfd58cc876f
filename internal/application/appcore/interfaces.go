package appcore

import "context"

// UseCase is the common shape of every use case.
// TCommand is the input, TResult the output.
type UseCase[TCommand any, TResult any] interface {
	// Execute runs the use case with the given command.
	Execute(ctx context.Context, cmd TCommand) (TResult, error)
}

// Command marks state-changing inputs.
type Command interface {
	CommandName() string
}

// Query marks read-only inputs.
type Query interface {
	QueryName() string
}

// Result is the base result structure.
type Result[T any] struct {
	Value T
	Error error
}

// IsSuccess reports whether the operation succeeded.
func (r Result[T]) IsSuccess() bool {
	return r.Error == nil
}

// IsFailure reports whether the operation failed.
func (r Result[T]) IsFailure() bool {
	return r.Error != nil
}
