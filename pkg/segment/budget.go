package segment

import (
	"context"
	"errors"
	"fmt"
)

// ErrBudgetExceeded matches every *BudgetExceededError via errors.Is.
var ErrBudgetExceeded = errors.New("segmentation budget exceeded")

// BudgetExceededError is returned when a search gives up before finishing.
// Err holds the context error when a deadline or cancellation fired.
type BudgetExceededError struct {
	Steps    int
	MaxSteps int
	InputLen int
	MaxInput int
	Err      error
}

func (e *BudgetExceededError) Error() string {
	switch {
	case e.MaxInput > 0 && e.InputLen > e.MaxInput:
		return fmt.Sprintf("%v: input of %d runes exceeds limit of %d", ErrBudgetExceeded, e.InputLen, e.MaxInput)
	case e.Err != nil:
		return fmt.Sprintf("%v after %d steps: %v", ErrBudgetExceeded, e.Steps, e.Err)
	default:
		return fmt.Sprintf("%v: more than %d steps", ErrBudgetExceeded, e.MaxSteps)
	}
}

func (e *BudgetExceededError) Is(target error) bool {
	return target == ErrBudgetExceeded
}

func (e *BudgetExceededError) Unwrap() error {
	return e.Err
}

// ctxCheckInterval is how many steps pass between context polls.
const ctxCheckInterval = 1024

// budget counts score evaluations for one search call.
type budget struct {
	ctx      context.Context
	maxSteps int
	steps    int
}

func newBudget(ctx context.Context, maxSteps int) *budget {
	return &budget{ctx: ctx, maxSteps: maxSteps}
}

// spend accounts for one score evaluation.
func (b *budget) spend() error {
	b.steps++
	if b.maxSteps > 0 && b.steps > b.maxSteps {
		return &BudgetExceededError{Steps: b.steps - 1, MaxSteps: b.maxSteps}
	}
	if b.steps%ctxCheckInterval == 0 {
		return b.check()
	}
	return nil
}

func (b *budget) check() error {
	if err := b.ctx.Err(); err != nil {
		return &BudgetExceededError{Steps: b.steps, MaxSteps: b.maxSteps, Err: err}
	}
	return nil
}
