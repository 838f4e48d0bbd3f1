package worker

import (
	"context"
)

// MonthEnabler recomputes the derived per-day enabled flags for one month.
type MonthEnabler interface {
	EnableMonth(ctx context.Context, personID uint, yymm string) error
}

// Refresh returns the job function that recomputes a person's monthly
// derived state through the store.
func Refresh(store MonthEnabler) Func {
	return func(ctx context.Context, personID uint, yymm string) error {
		return store.EnableMonth(ctx, personID, yymm)
	}
}
