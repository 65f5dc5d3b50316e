package pricing

import (
	"context"
	"sync"
)

// passState tracks whether the repricing stage already executed its effects
// within one totals-computation pass. Hosts commonly trigger the totals hook
// several times per render; effects must run at most once per pass.
type passState struct {
	mu       sync.Mutex
	repriced bool
	total    int64
}

type passKey struct{}

// BeginPass marks the start of a totals-computation pass. The repricing
// stage consults the returned context so repeated invocations within the
// same pass are effect-free. Scoped to the request, never global state.
func BeginPass(ctx context.Context) context.Context {
	return context.WithValue(ctx, passKey{}, &passState{})
}

func passFrom(ctx context.Context) *passState {
	state, _ := ctx.Value(passKey{}).(*passState)
	return state
}
