package detect

import (
	"context"
	"fmt"
	"time"

	"mercator-hq/callisto/pkg/document"
)

// timeoutEngine bounds every Detect call on the wrapped engine.
type timeoutEngine struct {
	Engine
	timeout time.Duration
}

// WithTimeout wraps an engine so that Detect never runs longer than d. A
// call that exceeds the deadline returns ErrTimeout; the underlying call is
// abandoned to its context. A non-positive d returns the engine unchanged.
func WithTimeout(e Engine, d time.Duration) Engine {
	if d <= 0 {
		return e
	}
	return &timeoutEngine{Engine: e, timeout: d}
}

func (t *timeoutEngine) Detect(ctx context.Context, text string, entityTypes []string) ([]document.EntitySpan, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	type result struct {
		spans []document.EntitySpan
		err   error
	}
	ch := make(chan result, 1)

	go func() {
		spans, err := t.Engine.Detect(ctx, text, entityTypes)
		ch <- result{spans, err}
	}()

	select {
	case res := <-ch:
		return res.spans, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, t.Engine.Name(), t.timeout)
	}
}
