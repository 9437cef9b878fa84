package reportflow

import (
	"context"
	"sync"
	"time"
)

// Effect is a one-off output of the flow, distinct from state. Each effect is
// delivered to exactly one reader exactly once.
type Effect interface {
	effect()
}

type (
	NavigatedForward     struct{ From, To Step }
	NavigatedBack        struct{ From, To Step }
	// ExitFlow means the flow was abandoned or completed. State has been reset.
	ExitFlow             struct{}
	ShowToast            struct{ Message string }
	// ShowDatePicker asks the UI for a date no later than Max
	ShowDatePicker       struct{ Selected, Max time.Time }
	OpenLocationSettings struct{}
)

func (NavigatedForward) effect()     {}
func (NavigatedBack) effect()        {}
func (ExitFlow) effect()             {}
func (ShowToast) effect()            {}
func (ShowDatePicker) effect()       {}
func (OpenLocationSettings) effect() {}

// effectQueue is an unbounded FIFO. push never blocks.
type effectQueue struct {
	mu     sync.Mutex
	items  []Effect
	signal chan struct{}
}

func newEffectQueue() *effectQueue {
	return &effectQueue{signal: make(chan struct{}, 1)}
}

func (q *effectQueue) push(e Effect) {
	q.mu.Lock()
	q.items = append(q.items, e)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *effectQueue) drain() []Effect {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

func (q *effectQueue) pop() (Effect, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	e := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return e, true
}

// next blocks until an effect is available or ctx is done
func (q *effectQueue) next(ctx context.Context) (Effect, error) {
	for {
		if e, ok := q.pop(); ok {
			return e, nil
		}
		select {
		case <-q.signal:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
