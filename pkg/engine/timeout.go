package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when an evaluation runs past its limit.
	ErrTimeout = errors.New("engine: evaluation timed out")
	// ErrSuperseded is returned when a newer evaluation started first.
	ErrSuperseded = errors.New("engine: evaluation superseded by newer request")
)

type evalResult struct {
	res EvalResult
	err error
}

// waitWithTimeout waits for a result from ch, but returns ErrTimeout if
// the evaluation exceeds timeout. Results of an older generation are
// discarded.
//
// On timeout the goroutine may still be running; the generation check
// discards its result when it eventually completes.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
	timeout time.Duration,
) (EvalResult, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return EvalResult{}, ErrSuperseded
		}
		return r.res, r.err

	case <-timer.C:
		return EvalResult{}, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}
