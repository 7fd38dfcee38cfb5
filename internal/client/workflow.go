package client

import (
	"context"
	"sync"
)

type State int

const (
	Idle State = iota
	InFlight
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case InFlight:
		return "in-flight"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "idle"
}

// Slot is the request state of one AI feature: whether a request is out, the
// last error and the last result. Slots are independent of each other.
type Slot[T any] struct {
	mu     sync.Mutex
	state  State
	err    string
	result T
}

// Begin moves the slot in flight and clears its error and result. It fails
// with ErrInFlight while a request is already out.
func (s *Slot[T]) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == InFlight {
		return ErrInFlight
	}
	var zero T
	s.state = InFlight
	s.err = ""
	s.result = zero
	return nil
}

func (s *Slot[T]) Succeed(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Done
	s.result = v
}

// Fail records the message of err. The result is left as it is.
func (s *Slot[T]) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Failed
	s.err = messageOf(err)
}

func (s *Slot[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.state = Idle
	s.err = ""
	s.result = zero
}

func (s *Slot[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Slot[T]) InFlight() bool {
	return s.State() == InFlight
}

func (s *Slot[T]) Result() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Err returns the message of the last failure, or "".
func (s *Slot[T]) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Run drives slot through one request made by fn.
func Run[T any](ctx context.Context, slot *Slot[T], fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := slot.Begin(); err != nil {
		return zero, err
	}

	v, err := fn(ctx)
	if err != nil {
		slot.Fail(err)
		return zero, err
	}
	slot.Succeed(v)
	return v, nil
}
