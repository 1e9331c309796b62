package ai

import (
	"context"
	"iter"
	"sync"
)

// EventStream is a single-producer, multi-consumer-facet stream: one
// goroutine pushes Element values and eventually a terminal Result, while
// consumers may either range over elements via Iter or await the terminal
// Result directly via Result, independent of whether they also iterate.
//
// The producer side (Push/End) and consumer side (Iter/Result) are safe to
// use from different goroutines. Push must not be called concurrently with
// itself, and must not be called after End.
type EventStream[Element any, Result any] struct {
	mu      sync.Mutex
	buf     []Element
	next    int
	closed  bool
	result  Result
	resultE error
	waiters []chan struct{}
}

// NewEventStream returns an empty, open EventStream.
func NewEventStream[Element any, Result any]() *EventStream[Element, Result] {
	return &EventStream[Element, Result]{}
}

// Push appends an element for consumers to observe. It is a no-op once the
// stream has been closed via End.
func (s *EventStream[Element, Result]) Push(e Element) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.buf = append(s.buf, e)
	waiters := s.waiters
	s.waiters = nil
	s.mu.Unlock()

	// Waiters are resumed outside the lock: a resumed consumer goroutine
	// may immediately call back into Push-adjacent methods, and holding
	// the mutex across that would risk deadlock on a single-threaded
	// scheduler decision.
	for _, w := range waiters {
		close(w)
	}
}

// End marks the stream terminated with the given result and error. Exactly
// one call to End is expected per stream; subsequent calls are ignored.
func (s *EventStream[Element, Result]) End(result Result, err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.result = result
	s.resultE = err
	waiters := s.waiters
	s.waiters = nil
	s.mu.Unlock()

	for _, w := range waiters {
		close(w)
	}
}

// Iter returns a range-over-func iterator yielding each Element as it
// arrives, blocking when the producer has not yet pushed more. Iteration
// ends (without yielding a final value) once the stream is closed and all
// buffered elements have been delivered; call Result afterward to retrieve
// the terminal value.
func (s *EventStream[Element, Result]) Iter() iter.Seq[Element] {
	return func(yield func(Element) bool) {
		idx := 0
		for {
			s.mu.Lock()
			for idx >= len(s.buf) && !s.closed {
				ch := make(chan struct{})
				s.waiters = append(s.waiters, ch)
				s.mu.Unlock()
				<-ch
				s.mu.Lock()
			}

			if idx >= len(s.buf) {
				s.mu.Unlock()
				return
			}

			e := s.buf[idx]
			idx++
			s.mu.Unlock()

			if !yield(e) {
				return
			}
		}
	}
}

// Result blocks until the stream is closed, returning the terminal value
// and error passed to End. It may be called before, during, or after
// iteration, and may be called concurrently with Iter. If ctx is canceled
// before the stream closes, Result returns the zero Result and ctx.Err().
func (s *EventStream[Element, Result]) Result(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.closed {
		result, err := s.result, s.resultE
		s.mu.Unlock()
		return result, err
	}
	ch := make(chan struct{})
	s.waiters = append(s.waiters, ch)
	s.mu.Unlock()

	select {
	case <-ch:
		s.mu.Lock()
		result, err := s.result, s.resultE
		s.mu.Unlock()
		return result, err
	case <-ctx.Done():
		var zero Result
		return zero, ctx.Err()
	}
}

// AssistantStream pre-binds EventStream to this package's event vocabulary:
// a stream of AssistantEvent values terminating in a single
// *AssistantMessage.
type AssistantStream = EventStream[AssistantEvent, *AssistantMessage]

// NewAssistantStream returns an empty, open AssistantStream.
func NewAssistantStream() *AssistantStream {
	return NewEventStream[AssistantEvent, *AssistantMessage]()
}
