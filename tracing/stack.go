package tracing

// Stack is the per-worker LIFO bookkeeping of pushed spans and scopes.
// In practice a single frame is active at a time, but nesting is supported
// so that a repeated processing event without an intervening terminal event
// cannot mismatch spans.
//
// Pop operations on an empty stack return nil and are not errors.
type Stack struct {
	spans  []*Span
	scopes []*Scope
}

func NewStack() *Stack {
	return &Stack{}
}

// PushSpan records a span as the innermost active one.
func (s *Stack) PushSpan(span *Span) {
	s.spans = append(s.spans, span)
}

// MaybePopSpan removes and returns the innermost span, nil when none is
// active.
func (s *Stack) MaybePopSpan() *Span {
	if len(s.spans) == 0 {
		return nil
	}
	span := s.spans[len(s.spans)-1]
	s.spans[len(s.spans)-1] = nil
	s.spans = s.spans[:len(s.spans)-1]
	return span
}

// TopSpan returns the innermost span without removing it.
func (s *Stack) TopSpan() *Span {
	if len(s.spans) == 0 {
		return nil
	}
	return s.spans[len(s.spans)-1]
}

func (s *Stack) SpanDepth() int {
	return len(s.spans)
}

// PushScope records a scope as the innermost active one.
func (s *Stack) PushScope(sc *Scope) {
	s.scopes = append(s.scopes, sc)
}

// MaybePopScope removes and returns the innermost scope, nil when none is
// active.
func (s *Stack) MaybePopScope() *Scope {
	if len(s.scopes) == 0 {
		return nil
	}
	sc := s.scopes[len(s.scopes)-1]
	s.scopes[len(s.scopes)-1] = nil
	s.scopes = s.scopes[:len(s.scopes)-1]
	return sc
}

// TopScope returns the innermost scope without removing it.
func (s *Stack) TopScope() *Scope {
	if len(s.scopes) == 0 {
		return nil
	}
	return s.scopes[len(s.scopes)-1]
}

func (s *Stack) ScopeDepth() int {
	return len(s.scopes)
}
