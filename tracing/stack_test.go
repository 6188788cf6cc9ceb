package tracing

import (
	"testing"
)

func TestStackPopEmpty(t *testing.T) {
	s := NewStack()

	if span := s.MaybePopSpan(); span != nil {
		t.Fatalf("expected nil span from empty stack, got %+v", span)
	}

	if sc := s.MaybePopScope(); sc != nil {
		t.Fatalf("expected nil scope from empty stack, got %+v", sc)
	}

	// repeated pops stay no-ops
	if span := s.MaybePopSpan(); span != nil {
		t.Fatal("expected nil span on repeated pop")
	}
}

func TestStackSpanLIFO(t *testing.T) {
	s := NewStack()
	outer := &Span{op: "outer"}
	inner := &Span{op: "inner"}

	s.PushSpan(outer)
	s.PushSpan(inner)

	if got, want := s.SpanDepth(), 2; got != want {
		t.Fatalf("unexpected depth, got %d, want %d", got, want)
	}

	if got := s.TopSpan(); got != inner {
		t.Fatalf("unexpected top span: %q", got.Op())
	}

	if got := s.MaybePopSpan(); got != inner {
		t.Fatalf("unexpected popped span: %q", got.Op())
	}

	if got := s.TopSpan(); got != outer {
		t.Fatalf("unexpected top span after pop: %q", got.Op())
	}

	if got := s.MaybePopSpan(); got != outer {
		t.Fatalf("unexpected popped span: %q", got.Op())
	}

	if s.SpanDepth() != 0 {
		t.Fatal("stack not empty after balanced pops")
	}
}

func TestStackScopeLIFO(t *testing.T) {
	s := NewStack()
	first := NewScope(10)
	second := NewScope(10)

	s.PushScope(first)
	s.PushScope(second)

	if got := s.MaybePopScope(); got != second {
		t.Fatal("unexpected popped scope")
	}

	if got := s.TopScope(); got != first {
		t.Fatal("unexpected top scope after pop")
	}
}
