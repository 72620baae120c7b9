package schedule

import (
	"context"
	"errors"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTickOrder(t *testing.T) {
	s, err := New([]string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var order []string
	for _, name := range []string{"c", "a", "b"} {
		name := name
		if err := s.AddSystem(name, func(context.Context, float32) error {
			order = append(order, name)
			return nil
		}); err != nil {
			t.Fatalf("AddSystem: %v", err)
		}
	}

	if err := s.Tick(context.Background(), 0.016); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("order = %v, want [a b c]", order)
	}
}

func TestInsertAfter(t *testing.T) {
	s, _ := New([]string{"load", "update", "render"})

	if err := s.InsertAfter("update", "physics"); err != nil {
		t.Fatalf("InsertAfter: %v", err)
	}
	if err := s.InsertAfter("render", "present"); err != nil {
		t.Fatalf("InsertAfter at end: %v", err)
	}

	want := []string{"load", "update", "physics", "render", "present"}
	got := s.Stages()
	if len(got) != len(want) {
		t.Fatalf("Stages() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Stages() = %v, want %v", got, want)
		}
	}

	if err := s.InsertAfter("missing", "x"); !errors.Is(err, ErrStageNotFound) {
		t.Errorf("expected ErrStageNotFound, got %v", err)
	}
	if err := s.InsertAfter("load", "render"); !errors.Is(err, ErrStageExists) {
		t.Errorf("expected ErrStageExists, got %v", err)
	}
}

func TestNewDuplicateStage(t *testing.T) {
	if _, err := New([]string{"a", "a"}); !errors.Is(err, ErrStageExists) {
		t.Errorf("expected ErrStageExists, got %v", err)
	}
}

func TestAddSystemUnknownStage(t *testing.T) {
	s, _ := New(nil)
	err := s.AddSystem("nope", func(context.Context, float32) error { return nil })
	if !errors.Is(err, ErrStageNotFound) {
		t.Errorf("expected ErrStageNotFound, got %v", err)
	}
}

func TestTickStopsOnError(t *testing.T) {
	s, _ := New([]string{"a", "b"})
	boom := errors.New("boom")
	ranB := false
	s.AddSystem("a", func(context.Context, float32) error { return boom })
	s.AddSystem("b", func(context.Context, float32) error { ranB = true; return nil })

	err := s.Tick(context.Background(), 0)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped boom, got %v", err)
	}
	if ranB {
		t.Error("stage b ran after a failed")
	}
}

func TestTickCancelled(t *testing.T) {
	s, _ := New([]string{"a"})
	s.AddSystem("a", func(context.Context, float32) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Tick(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestStageSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	s, _ := New([]string{"first", "second"}, WithTracerProvider(tp))
	s.AddSystem("first", func(context.Context, float32) error { return nil })

	if err := s.Tick(context.Background(), 0.5); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	spans := sr.Ended()
	if len(spans) != 3 {
		t.Fatalf("got %d spans, want 3", len(spans))
	}
	if spans[0].Name() != "first" || spans[1].Name() != "second" || spans[2].Name() != "tick" {
		t.Errorf("span order = %s, %s, %s", spans[0].Name(), spans[1].Name(), spans[2].Name())
	}
	if spans[0].Parent().SpanID() != spans[2].SpanContext().SpanID() {
		t.Error("stage span is not a child of the tick span")
	}
	if spans[1].StartTime().Before(spans[0].EndTime()) {
		t.Error("second stage started before first ended")
	}
}
