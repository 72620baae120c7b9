// Package schedule runs named stages in a fixed order once per tick.
//
// Stages are synchronization points: every system of a stage returns before
// the next stage starts. Each stage is wrapped in a trace span, so the stage
// order of a tick can be observed from the exported spans.
package schedule

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Faultbox/skelbridge/internal/engine/schedule"

// Errors returned when editing a schedule.
var (
	ErrStageExists   = errors.New("stage already exists")
	ErrStageNotFound = errors.New("stage not found")
)

// System is one unit of work inside a stage.
type System func(ctx context.Context, dt float32) error

type stage struct {
	name    string
	systems []System
}

// Schedule is an ordered list of stages.
type Schedule struct {
	stages []*stage
	tracer trace.Tracer
	tick   uint64
}

// Option configures a Schedule.
type Option func(*Schedule)

// WithTracerProvider traces stages with tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Schedule) {
		s.tracer = tp.Tracer(tracerName)
	}
}

// New creates a schedule with the given stages in order.
func New(stages []string, opts ...Option) (*Schedule, error) {
	s := &Schedule{}
	for _, o := range opts {
		o(s)
	}
	if s.tracer == nil {
		s.tracer = otel.GetTracerProvider().Tracer(tracerName)
	}
	for _, name := range stages {
		if err := s.AddStage(name); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Schedule) index(name string) int {
	for i, st := range s.stages {
		if st.name == name {
			return i
		}
	}
	return -1
}

// AddStage appends a stage.
func (s *Schedule) AddStage(name string) error {
	if s.index(name) >= 0 {
		return fmt.Errorf("%w: %s", ErrStageExists, name)
	}
	s.stages = append(s.stages, &stage{name: name})
	return nil
}

// InsertAfter places a new stage directly after an existing one.
func (s *Schedule) InsertAfter(after, name string) error {
	if s.index(name) >= 0 {
		return fmt.Errorf("%w: %s", ErrStageExists, name)
	}
	i := s.index(after)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrStageNotFound, after)
	}
	s.stages = append(s.stages, nil)
	copy(s.stages[i+2:], s.stages[i+1:])
	s.stages[i+1] = &stage{name: name}
	return nil
}

// AddSystem appends a system to a stage.
func (s *Schedule) AddSystem(stageName string, sys System) error {
	i := s.index(stageName)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrStageNotFound, stageName)
	}
	s.stages[i].systems = append(s.stages[i].systems, sys)
	return nil
}

// Stages returns the stage names in execution order.
func (s *Schedule) Stages() []string {
	names := make([]string, len(s.stages))
	for i, st := range s.stages {
		names[i] = st.name
	}
	return names
}

// Tick runs every stage once. The first failing system aborts the tick.
func (s *Schedule) Tick(ctx context.Context, dt float32) error {
	s.tick++
	ctx, span := s.tracer.Start(ctx, "tick", trace.WithAttributes(
		attribute.Int64("tick", int64(s.tick)),
		attribute.Float64("dt", float64(dt)),
	))
	defer span.End()

	for _, st := range s.stages {
		if err := s.runStage(ctx, st, dt); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	return nil
}

func (s *Schedule) runStage(ctx context.Context, st *stage, dt float32) error {
	ctx, span := s.tracer.Start(ctx, st.name, trace.WithAttributes(
		attribute.Int("systems", len(st.systems)),
	))
	defer span.End()

	for _, sys := range st.systems {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sys(ctx, dt); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("stage %s: %w", st.name, err)
		}
	}
	return nil
}
