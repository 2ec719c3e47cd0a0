package helper

import (
	"context"
	"sync"

	"github.com/quercus-labs/library-lending-core-go/librarycore"
)

// TracingCollectorSpy is a librarycore.TracingCollector implementation that
// captures span lifecycle calls for testing.
type TracingCollectorSpy struct {
	startedSpans  []SpySpanRecord
	finishedSpans []SpySpanRecord
	mu            sync.Mutex
}

// SpySpanRecord represents a captured span start or finish.
type SpySpanRecord struct {
	Name   string
	Status string
	Attrs  map[string]string
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{
		startedSpans:  make([]SpySpanRecord, 0),
		finishedSpans: make([]SpySpanRecord, 0),
	}
}

// StartSpan implements the TracingCollector interface.
func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, librarycore.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.startedSpans = append(s.startedSpans, SpySpanRecord{
		Name:  name,
		Attrs: copyLabels(attrs),
	})

	return ctx, &spySpanContext{name: name, collector: s}
}

// FinishSpan implements the TracingCollector interface.
func (s *TracingCollectorSpy) FinishSpan(spanCtx librarycore.SpanContext, status string, attrs map[string]string) {
	spy, ok := spanCtx.(*spySpanContext)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.finishedSpans = append(s.finishedSpans, SpySpanRecord{
		Name:   spy.name,
		Status: status,
		Attrs:  copyLabels(attrs),
	})
}

// GetStartedSpans returns a copy of the captured span starts.
func (s *TracingCollectorSpy) GetStartedSpans() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	spans := make([]SpySpanRecord, len(s.startedSpans))
	copy(spans, s.startedSpans)

	return spans
}

// GetFinishedSpans returns a copy of the captured span finishes.
func (s *TracingCollectorSpy) GetFinishedSpans() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	spans := make([]SpySpanRecord, len(s.finishedSpans))
	copy(spans, s.finishedSpans)

	return spans
}

// HasFinishedSpan reports whether a span with the given name and status was
// finished.
func (s *TracingCollectorSpy) HasFinishedSpan(name string, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, span := range s.finishedSpans {
		if span.Name == name && span.Status == status {
			return true
		}
	}

	return false
}

// Reset clears all captured spans.
func (s *TracingCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.startedSpans = s.startedSpans[:0]
	s.finishedSpans = s.finishedSpans[:0]
}

type spySpanContext struct {
	name      string
	collector *TracingCollectorSpy
}

func (s *spySpanContext) SetStatus(string)            {}
func (s *spySpanContext) AddAttribute(string, string) {}
