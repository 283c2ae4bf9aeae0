package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/fleet/internal/model"
)

// ReportWriter publishes a fleet report somewhere.
type ReportWriter interface {
	Write(ctx context.Context, fleet *model.Fleet) error
}

// MockWriter is a mock implementation of ReportWriter for testing.
type MockWriter struct {
	WriteFunc      func(ctx context.Context, fleet *model.Fleet) error
	LastFleet      *model.Fleet
	WriteCallCount int
	mu             sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write implements the ReportWriter interface.
func (m *MockWriter) Write(ctx context.Context, fleet *model.Fleet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount++
	m.LastFleet = fleet

	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, fleet)
	}
	return nil
}

// SetWriteError configures the mock to fail every Write call with err.
func (m *MockWriter) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteFunc = func(_ context.Context, _ *model.Fleet) error {
		return err
	}
}
