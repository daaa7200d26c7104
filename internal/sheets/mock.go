package sheets

import (
	"context"
	"fmt"
	"sync"
)

// MockSource is an in-memory GridSource for testing.
type MockSource struct {
	tabs  map[string][][]Cell
	errs  map[string]error
	calls map[string]int
	mu    sync.Mutex
}

var _ GridSource = (*MockSource)(nil)

// NewMockSource creates an empty mock source.
func NewMockSource() *MockSource {
	return &MockSource{
		tabs:  make(map[string][][]Cell),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

// SetTab sets a tab's rows, header included.
func (m *MockSource) SetTab(tab string, rows [][]Cell) *MockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tabs[tab] = rows
	return m
}

// SetError makes reads of tab fail with err.
func (m *MockSource) SetError(tab string, err error) *MockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[tab] = err
	return m
}

// Calls returns how many times tab was read.
func (m *MockSource) Calls(tab string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[tab]
}

// Grid implements GridSource.
func (m *MockSource) Grid(_ context.Context, tab string) ([][]Cell, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[tab]++
	if err := m.errs[tab]; err != nil {
		return nil, err
	}
	rows, ok := m.tabs[tab]
	if !ok {
		return nil, fmt.Errorf("unknown tab %q", tab)
	}
	return rows, nil
}
