package inbox

import (
	"context"
	"sync"

	"github.com/safetrade/site/internal/widget"
)

// Memory keeps submissions in process.
type Memory struct {
	mu    sync.Mutex
	items []widget.Submission
}

// NewMemory returns an empty in-memory inbox.
func NewMemory() *Memory {
	return &Memory{}
}

// Submit implements widget.Submitter.
func (m *Memory) Submit(ctx context.Context, s widget.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, s)
	return nil
}

// List returns a copy of the stored submissions, oldest first.
func (m *Memory) List() []widget.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]widget.Submission(nil), m.items...)
}

// Len returns the number of stored submissions.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
