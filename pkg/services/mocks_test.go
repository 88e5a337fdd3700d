package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/kerbaras/gutenshelf/pkg/data"
	"github.com/kerbaras/gutenshelf/pkg/errors"
)

// memStore is an in-memory KeyValueStore.
type memStore struct {
	mu      sync.Mutex
	values  map[string]string
	getErr  error
	setErr  error
	setCall int
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (m *memStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCall++
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

// mockSource serves pages by cursor. A gate registered for a cursor holds
// the response until the gate is closed; with honorCancel the request
// returns early when its context is canceled.
type mockSource struct {
	mu          sync.Mutex
	pages       map[string]*data.Page
	errs        map[string]error
	gates       map[string]chan struct{}
	honorCancel bool
	calls       []string
	started     chan string
}

func newMockSource() *mockSource {
	return &mockSource{
		pages:   make(map[string]*data.Page),
		errs:    make(map[string]error),
		gates:   make(map[string]chan struct{}),
		started: make(chan string, 16),
	}
}

func (m *mockSource) GetPage(ctx context.Context, cursor string) (*data.Page, error) {
	m.mu.Lock()
	m.calls = append(m.calls, cursor)
	gate := m.gates[cursor]
	page := m.pages[cursor]
	err := m.errs[cursor]
	m.mu.Unlock()

	m.started <- cursor

	if gate != nil {
		if m.honorCancel {
			select {
			case <-gate:
			case <-ctx.Done():
				if ctx.Err() == context.Canceled {
					return nil, fmt.Errorf("%w: %w", errors.ErrCanceled, ctx.Err())
				}
				return nil, errors.NewTransportError(cursor, 0, ctx.Err())
			}
		} else {
			<-gate
		}
	}

	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, errors.NewTransportError(cursor, 404, nil)
	}
	cp := *page
	return &cp, nil
}

func (m *mockSource) GetBook(ctx context.Context, id int) (*data.Book, error) {
	return nil, errors.ErrNotFound
}

func (m *mockSource) gate(cursor string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan struct{})
	m.gates[cursor] = ch
	return ch
}

func (m *mockSource) setErr(cursor string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[cursor] = err
}

func (m *mockSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func book(id int, title string, subjects ...string) data.Book {
	return data.Book{ID: id, Title: title, Subjects: subjects}
}

func ids(books []data.Book) []int {
	out := make([]int, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}
