package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps boards in memory. It backs --ephemeral sessions and
// tests, and is shared by every SSH session of one server.
type MemoryStore struct {
	mu       sync.Mutex
	boards   map[string]Board
	watchers map[string][]chan Board
	closed   bool
	now      func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		boards:   make(map[string]Board),
		watchers: make(map[string][]chan Board),
		now:      time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, name string) (Board, error) {
	if err := CheckName(name); err != nil {
		return Board{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Board{}, ErrClosed
	}
	b, ok := s.boards[name]
	if !ok {
		return Board{}, ErrNotFound
	}
	return b.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, b Board) error {
	if err := CheckName(b.Name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	b = b.Clone()
	b.UpdatedAt = s.now()
	s.boards[b.Name] = b
	for _, ch := range s.watchers[b.Name] {
		deliver(ch, b.Clone())
	}
	return nil
}

func (s *MemoryStore) Watch(ctx context.Context, name string) (<-chan Board, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	ch := make(chan Board, 1)
	s.watchers[name] = append(s.watchers[name], ch)
	go func() {
		<-ctx.Done()
		s.unwatch(name, ch)
	}()
	return ch, nil
}

func (s *MemoryStore) unwatch(name string, ch chan Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.watchers[name]
	for i, c := range list {
		if c == ch {
			s.watchers[name] = append(list[:i], list[i+1:]...)
			close(ch)
			return
		}
	}
}

// Close closes every watch channel.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, list := range s.watchers {
		for _, ch := range list {
			close(ch)
		}
	}
	clear(s.watchers)
	return nil
}
