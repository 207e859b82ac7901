// Package store persists boards. The grid engine never touches a store; the
// application loads a board, hands its widgets to the engine on every sync
// and saves what the engine commits.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/Gaurav-Gosain/gridboard/internal/widget"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a board has never been saved.
	ErrNotFound = errors.New("board not found")

	// ErrInvalidName is returned for board names that are not safe as file
	// names or keys.
	ErrInvalidName = errors.New("invalid board name")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store closed")
)

// Board is a named widget list.
type Board struct {
	Name    string          `toml:"name" json:"name"`
	Widgets []widget.Widget `toml:"widgets" json:"widgets"`
	// Origin identifies the session that saved the board, so a session can
	// ignore its own updates when they come back through Watch.
	Origin    string    `toml:"origin,omitempty" json:"origin,omitempty"`
	UpdatedAt time.Time `toml:"updated_at" json:"updatedAt"`
}

// Clone returns a deep copy of b.
func (b Board) Clone() Board {
	b.Widgets = widget.CloneAll(b.Widgets)
	return b
}

// Store loads and saves boards and reports changes made by others.
type Store interface {
	Load(ctx context.Context, name string) (Board, error)
	Save(ctx context.Context, b Board) error
	// Watch delivers the board every time it is saved, by anyone, until ctx
	// is done. Slow readers only see the latest version.
	Watch(ctx context.Context, name string) (<-chan Board, error)
	Close() error
}

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// CheckName returns ErrInvalidName unless name is 1-64 characters of
// letters, digits, '.', '_' or '-', not starting with a punctuation mark.
func CheckName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// LoadOrEmpty loads name, returning an empty board when it was never saved.
func LoadOrEmpty(ctx context.Context, s Store, name string) (Board, error) {
	b, err := s.Load(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return Board{Name: name}, nil
	}
	return b, err
}

// deliver sends b on ch, replacing an unread older board.
func deliver(ch chan Board, b Board) {
	for {
		select {
		case ch <- b:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
