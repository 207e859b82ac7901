package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
)

// FileStore keeps one TOML file per board.
type FileStore struct {
	dir    string
	logger *log.Logger
	now    func() time.Time
}

// DefaultDir returns the board directory under the XDG data dir.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, "gridboard", "boards")
}

// NewFileStore creates a store in dir, or DefaultDir when dir is empty.
// The directory is created if it doesn't exist.
func NewFileStore(dir string, logger *log.Logger) (*FileStore, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create board dir: %w", err)
	}
	return &FileStore{dir: dir, logger: logger.WithPrefix("store"), now: time.Now}, nil
}

// Path returns the file a board is stored in.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name+".toml")
}

func (s *FileStore) Load(_ context.Context, name string) (Board, error) {
	if err := CheckName(name); err != nil {
		return Board{}, err
	}
	return s.read(s.Path(name))
}

func (s *FileStore) read(path string) (Board, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Board{}, ErrNotFound
	}
	if err != nil {
		return Board{}, fmt.Errorf("read board: %w", err)
	}
	var b Board
	if err := toml.Unmarshal(data, &b); err != nil {
		return Board{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return b, nil
}

// Save writes the board through a temporary file so readers never see a
// partial write.
func (s *FileStore) Save(_ context.Context, b Board) error {
	if err := CheckName(b.Name); err != nil {
		return err
	}
	b.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	data, err := toml.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+b.Name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save board: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(b.Name)); err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	return nil
}

// Watch reports saves and hand edits of the board file.
func (s *FileStore) Watch(ctx context.Context, name string) (<-chan Board, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("board watcher: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", s.dir, err)
	}

	path := s.Path(name)
	out := make(chan Board, 1)
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				b, err := s.read(path)
				if err != nil {
					// Usually an editor mid-write; the next event carries the rest.
					s.logger.Debug("board reload failed", "board", name, "err", err)
					continue
				}
				deliver(out, b)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("board watcher error", "board", name, "err", err)
			}
		}
	}()
	return out, nil
}

func (s *FileStore) Close() error { return nil }
