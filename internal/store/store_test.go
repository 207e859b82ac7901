package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Gaurav-Gosain/gridboard/internal/config"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
)

func board(name string) Board {
	return Board{
		Name:   name,
		Origin: "session-a",
		Widgets: []widget.Widget{
			{ID: "a", Type: "clock", Layout: widget.Rect{X: 0, Y: 0, W: 3, H: 1}},
			{ID: "b", Type: "note", Layout: widget.Rect{X: 3, Y: 0, W: 3, H: 2},
				MobileLayout: &widget.Rect{X: 0, Y: 1, W: 4, H: 2},
				Config:       map[string]any{"text": "hello"}},
		},
	}
}

func waitBoard(t *testing.T, ch <-chan Board) Board {
	t.Helper()
	select {
	case b, ok := <-ch:
		if !ok {
			t.Fatal("watch channel closed")
		}
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("no board within 5s")
	}
	return Board{}
}

// =============================================================================
// Name Tests
// =============================================================================

func TestCheckName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"default", true},
		{"ops-2024.v1", true},
		{"", false},
		{"../etc/passwd", false},
		{".hidden", false},
		{"a/b", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckName(tt.name)
			if tt.ok && err != nil {
				t.Errorf("CheckName(%q) = %v", tt.name, err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidName) {
				t.Errorf("CheckName(%q) = %v, want ErrInvalidName", tt.name, err)
			}
		})
	}
}

func TestRedisKeys(t *testing.T) {
	if got := BoardKey("ops"); got != "gridboard:board:ops" {
		t.Errorf("BoardKey = %q", got)
	}
	if got := UpdatesChannel("ops"); got != "gridboard:board:ops:updates" {
		t.Errorf("UpdatesChannel = %q", got)
	}
}

// =============================================================================
// Shared Store Behaviour
// =============================================================================

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := s.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load(missing) = %v, want ErrNotFound", err)
	}
	b, err := LoadOrEmpty(ctx, s, "missing")
	if err != nil || b.Name != "missing" || len(b.Widgets) != 0 {
		t.Fatalf("LoadOrEmpty = %+v, %v", b, err)
	}
	if err := s.Save(ctx, Board{Name: "../x"}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("Save(bad name) = %v", err)
	}

	updates, err := s.Watch(ctx, "main")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	want := board("main")
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx, "main")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSameBoard(t, got, want)
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}

	assertSameBoard(t, waitBoard(t, updates), want)
}

func assertSameBoard(t *testing.T, got, want Board) {
	t.Helper()
	if got.Name != want.Name || got.Origin != want.Origin || len(got.Widgets) != len(want.Widgets) {
		t.Fatalf("board = %+v, want %+v", got, want)
	}
	for i := range want.Widgets {
		g, w := got.Widgets[i], want.Widgets[i]
		if g.ID != w.ID || g.Type != w.Type || g.Layout != w.Layout {
			t.Errorf("widget %d = %+v, want %+v", i, g, w)
		}
		if (g.MobileLayout == nil) != (w.MobileLayout == nil) ||
			(w.MobileLayout != nil && *g.MobileLayout != *w.MobileLayout) {
			t.Errorf("widget %d mobile layout = %v, want %v", i, g.MobileLayout, w.MobileLayout)
		}
		if w.Config["text"] != nil && g.Config["text"] != w.Config["text"] {
			t.Errorf("widget %d config = %v", i, g.Config)
		}
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	exerciseStore(t, s)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("GRIDBOARD_TEST_REDIS")
	if addr == "" {
		t.Skip("set GRIDBOARD_TEST_REDIS to run against a redis server")
	}
	s, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr, DB: 15})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.client.Del(context.Background(), BoardKey("missing"), BoardKey("main"))
	exerciseStore(t, s)
}

// =============================================================================
// Memory Store Tests
// =============================================================================

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	b := board("main")
	if err := s.Save(ctx, b); err != nil {
		t.Fatal(err)
	}
	b.Widgets[0].Layout.X = 9
	b.Widgets[1].Config["text"] = "mutated"

	got, _ := s.Load(ctx, "main")
	if got.Widgets[0].Layout.X != 0 || got.Widgets[1].Config["text"] != "hello" {
		t.Error("store shares widget state with the caller")
	}
}

func TestMemoryWatchKeepsLatest(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := s.Watch(ctx, "main")

	for i := range 3 {
		b := board("main")
		b.Origin = string(rune('a' + i))
		s.Save(ctx, b)
	}
	if got := waitBoard(t, ch); got.Origin != "c" {
		t.Errorf("slow reader got %q, want the latest save", got.Origin)
	}

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("unexpected board after cancel")
		}
	case <-time.After(time.Second):
		t.Error("channel not closed after cancel")
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	s := NewMemoryStore()
	ch, _ := s.Watch(context.Background(), "main")
	s.Close()

	if _, ok := <-ch; ok {
		t.Error("watch channel open after Close")
	}
	if err := s.Save(context.Background(), board("main")); !errors.Is(err, ErrClosed) {
		t.Errorf("Save after Close = %v", err)
	}
}

// =============================================================================
// File Store Tests
// =============================================================================

func TestFileStoreWritesTOML(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir, nil)
	if err := s.Save(context.Background(), board("main")); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "main.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 || data[0] == '{' {
		t.Errorf("unexpected file content:\n%s", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestFileStoreSeesHandEdits(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx, "main")
	if err != nil {
		t.Fatal(err)
	}
	edit := "name = \"main\"\n\n[[widgets]]\nid = \"z\"\ntype = \"cpu\"\n\n[widgets.layout]\nx = 1\ny = 2\nw = 4\nh = 2\n"
	if err := os.WriteFile(s.Path("main"), []byte(edit), 0o644); err != nil {
		t.Fatal(err)
	}

	got := waitBoard(t, ch)
	if len(got.Widgets) != 1 || got.Widgets[0].Layout != (widget.Rect{X: 1, Y: 2, W: 4, H: 2}) {
		t.Errorf("edited board = %+v", got)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, config.StorageConfig{Backend: "memory"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("Open(memory) = %T", s)
	}
	s, err = Open(ctx, config.StorageConfig{Backend: "file", Dir: t.TempDir()}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Errorf("Open(file) = %T", s)
	}
	if _, err := Open(ctx, config.StorageConfig{Backend: "tape"}, nil); err == nil {
		t.Error("Open(tape) should fail")
	}
}
