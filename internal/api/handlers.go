package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Gaurav-Gosain/gridboard/internal/layout"
	"github.com/Gaurav-Gosain/gridboard/internal/store"
	"github.com/Gaurav-Gosain/gridboard/internal/telemetry"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
	"github.com/go-chi/chi/v5"
)

// ErrUnknownType is returned when a drop names a widget type the catalog
// does not know.
var ErrUnknownType = errors.New("unknown widget type")

// MoveRequest is the body of POST /boards/{board}/move.
type MoveRequest struct {
	ID         string            `json:"id"`
	X          int               `json:"x"`
	Y          int               `json:"y"`
	Breakpoint widget.Breakpoint `json:"breakpoint,omitempty"`
}

// ResizeRequest is the body of POST /boards/{board}/resize.
type ResizeRequest struct {
	ID         string            `json:"id"`
	W          int               `json:"w"`
	H          int               `json:"h"`
	Breakpoint widget.Breakpoint `json:"breakpoint,omitempty"`
}

// AddRequest is the body of POST /boards/{board}/widgets. Without a
// position the widget goes to the first free cell; without a size it gets
// the type's default size.
type AddRequest struct {
	Type       string            `json:"type"`
	X          *int              `json:"x,omitempty"`
	Y          *int              `json:"y,omitempty"`
	W          int               `json:"w,omitempty"`
	H          int               `json:"h,omitempty"`
	Config     map[string]any    `json:"config,omitempty"`
	Breakpoint widget.Breakpoint `json:"breakpoint,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrInvalidName), errors.Is(err, ErrUnknownType):
		status = http.StatusBadRequest
	case errors.Is(err, layout.ErrUnknownWidget):
		status = http.StatusNotFound
	case errors.Is(err, layout.ErrOverlap), errors.Is(err, layout.ErrOutOfBounds), errors.Is(err, layout.ErrNoArrangement):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("bad request body: %w", err)
	}
	return nil
}

func (s *Server) config(bp widget.Breakpoint) layout.Config {
	if bp == "" {
		bp = widget.Wide
	}
	return layout.NewConfig(s.policy, bp, s.lookup)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	b, err := store.LoadOrEmpty(r.Context(), s.store, chi.URLParam(r, "board"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if b.Widgets == nil {
		b.Widgets = []widget.Widget{}
	}
	writeJSON(w, http.StatusOK, b)
}

// mutate loads the board, applies fn and saves the result. A failing fn
// leaves the stored board untouched.
func (s *Server) mutate(ctx context.Context, name string, reason widget.CommitReason, bp widget.Breakpoint,
	fn func([]widget.Widget) ([]widget.Widget, string, error),
) (widget.LayoutCommitEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := store.LoadOrEmpty(ctx, s.store, name)
	if err != nil {
		return widget.LayoutCommitEvent{}, err
	}
	next, affected, err := fn(b.Widgets)
	if err != nil {
		telemetry.Grid().OnRejected(ctx, string(reason), err)
		return widget.LayoutCommitEvent{}, err
	}
	b.Widgets = next
	b.Origin = Origin
	if err := s.store.Save(ctx, b); err != nil {
		return widget.LayoutCommitEvent{}, err
	}
	if bp == "" {
		bp = widget.Wide
	}
	telemetry.Grid().OnCommit(ctx, string(reason), affected, len(next))
	s.logger.Info("layout committed", "board", name, "reason", reason, "id", affected)
	return widget.LayoutCommitEvent{
		Widgets:    next,
		Reason:     reason,
		AffectedID: affected,
		Breakpoint: bp,
	}, nil
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	ev, err := s.mutate(r.Context(), chi.URLParam(r, "board"), widget.ReasonDrag, req.Breakpoint,
		func(ws []widget.Widget) ([]widget.Widget, string, error) {
			out, err := layout.ComputeLayout(ws, req.ID, layout.Point{X: req.X, Y: req.Y}, s.config(req.Breakpoint))
			return out, req.ID, err
		})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req ResizeRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	ev, err := s.mutate(r.Context(), chi.URLParam(r, "board"), widget.ReasonResize, req.Breakpoint,
		func(ws []widget.Widget) ([]widget.Widget, string, error) {
			out, err := layout.Resize(ws, req.ID, layout.Size{W: req.W, H: req.H}, s.config(req.Breakpoint))
			return out, req.ID, err
		})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	ev, err := s.mutate(r.Context(), chi.URLParam(r, "board"), widget.ReasonAdd, req.Breakpoint,
		func(ws []widget.Widget) ([]widget.Widget, string, error) {
			return s.insert(ws, req)
		})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// insert places a new widget the way an external drop does: sized by the
// type's constraints, then moved to its target so neighbours make room.
func (s *Server) insert(ws []widget.Widget, req AddRequest) ([]widget.Widget, string, error) {
	if s.lookup != nil {
		if _, ok := s.lookup(req.Type); !ok {
			return nil, "", fmt.Errorf("%w: %q", ErrUnknownType, req.Type)
		}
	}
	cfg := s.config(req.Breakpoint)
	c := widget.Lookup(s.lookup, req.Type)
	sw, sh := req.W, req.H
	if sw == 0 {
		sw = c.DefaultW
	}
	if sh == 0 {
		sh = c.DefaultH
	}
	sw, sh = c.Clamp(sw, sh)

	var target layout.Point
	if req.X != nil && req.Y != nil {
		target = layout.Point{X: *req.X, Y: *req.Y}
	} else {
		target = layout.FirstFit(layout.Project(ws, cfg), layout.Size{W: sw, H: sh}, cfg)
	}

	id := s.newID()
	r := widget.Rect{X: target.X, Y: target.Y, W: sw, H: sh}
	nw := widget.Widget{ID: id, Type: req.Type, Layout: r, Config: req.Config}
	if cfg.Breakpoint == widget.Narrow {
		nw.MobileLayout = &r
		nw.Layout = layout.WideSlot(ws, layout.Size{W: sw, H: sh}, s.config(widget.Wide))
	}
	out, err := layout.ComputeLayout(append(widget.CloneAll(ws), nw), id, target, cfg)
	return out, id, err
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ev, err := s.mutate(r.Context(), chi.URLParam(r, "board"), widget.ReasonRemove, "",
		func(ws []widget.Widget) ([]widget.Widget, string, error) {
			i := widget.Index(ws, id)
			if i < 0 {
				return nil, id, fmt.Errorf("remove %q: %w", id, layout.ErrUnknownWidget)
			}
			rest := widget.CloneAll(ws)
			rest = append(rest[:i], rest[i+1:]...)
			out, err := layout.Settle(rest, s.config(widget.Wide))
			return out, id, err
		})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}
