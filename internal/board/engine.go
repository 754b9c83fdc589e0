// Package board turns raw pointer input into stroke records and replays
// stroke logs onto a drawing surface. It runs on the participant side; the
// session store stays a dumb append log and the host-only rule is enforced
// here, before any stroke is even constructed.
package board

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	apperrors "github.com/LahcenOub/tinmel-lms-sub000/internal/errors"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/model"
)

// Geometry maps the input device's viewport coordinates onto the canvas's
// intrinsic bitmap space. Stroke points are always stored in intrinsic
// coordinates; the visual scale is re-derived at render time only. Storing
// post-scaled coordinates distorts replays whenever the canvas is resized
// between draw and replay.
type Geometry struct {
	IntrinsicWidth  float64
	IntrinsicHeight float64
	DisplayWidth    float64
	DisplayHeight   float64
}

// ToIntrinsic converts a viewport point using the intrinsic/displayed
// ratio per axis, independent of zoom or CSS scaling.
func (g Geometry) ToIntrinsic(p model.Point) model.Point {
	sx, sy := 1.0, 1.0
	if g.DisplayWidth > 0 && g.IntrinsicWidth > 0 {
		sx = g.IntrinsicWidth / g.DisplayWidth
	}
	if g.DisplayHeight > 0 && g.IntrinsicHeight > 0 {
		sy = g.IntrinsicHeight / g.DisplayHeight
	}
	return model.Point{X: p.X * sx, Y: p.Y * sy}
}

// Store is the slice of the session service the engine drives.
type Store interface {
	AppendStroke(ctx context.Context, p model.Participant, sessionID string, stroke model.Stroke) (bool, error)
	ClearStrokes(ctx context.Context, p model.Participant, sessionID string, confirm bool) error
}

// Surface is whatever the host environment draws on: ordered strokes in,
// pixels out.
type Surface interface {
	Clear()
	BackgroundColor() string
	DrawStroke(points []model.Point, color string, size float64)
}

const (
	DefaultColor = "#000000"
	DefaultSize  = 3
)

// Engine accumulates one stroke per pointer gesture: down starts it, every
// move adds a point, up/leave finalizes and appends it to the store with
// an optimistic local echo. A gesture with no movement is still a valid
// one-point stroke and renders as a dot; only zero-point strokes are
// dropped.
type Engine struct {
	mu sync.Mutex

	session     model.Session
	participant model.Participant
	store       Store
	geom        Geometry

	tool  model.Tool
	color string
	size  float64

	drawing bool
	current []model.Point

	local []model.Stroke
}

func NewEngine(session model.Session, participant model.Participant, store Store, geom Geometry) *Engine {
	return &Engine{
		session:     session,
		participant: participant,
		store:       store,
		geom:        geom,
		tool:        model.ToolPen,
		color:       DefaultColor,
		size:        DefaultSize,
	}
}

func (e *Engine) SetTool(tool model.Tool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tool = tool
}

func (e *Engine) SetColor(color string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.color = color
}

func (e *Engine) SetSize(size float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if size > 0 {
		e.size = size
	}
}

// SetGeometry updates the display mapping after a layout change. Already
// captured points are untouched; they live in intrinsic space.
func (e *Engine) SetGeometry(geom Geometry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.geom = geom
}

// isHost gates every input path. Non-host events are ignored entirely; no
// stroke construction is attempted.
func (e *Engine) isHost() bool {
	return e.participant.ID == e.session.HostID
}

func (e *Engine) PointerDown(p model.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isHost() {
		return
	}
	e.drawing = true
	e.current = []model.Point{e.geom.ToIntrinsic(p)}
}

func (e *Engine) PointerMove(p model.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.drawing {
		return
	}
	e.current = append(e.current, e.geom.ToIntrinsic(p))
}

// PointerUp finalizes the gesture and appends the stroke. Returns whether
// a stroke was appended; rejected input is a silent no-op, never an error.
func (e *Engine) PointerUp(ctx context.Context) (bool, error) {
	e.mu.Lock()

	if !e.drawing {
		e.mu.Unlock()
		return false, nil
	}
	e.drawing = false
	points := e.current
	e.current = nil

	if len(points) == 0 {
		e.mu.Unlock()
		return false, nil
	}

	stroke := model.Stroke{
		Points: points,
		Color:  e.color,
		Size:   e.size,
		Tool:   e.tool,
	}
	e.mu.Unlock()

	appended, err := e.store.AppendStroke(ctx, e.participant, e.session.ID, stroke)
	if err != nil {
		log.Warn().Err(err).Str("sessionId", e.session.ID).Msg("stroke append failed, dropping local echo")
		return false, err
	}

	if appended {
		e.mu.Lock()
		e.local = append(e.local, stroke)
		e.mu.Unlock()
	}
	return appended, nil
}

// PointerLeave is treated like pointer-up: the gesture finalizes when the
// pointer leaves the canvas mid-draw.
func (e *Engine) PointerLeave(ctx context.Context) (bool, error) {
	return e.PointerUp(ctx)
}

// ClearBoard wipes the session's strokes. Host-only and never silent:
// callers must pass confirm explicitly.
func (e *Engine) ClearBoard(ctx context.Context, confirm bool) error {
	if !confirm {
		return apperrors.ValidationRejected("clearing the board requires confirmation")
	}
	if err := e.store.ClearStrokes(ctx, e.participant, e.session.ID, confirm); err != nil {
		return err
	}
	e.mu.Lock()
	e.local = nil
	e.mu.Unlock()
	return nil
}

// Reconcile replaces the local stroke snapshot with the authoritative one
// fetched by the polling synchronizer.
func (e *Engine) Reconcile(strokes []model.Stroke) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.local = strokes
}

// Strokes returns a copy of the local optimistic snapshot.
func (e *Engine) Strokes() []model.Stroke {
	e.mu.Lock()
	defer e.mu.Unlock()
	strokes := make([]model.Stroke, len(e.local))
	copy(strokes, e.local)
	return strokes
}

func (e *Engine) StrokeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.local)
}

// Render replays the local snapshot onto the surface.
func (e *Engine) Render(surface Surface) {
	Replay(e.Strokes(), surface)
}

// Replay clears the surface and redraws every stroke in append order.
// Eraser strokes paint the background color on top of earlier strokes;
// they do not remove anything, so order matters and reordering is not
// equivalent.
func Replay(strokes []model.Stroke, surface Surface) {
	surface.Clear()
	for _, stroke := range strokes {
		color := stroke.Color
		if stroke.Tool == model.ToolEraser {
			color = surface.BackgroundColor()
		}
		surface.DrawStroke(stroke.Points, color, stroke.Size)
	}
}
