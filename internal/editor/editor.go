// Package editor is the drawing engine: it owns the canvas pixels, the tool
// state and the undo history, and turns begin/move/end input into pixels.
package editor

import (
	"fmt"
	"image"
	"io"
	"log"
	"math"
	"regexp"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
)

const (
	MinStrokeWidth = 1
	MaxStrokeWidth = 50
)

// Options configure a new Editor.
type Options struct {
	Width        int
	Height       int
	Background   string
	Color        string
	StrokeWidth  float64
	Tool         Tool
	HistoryDepth int
}

func DefaultOptions() Options {
	return Options{
		Width:        800,
		Height:       600,
		Background:   "#ffffff",
		Color:        "#007aff",
		StrokeWidth:  5,
		Tool:         ToolBrush,
		HistoryDepth: DefaultHistoryDepth,
	}
}

// Editor is not safe for concurrent use; exactly one goroutine drives it.
type Editor struct {
	width, height int
	pix           *gg.Pixmap
	dc            *gg.Context

	// coverage buffer for the eraser
	mask   *gg.Pixmap
	maskDC *gg.Context

	background gg.RGBA
	tool       Tool
	color      gg.RGBA
	colorValue string
	size       float64

	drawing        bool
	lastX, lastY   float64
	startX, startY float64
	preview        *Snapshot
	history        *History
}

// New creates an editor with a blank canvas and a history holding that blank
// canvas as its only entry.
func New(opts Options) *Editor {
	def := DefaultOptions()
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = def.Width, def.Height
	}
	bg, err := ParseColor(opts.Background)
	if err != nil {
		bg = gg.White
	}
	if _, err := ParseColor(opts.Color); err != nil {
		opts.Color = def.Color
	}
	if !opts.Tool.valid() {
		opts.Tool = def.Tool
	}
	if opts.StrokeWidth == 0 {
		opts.StrokeWidth = def.StrokeWidth
	}

	e := &Editor{
		background: bg,
		tool:       opts.Tool,
		size:       clampWidth(opts.StrokeWidth),
		history:    NewHistory(opts.HistoryDepth),
	}
	e.setColor(opts.Color)
	e.allocate(opts.Width, opts.Height)
	e.pix.Clear(e.background)
	e.history.Push(e.snapshot())
	log.Printf("[EDITOR] Canvas initialized: %dx%d", e.width, e.height)
	return e
}

func (e *Editor) allocate(w, h int) {
	e.width, e.height = w, h
	e.pix = gg.NewPixmap(w, h)
	e.dc = gg.NewContext(w, h, gg.WithPixmap(e.pix))
	e.dc.SetLineCap(gg.LineCapRound)
	e.dc.SetLineJoin(gg.LineJoinRound)

	e.mask = gg.NewPixmap(w, h)
	e.maskDC = gg.NewContext(w, h, gg.WithPixmap(e.mask))
	e.maskDC.SetLineCap(gg.LineCapRound)
	e.maskDC.SetLineJoin(gg.LineJoinRound)
}

var hexColorRe = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// ParseColor accepts #rgb, #rgba, #rrggbb and #rrggbbaa.
func ParseColor(value string) (gg.RGBA, error) {
	if !hexColorRe.MatchString(value) {
		return gg.RGBA{}, fmt.Errorf("invalid color %q", value)
	}
	return gg.Hex(value), nil
}

func clampWidth(w float64) float64 {
	return math.Max(MinStrokeWidth, math.Min(MaxStrokeWidth, w))
}

func (e *Editor) Tool() Tool           { return e.tool }
func (e *Editor) Color() string        { return e.colorValue }
func (e *Editor) StrokeWidth() float64 { return e.size }
func (e *Editor) Drawing() bool        { return e.drawing }
func (e *Editor) Size() (int, int)     { return e.width, e.height }
func (e *Editor) CanUndo() bool        { return e.history.CanUndo() }
func (e *Editor) CanRedo() bool        { return e.history.CanRedo() }

// HistoryLen returns the number of stored snapshots.
func (e *Editor) HistoryLen() int { return e.history.Len() }

// SetTool switches tools. A stroke in progress is finished first.
func (e *Editor) SetTool(t Tool) {
	if !t.valid() {
		return
	}
	if e.drawing && t != e.tool {
		e.EndStroke(e.lastX, e.lastY)
	}
	e.tool = t
}

// SetColor changes the stroke color. Invalid values are ignored. An
// in-progress shape preview is redrawn in the new color.
func (e *Editor) SetColor(value string) {
	if !e.setColor(value) {
		log.Printf("[EDITOR] Ignoring color %q", value)
		return
	}
	e.refreshPreview()
}

func (e *Editor) setColor(value string) bool {
	c, err := ParseColor(value)
	if err != nil {
		return false
	}
	e.color = c
	e.colorValue = value
	return true
}

// SetStrokeWidth changes the stroke width, clamped to [1, 50].
func (e *Editor) SetStrokeWidth(w float64) {
	if math.IsNaN(w) {
		return
	}
	e.size = clampWidth(w)
	e.refreshPreview()
}

func (e *Editor) refreshPreview() {
	if e.drawing && e.tool.IsShape() {
		e.drawShape(e.lastX, e.lastY)
	}
}

// BeginStroke starts a gesture at (x, y). Starting while a gesture is active
// ends the previous one at its last point.
func (e *Editor) BeginStroke(x, y float64) {
	if e.drawing {
		e.EndStroke(e.lastX, e.lastY)
	}
	e.drawing = true
	e.lastX, e.lastY = x, y
	e.startX, e.startY = x, y
	if e.tool.IsShape() {
		s := e.snapshot()
		e.preview = &s
	}
}

// ContinueStroke extends the gesture to (x, y). It does nothing when no
// gesture is active.
func (e *Editor) ContinueStroke(x, y float64) {
	if !e.drawing {
		return
	}
	switch e.tool {
	case ToolBrush:
		e.paintSegment(e.lastX, e.lastY, x, y)
	case ToolEraser:
		e.eraseSegment(e.lastX, e.lastY, x, y)
	case ToolLine, ToolRectangle, ToolCircle:
		e.drawShape(x, y)
	}
	e.lastX, e.lastY = x, y
}

// EndStroke commits the gesture and records a history entry.
func (e *Editor) EndStroke(x, y float64) {
	if !e.drawing {
		return
	}
	if e.tool.IsShape() {
		e.drawShape(x, y)
	}
	e.history.Push(e.snapshot())
	e.drawing = false
	e.preview = nil
}

func (e *Editor) drawShape(x, y float64) {
	if e.preview == nil {
		return
	}
	e.restore(*e.preview)

	e.dc.SetRGBA(e.color.R, e.color.G, e.color.B, e.color.A)
	e.dc.SetLineWidth(e.size)
	switch e.tool {
	case ToolLine:
		e.dc.DrawLine(e.startX, e.startY, x, y)
	case ToolRectangle:
		e.dc.DrawRectangle(e.startX, e.startY, x-e.startX, y-e.startY)
	case ToolCircle:
		e.dc.DrawCircle(e.startX, e.startY, math.Hypot(x-e.startX, y-e.startY))
	default:
		return
	}
	if err := e.dc.Stroke(); err != nil {
		log.Printf("[EDITOR] Shape stroke failed: %v", err)
	}
}

func (e *Editor) paintSegment(x1, y1, x2, y2 float64) {
	e.dc.SetRGBA(e.color.R, e.color.G, e.color.B, e.color.A)
	e.dc.SetLineWidth(e.size)
	e.dc.DrawLine(x1, y1, x2, y2)
	if err := e.dc.Stroke(); err != nil {
		log.Printf("[EDITOR] Brush stroke failed: %v", err)
	}
}

// eraseSegment removes pixel coverage along the segment (destination-out):
// the segment is rasterized into the mask and every canvas pixel is scaled
// by the inverse of its coverage.
func (e *Editor) eraseSegment(x1, y1, x2, y2 float64) {
	e.maskDC.SetRGBA(1, 1, 1, 1)
	e.maskDC.SetLineWidth(e.size)
	e.maskDC.DrawLine(x1, y1, x2, y2)
	if err := e.maskDC.Stroke(); err != nil {
		log.Printf("[EDITOR] Eraser stroke failed: %v", err)
		return
	}

	pad := e.size/2 + 2
	r := image.Rect(
		int(math.Floor(math.Min(x1, x2)-pad)), int(math.Floor(math.Min(y1, y2)-pad)),
		int(math.Ceil(math.Max(x1, x2)+pad)), int(math.Ceil(math.Max(y1, y2)+pad)),
	).Intersect(image.Rect(0, 0, e.width, e.height))

	dst, cov := e.pix.Data(), e.mask.Data()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := (y*e.width + x) * 4
			m := cov[i+3]
			if m == 0 {
				continue
			}
			keep := uint16(255 - m)
			for j := i; j < i+4; j++ {
				dst[j] = uint8(uint16(dst[j]) * keep / 255)
			}
			cov[i], cov[i+1], cov[i+2], cov[i+3] = 0, 0, 0, 0
		}
	}
}

// Clear fills the canvas with the background and forgets all history.
func (e *Editor) Clear() {
	e.drawing = false
	e.preview = nil
	e.pix.Clear(e.background)
	e.history.Reset(e.snapshot())
	log.Println("[EDITOR] Canvas cleared")
}

// Undo restores the previous history entry. At the first entry it does nothing.
func (e *Editor) Undo() bool {
	if e.drawing {
		return false
	}
	s, ok := e.history.Undo()
	if ok {
		e.restore(s)
	}
	return ok
}

// Redo re-applies the entry after the cursor, if any.
func (e *Editor) Redo() bool {
	if e.drawing {
		return false
	}
	s, ok := e.history.Redo()
	if ok {
		e.restore(s)
	}
	return ok
}

// Checkpoint records the current pixels as a history entry.
func (e *Editor) Checkpoint() {
	e.history.Push(e.snapshot())
}

// Resize changes the canvas dimensions keeping the overlapping content. New
// area is filled with the background.
func (e *Editor) Resize(w, h int) {
	if w <= 0 || h <= 0 || (w == e.width && h == e.height) {
		return
	}
	old := e.snapshot()
	e.allocate(w, h)
	e.restore(old)
	log.Printf("[EDITOR] Canvas resized: %dx%d", w, h)
}

// LoadImage draws img scaled over the whole canvas and checkpoints.
func (e *Editor) LoadImage(img image.Image) {
	if e.drawing {
		e.EndStroke(e.lastX, e.lastY)
	}
	dst := e.pix.ToImage()
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	copy(e.pix.Data(), dst.Pix)
	e.Checkpoint()
}

// Image returns a copy of the current pixels.
func (e *Editor) Image() *image.RGBA {
	return e.pix.ToImage()
}

// Snapshot returns a copy of the current pixels.
func (e *Editor) Snapshot() Snapshot {
	return e.snapshot()
}

// ExportPNG writes the current pixels as PNG.
func (e *Editor) ExportPNG(w io.Writer) error {
	if err := e.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (e *Editor) snapshot() Snapshot {
	return Snapshot{Width: e.width, Height: e.height, Pix: e.pix.Data()}.clone()
}

// restore copies s onto the canvas. Snapshots of another size are drawn at
// the origin over the background.
func (e *Editor) restore(s Snapshot) {
	dst := e.pix.Data()
	if s.Width == e.width && s.Height == e.height {
		copy(dst, s.Pix)
		return
	}
	e.pix.Clear(e.background)
	w := min(s.Width, e.width) * 4
	for y := 0; y < min(s.Height, e.height); y++ {
		copy(dst[y*e.width*4:y*e.width*4+w], s.Pix[y*s.Width*4:])
	}
}
