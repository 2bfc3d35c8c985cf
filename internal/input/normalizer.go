// Package input turns raw pointer, touch and mouse events into the editor's
// begin/move/end protocol in canvas pixel coordinates.
package input

import (
	"log"
	"math"
	"time"

	"CanvasEditor/internal/caps"
)

const (
	minPinchWidth = 1
	maxPinchWidth = 50
)

// Sink receives normalized strokes. *editor.Editor implements it.
type Sink interface {
	BeginStroke(x, y float64)
	ContinueStroke(x, y float64)
	EndStroke(x, y float64)
	StrokeWidth() float64
	SetStrokeWidth(w float64)
	Size() (int, int)
	Resize(w, h int)
}

// SelectSource picks the best event family the report offers:
// pointer, then touch, then mouse.
func SelectSource(r caps.Report) Source {
	switch {
	case r.Has(caps.PointerEvents):
		return SourcePointer
	case r.Has(caps.TouchEvents):
		return SourceTouch
	default:
		return SourceMouse
	}
}

// ToCanvas maps a client coordinate into canvas pixels, correcting for the
// difference between the on-screen box and the pixel dimensions.
func ToCanvas(clientX, clientY float64, box Rect, pixelW, pixelH int) (float64, float64) {
	x := clientX - box.Left
	y := clientY - box.Top
	if box.Width > 0 {
		x *= float64(pixelW) / box.Width
	}
	if box.Height > 0 {
		y *= float64(pixelH) / box.Height
	}
	return x, y
}

// PinchWidth scales width by current/initial distance, rounded and clamped
// to [1, 50]. A degenerate initial distance leaves the width unchanged.
func PinchWidth(width, initial, current float64) float64 {
	if initial <= 0 || math.IsNaN(current) || math.IsInf(current, 0) {
		return width
	}
	w := math.Round(width * current / initial)
	return math.Max(minPinchWidth, math.Min(maxPinchWidth, w))
}

func distance(a, b Touch) float64 {
	return math.Hypot(a.ClientX-b.ClientX, a.ClientY-b.ClientY)
}

// Options configure a Normalizer.
type Options struct {
	// ResizeDelay debounces Resize requests. Zero uses DefaultResizeDelay.
	ResizeDelay time.Duration
	// Dispatch runs debounced work on the sink's owning goroutine.
	Dispatch func(func())
	// OnStrokeStart and OnStrokeEnd drive UI affordances such as a touch hint.
	OnStrokeStart func()
	OnStrokeEnd   func()
	// OnWidthChange reports stroke widths set by pinch gestures.
	OnWidthChange func(w float64)
}

// Normalizer listens to exactly one event family, chosen at construction.
// Events from other families are dropped.
type Normalizer struct {
	sink   Sink
	source Source
	box    Rect
	opts   Options

	// last canvas point, for ends that carry no coordinates
	lastX, lastY float64

	pinchDistance float64
	pinchWidth    float64

	resize *Debouncer
}

func New(sink Sink, report caps.Report, opts Options) *Normalizer {
	if opts.ResizeDelay <= 0 {
		opts.ResizeDelay = DefaultResizeDelay
	}
	n := &Normalizer{
		sink:   sink,
		source: SelectSource(report),
		opts:   opts,
		resize: NewDebouncer(opts.ResizeDelay, opts.Dispatch),
	}
	w, h := sink.Size()
	n.box = Rect{Width: float64(w), Height: float64(h)}
	log.Printf("[INPUT] Using %s events", n.source)
	return n
}

func (n *Normalizer) Source() Source { return n.source }

// SetBounds records where the canvas sits on screen.
func (n *Normalizer) SetBounds(box Rect) {
	n.box = box
}

func (n *Normalizer) Bounds() Rect { return n.box }

func (n *Normalizer) toCanvas(clientX, clientY float64) (float64, float64) {
	w, h := n.sink.Size()
	return ToCanvas(clientX, clientY, n.box, w, h)
}

func (n *Normalizer) begin(clientX, clientY float64) {
	x, y := n.toCanvas(clientX, clientY)
	n.lastX, n.lastY = x, y
	n.sink.BeginStroke(x, y)
	if n.opts.OnStrokeStart != nil {
		n.opts.OnStrokeStart()
	}
}

func (n *Normalizer) move(clientX, clientY float64) {
	x, y := n.toCanvas(clientX, clientY)
	n.lastX, n.lastY = x, y
	n.sink.ContinueStroke(x, y)
}

func (n *Normalizer) end(clientX, clientY float64) {
	x, y := n.toCanvas(clientX, clientY)
	n.finish(x, y)
}

func (n *Normalizer) finish(x, y float64) {
	n.sink.EndStroke(x, y)
	if n.opts.OnStrokeEnd != nil {
		n.opts.OnStrokeEnd()
	}
}

// HandlePointer processes a pointer event.
func (n *Normalizer) HandlePointer(ev PointerEvent) {
	if n.source != SourcePointer {
		return
	}
	switch ev.Phase {
	case PhaseDown:
		if ev.Button != ButtonPrimary {
			return
		}
		n.begin(ev.ClientX, ev.ClientY)
	case PhaseMove:
		n.move(ev.ClientX, ev.ClientY)
	case PhaseUp, PhaseCancel:
		n.end(ev.ClientX, ev.ClientY)
	}
}

// HandleTouch processes a touch event. One contact draws; two contacts
// resize the brush by pinching.
func (n *Normalizer) HandleTouch(ev TouchEvent) {
	if n.source != SourceTouch {
		return
	}
	switch ev.Phase {
	case PhaseDown:
		switch len(ev.Touches) {
		case 1:
			n.begin(ev.Touches[0].ClientX, ev.Touches[0].ClientY)
		case 2:
			n.pinchDistance = distance(ev.Touches[0], ev.Touches[1])
			n.pinchWidth = n.sink.StrokeWidth()
		}
	case PhaseMove:
		switch len(ev.Touches) {
		case 1:
			n.move(ev.Touches[0].ClientX, ev.Touches[0].ClientY)
		case 2:
			n.pinch(ev.Touches[0], ev.Touches[1])
		}
	case PhaseUp, PhaseCancel:
		n.pinchDistance = 0
		if t, ok := firstTouch(ev.Changed, ev.Touches); ok {
			n.end(t.ClientX, t.ClientY)
			return
		}
		n.finish(n.lastX, n.lastY)
	}
}

func (n *Normalizer) pinch(a, b Touch) {
	if n.pinchDistance <= 0 {
		n.pinchDistance = distance(a, b)
		n.pinchWidth = n.sink.StrokeWidth()
		return
	}
	w := PinchWidth(n.pinchWidth, n.pinchDistance, distance(a, b))
	if w == n.sink.StrokeWidth() {
		return
	}
	n.sink.SetStrokeWidth(w)
	if n.opts.OnWidthChange != nil {
		n.opts.OnWidthChange(w)
	}
}

func firstTouch(lists ...[]Touch) (Touch, bool) {
	for _, l := range lists {
		if len(l) > 0 {
			return l[0], true
		}
	}
	return Touch{}, false
}

// HandleMouse processes a mouse event. Only the primary button draws and the
// stroke ends when the pointer leaves the canvas.
func (n *Normalizer) HandleMouse(ev MouseEvent) {
	if n.source != SourceMouse {
		return
	}
	switch ev.Phase {
	case PhaseDown:
		if ev.Button == ButtonPrimary {
			n.begin(ev.ClientX, ev.ClientY)
		}
	case PhaseMove:
		if ev.Buttons&ButtonsPrimary != 0 {
			n.move(ev.ClientX, ev.ClientY)
		}
	case PhaseUp, PhaseLeave:
		n.end(ev.ClientX, ev.ClientY)
	}
}

// RequestResize schedules a canvas resize. Bursts collapse into the last
// request.
func (n *Normalizer) RequestResize(w, h int) {
	n.resize.Trigger(func() {
		n.sink.Resize(w, h)
	})
}

// Close cancels pending work.
func (n *Normalizer) Close() {
	n.resize.Stop()
}
