package ui

import (
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"

	"CanvasEditor/internal/input"
)

// Board shows the canvas pixels and forwards mouse input to the normalizer
// as browser-style mouse events.
type Board struct {
	widget.BaseWidget
	raster *canvas.Raster
	input  *input.Normalizer

	// OnChanged runs after every forwarded event.
	OnChanged func()
	// OnFrame runs each time the raster is painted.
	OnFrame func()

	last fyne.Position

	mu    sync.Mutex
	frame image.Image
}

var _ fyne.Widget = (*Board)(nil)
var _ fyne.Draggable = (*Board)(nil)
var _ desktop.Mouseable = (*Board)(nil)
var _ desktop.Hoverable = (*Board)(nil)
var _ mobile.Touchable = (*Board)(nil)

func NewBoard() *Board {
	b := &Board{}
	b.raster = canvas.NewRaster(b.paint)
	b.ExtendBaseWidget(b)
	return b
}

// Bind attaches the normalizer that receives input.
func (b *Board) Bind(n *input.Normalizer) {
	b.input = n
}

// SetFrame replaces the displayed pixels.
func (b *Board) SetFrame(img image.Image) {
	b.mu.Lock()
	b.frame = img
	b.mu.Unlock()
	b.raster.Refresh()
}

func (b *Board) paint(w, h int) image.Image {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.OnFrame != nil {
		b.OnFrame()
	}
	if b.frame == nil {
		blank := image.NewRGBA(image.Rect(0, 0, 1, 1))
		blank.Set(0, 0, color.White)
		return blank
	}
	return b.frame
}

// Resize keeps the canvas the size of the widget.
func (b *Board) Resize(size fyne.Size) {
	b.BaseWidget.Resize(size)
	if b.input == nil || size.Width < 1 || size.Height < 1 {
		return
	}
	b.input.SetBounds(input.Rect{Width: float64(size.Width), Height: float64(size.Height)})
	b.input.RequestResize(int(size.Width), int(size.Height))
}

func (b *Board) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (b *Board) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(b.raster)
}

func (b *Board) MouseDown(ev *desktop.MouseEvent) {
	b.forward(mouseEvent(input.PhaseDown, ev.Position, ev.Button, ev.Button))
}

func (b *Board) MouseUp(ev *desktop.MouseEvent) {
	b.forward(mouseEvent(input.PhaseUp, ev.Position, ev.Button, 0))
}

func (b *Board) MouseIn(*desktop.MouseEvent) {}

func (b *Board) MouseMoved(ev *desktop.MouseEvent) {
	b.forward(mouseEvent(input.PhaseMove, ev.Position, 0, ev.Button))
}

// MouseOut ends any stroke at the last known point.
func (b *Board) MouseOut() {
	b.forward(mouseEvent(input.PhaseLeave, b.last, 0, 0))
}

func (b *Board) Dragged(ev *fyne.DragEvent) {
	if b.touching() {
		b.forwardTouch(touchEvent(input.PhaseMove, ev.Position, true))
		return
	}
	b.forward(mouseEvent(input.PhaseMove, ev.Position, 0, desktop.MouseButtonPrimary))
}

func (b *Board) DragEnd() {
	if b.touching() {
		return
	}
	b.forward(mouseEvent(input.PhaseUp, b.last, desktop.MouseButtonPrimary, 0))
}

func (b *Board) TouchDown(ev *mobile.TouchEvent) {
	b.forwardTouch(touchEvent(input.PhaseDown, ev.Position, true))
}

func (b *Board) TouchUp(ev *mobile.TouchEvent) {
	b.forwardTouch(touchEvent(input.PhaseUp, ev.Position, false))
}

func (b *Board) TouchCancel(ev *mobile.TouchEvent) {
	b.forwardTouch(touchEvent(input.PhaseCancel, ev.Position, false))
}

func (b *Board) touching() bool {
	return b.input != nil && b.input.Source() == input.SourceTouch
}

func (b *Board) forward(ev input.MouseEvent) {
	b.last = fyne.NewPos(float32(ev.ClientX), float32(ev.ClientY))
	if b.input == nil {
		return
	}
	b.input.HandleMouse(ev)
	b.changed()
}

func (b *Board) forwardTouch(ev input.TouchEvent) {
	if b.input == nil {
		return
	}
	b.input.HandleTouch(ev)
	b.changed()
}

func (b *Board) changed() {
	if b.OnChanged != nil {
		b.OnChanged()
	}
}

// touchEvent describes a single finger. Fyne reports one contact at a time,
// so pinching is not available here.
func touchEvent(phase input.Phase, pos fyne.Position, down bool) input.TouchEvent {
	t := input.Touch{ClientX: float64(pos.X), ClientY: float64(pos.Y)}
	ev := input.TouchEvent{Phase: phase, Changed: []input.Touch{t}}
	if down {
		ev.Touches = []input.Touch{t}
	}
	return ev
}

// mouseEvent converts Fyne buttons to DOM numbering: changed is the button
// the event is about, held the buttons still down.
func mouseEvent(phase input.Phase, pos fyne.Position, changed, held desktop.MouseButton) input.MouseEvent {
	return input.MouseEvent{
		Phase:   phase,
		Button:  domButton(changed),
		Buttons: int(held) & 7,
		ClientX: float64(pos.X),
		ClientY: float64(pos.Y),
	}
}

func domButton(b desktop.MouseButton) int {
	switch {
	case b&desktop.MouseButtonPrimary != 0:
		return input.ButtonPrimary
	case b&desktop.MouseButtonTertiary != 0:
		return 1
	case b&desktop.MouseButtonSecondary != 0:
		return 2
	}
	return -1
}
