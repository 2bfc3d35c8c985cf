package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"CanvasEditor/internal/editor"
)

// Palette is the set of swatches offered next to the tools.
var Palette = []string{"#007aff", "#000000", "#ff3b30", "#34c759", "#ffcc00", "#af52de"}

// Actions is what the toolbar triggers. *shell.Shell implements it.
type Actions interface {
	SelectTool(t editor.Tool)
	SelectColor(value string)
	SetStrokeWidth(w float64)
	Undo()
	Redo()
	RequestClear()
	Save()
	SavePDF()
}

type colorSwatch struct {
	widget.BaseWidget
	Value    string
	selected bool
	OnTapped func(value string)
}

func newColorSwatch(value string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Value: value, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	var fill color.Color = color.Black
	if c, err := editor.ParseColor(s.Value); err == nil {
		fill = c.Color()
	}
	rect := canvas.NewRectangle(fill)
	rect.SetMinSize(fyne.NewSize(28, 28))
	border := canvas.NewRectangle(color.Transparent)

	r := &swatchRenderer{swatch: s, rect: rect, border: border}
	r.Refresh()
	return r
}

type swatchRenderer struct {
	swatch *colorSwatch
	rect   *canvas.Rectangle
	border *canvas.Rectangle
}

func (r *swatchRenderer) Layout(size fyne.Size) {
	r.rect.Resize(size)
	r.border.Resize(size)
}

func (r *swatchRenderer) MinSize() fyne.Size { return r.rect.MinSize() }

func (r *swatchRenderer) Refresh() {
	r.border.StrokeColor = color.Gray{Y: 150}
	r.border.StrokeWidth = 1
	if r.swatch.selected {
		r.border.StrokeColor = color.Gray{Y: 40}
		r.border.StrokeWidth = 3
	}
	r.border.Refresh()
}

func (r *swatchRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.rect, r.border}
}

func (r *swatchRenderer) Destroy() {}

func (s *colorSwatch) setSelected(v bool) {
	if s.selected == v {
		return
	}
	s.selected = v
	s.Refresh()
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Value)
	}
}

// Toolbar holds the tool buttons, palette, width slider and history
// buttons.
type Toolbar struct {
	Object fyne.CanvasObject

	tools    map[editor.Tool]*widget.Button
	swatches []*colorSwatch
	slider   *widget.Slider
}

func NewToolbar(a Actions, width float64, openImage func()) *Toolbar {
	t := &Toolbar{tools: make(map[editor.Tool]*widget.Button)}

	toolBox := container.NewHBox()
	for _, tool := range editor.Tools {
		btn := widget.NewButton(tool.Label(), func() { a.SelectTool(tool) })
		t.tools[tool] = btn
		toolBox.Add(btn)
	}

	colorBox := container.NewHBox()
	for _, value := range Palette {
		sw := newColorSwatch(value, a.SelectColor)
		t.swatches = append(t.swatches, sw)
		colorBox.Add(sw)
	}

	t.slider = widget.NewSlider(editor.MinStrokeWidth, editor.MaxStrokeWidth)
	t.slider.Step = 1
	t.slider.SetValue(width)
	t.slider.OnChanged = a.SetStrokeWidth
	sliderBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), t.slider)

	actions := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), a.Undo),
		widget.NewToolbarAction(theme.ContentRedoIcon(), a.Redo),
		widget.NewToolbarAction(theme.DeleteIcon(), a.RequestClear),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.FolderOpenIcon(), openImage),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), a.Save),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), a.SavePDF),
	)

	t.Object = container.NewHBox(
		widget.NewLabel("Tool:"),
		toolBox,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderBox,
		layout.NewSpacer(),
		actions,
	)
	return t
}

// SetActiveTool marks the button of the selected tool.
func (t *Toolbar) SetActiveTool(active editor.Tool) {
	for tool, btn := range t.tools {
		imp := widget.MediumImportance
		if tool == active {
			imp = widget.HighImportance
		}
		if btn.Importance != imp {
			btn.Importance = imp
			btn.Refresh()
		}
	}
}

// SetActiveColor marks the matching swatch, if any.
func (t *Toolbar) SetActiveColor(value string) {
	for _, sw := range t.swatches {
		sw.setSelected(sw.Value == value)
	}
}

func (t *Toolbar) ActiveTool() (editor.Tool, bool) {
	for tool, btn := range t.tools {
		if btn.Importance == widget.HighImportance {
			return tool, true
		}
	}
	return 0, false
}
