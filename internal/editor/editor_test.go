package editor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	opts := DefaultOptions()
	opts.Width, opts.Height = 160, 120
	return New(opts)
}

func pixel(s Snapshot, x, y int) [4]uint8 {
	i := (y*s.Width + x) * 4
	return [4]uint8{s.Pix[i], s.Pix[i+1], s.Pix[i+2], s.Pix[i+3]}
}

var white = [4]uint8{255, 255, 255, 255}

func TestNewEditorStartsBlank(t *testing.T) {
	e := newTestEditor(t)
	w, h := e.Size()
	assert.Equal(t, 160, w)
	assert.Equal(t, 120, h)
	assert.Equal(t, 1, e.HistoryLen())
	assert.False(t, e.CanUndo())
	assert.Equal(t, white, pixel(e.Snapshot(), 50, 50))
	assert.Equal(t, ToolBrush, e.Tool())
	assert.Equal(t, "#007aff", e.Color())
}

func TestBrushStrokeAndUndo(t *testing.T) {
	e := newTestEditor(t)
	before := e.Snapshot()

	e.SetColor("#ff0000")
	e.SetStrokeWidth(5)
	e.BeginStroke(10, 10)
	e.ContinueStroke(100, 100)
	e.EndStroke(100, 100)

	assert.Equal(t, 2, e.HistoryLen())
	after := e.Snapshot()
	assert.False(t, before.Equal(after))
	p := pixel(after, 55, 55)
	assert.Equal(t, uint8(255), p[0])
	assert.Less(t, p[1], uint8(64))

	require.True(t, e.Undo())
	assert.True(t, before.Equal(e.Snapshot()))
}

func TestContinueBeforeBeginIsIgnored(t *testing.T) {
	e := newTestEditor(t)
	before := e.Snapshot()
	e.ContinueStroke(20, 20)
	e.EndStroke(30, 30)
	assert.True(t, before.Equal(e.Snapshot()))
	assert.Equal(t, 1, e.HistoryLen())
}

func TestUndoRestoresNStrokesAgo(t *testing.T) {
	e := newTestEditor(t)
	states := []Snapshot{e.Snapshot()}
	for i := range 4 {
		y := float64(10 + i*20)
		e.BeginStroke(10, y)
		e.ContinueStroke(150, y)
		e.EndStroke(150, y)
		states = append(states, e.Snapshot())
	}

	for n := 1; n <= 4; n++ {
		require.True(t, e.Undo())
		assert.True(t, states[4-n].Equal(e.Snapshot()), "undo %d", n)
	}
	// at the blank canvas undo has no further effect
	assert.False(t, e.Undo())
	assert.False(t, e.Undo())
	assert.True(t, states[0].Equal(e.Snapshot()))
}

func TestStrokeAfterUndoDiscardsRedo(t *testing.T) {
	e := newTestEditor(t)
	e.BeginStroke(10, 10)
	e.EndStroke(10, 10)
	e.BeginStroke(20, 20)
	e.ContinueStroke(40, 40)
	e.EndStroke(40, 40)
	e.Undo()
	assert.True(t, e.CanRedo())

	e.BeginStroke(50, 50)
	e.ContinueStroke(60, 60)
	e.EndStroke(60, 60)
	assert.False(t, e.CanRedo())
	assert.False(t, e.Redo())
}

func TestRedoRestoresUndoneStroke(t *testing.T) {
	e := newTestEditor(t)
	e.BeginStroke(10, 10)
	e.ContinueStroke(80, 80)
	e.EndStroke(80, 80)
	drawn := e.Snapshot()

	e.Undo()
	require.True(t, e.Redo())
	assert.True(t, drawn.Equal(e.Snapshot()))
}

func TestRectanglePreviewLeavesNoResidue(t *testing.T) {
	e := newTestEditor(t)
	e.SetTool(ToolRectangle)
	e.BeginStroke(20, 20)
	e.ContinueStroke(120, 100)
	e.ContinueStroke(40, 90)
	e.ContinueStroke(100, 30)
	e.EndStroke(80, 60)
	assert.Equal(t, 2, e.HistoryLen())

	ref := newTestEditor(t)
	ref.SetTool(ToolRectangle)
	ref.BeginStroke(20, 20)
	ref.EndStroke(80, 60)

	assert.True(t, ref.Snapshot().Equal(e.Snapshot()))
	// a point only the larger preview touched stays background
	assert.Equal(t, white, pixel(e.Snapshot(), 120, 70))
}

func TestCircleAndLineCommit(t *testing.T) {
	for _, tool := range []Tool{ToolLine, ToolCircle} {
		t.Run(tool.String(), func(t *testing.T) {
			e := newTestEditor(t)
			blank := e.Snapshot()
			e.SetTool(tool)
			e.BeginStroke(80, 60)
			e.ContinueStroke(100, 60)
			e.EndStroke(110, 60)
			assert.False(t, blank.Equal(e.Snapshot()))
			assert.Equal(t, 2, e.HistoryLen())
		})
	}
}

func TestEraserClearsToTransparent(t *testing.T) {
	e := newTestEditor(t)
	e.SetStrokeWidth(10)
	e.SetTool(ToolEraser)
	e.BeginStroke(20, 60)
	e.ContinueStroke(140, 60)
	e.EndStroke(140, 60)

	p := pixel(e.Snapshot(), 80, 60)
	assert.Equal(t, uint8(0), p[3])
	assert.Equal(t, white, pixel(e.Snapshot(), 80, 10))
}

func TestClearThenUndoHasNoEffect(t *testing.T) {
	e := newTestEditor(t)
	e.BeginStroke(10, 10)
	e.ContinueStroke(50, 50)
	e.EndStroke(50, 50)

	e.Clear()
	cleared := e.Snapshot()
	assert.Equal(t, 1, e.HistoryLen())
	assert.False(t, e.Undo())
	assert.True(t, cleared.Equal(e.Snapshot()))
	assert.Equal(t, white, pixel(cleared, 30, 30))
}

func TestSecondBeginEndsPreviousStroke(t *testing.T) {
	e := newTestEditor(t)
	e.SetTool(ToolLine)
	e.BeginStroke(10, 10)
	e.ContinueStroke(50, 50)
	e.BeginStroke(100, 10)
	assert.Equal(t, 2, e.HistoryLen())
	assert.True(t, e.Drawing())
	e.EndStroke(100, 100)
	assert.Equal(t, 3, e.HistoryLen())
}

func TestSetColorRedrawsPreview(t *testing.T) {
	e := newTestEditor(t)
	e.SetTool(ToolLine)
	e.SetStrokeWidth(6)
	e.BeginStroke(10, 60)
	e.ContinueStroke(150, 60)
	e.SetColor("#00ff00")
	p := pixel(e.Snapshot(), 80, 60)
	assert.Equal(t, uint8(255), p[1])
	assert.Less(t, p[0], uint8(64))
}

func TestInvalidInputIgnored(t *testing.T) {
	e := newTestEditor(t)
	e.SetColor("not-a-color")
	assert.Equal(t, "#007aff", e.Color())
	e.SetTool(Tool(42))
	assert.Equal(t, ToolBrush, e.Tool())
	e.SetStrokeWidth(500)
	assert.Equal(t, float64(MaxStrokeWidth), e.StrokeWidth())
	e.SetStrokeWidth(-3)
	assert.Equal(t, float64(MinStrokeWidth), e.StrokeWidth())
}

func TestResizeKeepsOverlap(t *testing.T) {
	e := newTestEditor(t)
	e.SetColor("#000000")
	e.SetStrokeWidth(4)
	e.BeginStroke(10, 10)
	e.ContinueStroke(30, 10)
	e.EndStroke(30, 10)
	before := pixel(e.Snapshot(), 20, 10)

	e.Resize(200, 40)
	w, h := e.Size()
	assert.Equal(t, 200, w)
	assert.Equal(t, 40, h)
	s := e.Snapshot()
	assert.Equal(t, before, pixel(s, 20, 10))
	assert.Equal(t, white, pixel(s, 190, 30))

	e.Resize(0, 10)
	w, _ = e.Size()
	assert.Equal(t, 200, w)
}

func TestExportPNG(t *testing.T) {
	e := newTestEditor(t)
	var buf bytes.Buffer
	require.NoError(t, e.ExportPNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 160, 120), img.Bounds())
	assert.Equal(t, 1, e.HistoryLen())
}

func TestLoadImageCheckpoints(t *testing.T) {
	e := newTestEditor(t)
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+3] = 255, 255
	}
	e.LoadImage(src)
	assert.Equal(t, 2, e.HistoryLen())
	got := e.Image().At(80, 60).(color.RGBA)
	assert.Equal(t, uint8(255), got.R)
	assert.Equal(t, uint8(0), got.G)
}

func TestParseTool(t *testing.T) {
	for _, tool := range Tools {
		got, err := ParseTool(tool.String())
		require.NoError(t, err)
		assert.Equal(t, tool, got)
	}
	_, err := ParseTool("spray")
	assert.Error(t, err)
	assert.Equal(t, "Rectangle", ToolRectangle.Label())
	assert.True(t, ToolCircle.IsShape())
	assert.False(t, ToolEraser.IsShape())
}
