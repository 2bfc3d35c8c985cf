package shell

import (
	"bytes"
	"errors"
	"image/png"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CanvasEditor/internal/caps"
	"CanvasEditor/internal/editor"
	"CanvasEditor/internal/store"
)

type toast struct {
	msg  string
	kind ToastKind
}

type fakeSurface struct {
	mu          sync.Mutex
	toasts      []toast
	visible     bool
	confirm     bool
	prompts     []string
	downloads   map[string][]byte
	downloadErr error
	holdSaves   bool
	pending     []func(error)
	tool        editor.Tool
	color       string
	fallback    string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{downloads: map[string][]byte{}}
}

func (f *fakeSurface) ShowToast(msg string, kind ToastKind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toasts = append(f.toasts, toast{msg, kind})
	f.visible = true
}

func (f *fakeSurface) HideToast() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible = false
}

func (f *fakeSurface) Confirm(msg string, answer func(bool)) {
	f.mu.Lock()
	f.prompts = append(f.prompts, msg)
	ok := f.confirm
	f.mu.Unlock()
	answer(ok)
}

func (f *fakeSurface) Download(name string, data []byte, done func(error)) {
	f.mu.Lock()
	if f.holdSaves {
		f.pending = append(f.pending, done)
		f.mu.Unlock()
		return
	}
	err := f.downloadErr
	if err == nil {
		f.downloads[name] = data
	}
	f.mu.Unlock()
	done(err)
}

func (f *fakeSurface) HighlightTool(t editor.Tool) { f.tool = t }
func (f *fakeSurface) HighlightColor(value string) { f.color = value }
func (f *fakeSurface) ShowFallback(message string) { f.fallback = message }

func (f *fakeSurface) lastToast() toast {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.toasts) == 0 {
		return toast{}
	}
	return f.toasts[len(f.toasts)-1]
}

func (f *fakeSurface) isVisible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible
}

func fullReport() caps.Report {
	probes := map[string]bool{}
	for _, f := range caps.AllFeatures {
		probes[string(f)] = true
	}
	return caps.Detect(probes, "Mozilla/5.0 (X11; Linux x86_64) Chrome/120.0 Safari/537.36")
}

func newTestShell(t *testing.T) (*Shell, *editor.Editor, *fakeSurface) {
	t.Helper()
	opts := editor.DefaultOptions()
	opts.Width, opts.Height = 80, 60
	ed := editor.New(opts)
	surface := newFakeSurface()
	s := New(ed, surface, fullReport(), Options{TipDelay: time.Hour})
	t.Cleanup(s.Close)
	return s, ed, surface
}

func stroke(ed *editor.Editor) {
	ed.BeginStroke(10, 10)
	ed.ContinueStroke(50, 40)
	ed.EndStroke(50, 40)
}

func TestToolShortcuts(t *testing.T) {
	s, ed, surface := newTestShell(t)

	cases := map[string]editor.Tool{
		"b": editor.ToolBrush,
		"E": editor.ToolEraser,
		"l": editor.ToolLine,
		"r": editor.ToolRectangle,
		"c": editor.ToolCircle,
	}
	for key, want := range cases {
		require.True(t, s.HandleKey(Key{Key: key}))
		assert.Equal(t, want, ed.Tool())
		assert.Equal(t, want, surface.tool)
		assert.Equal(t, "Tool: "+want.Label(), surface.lastToast().msg)
	}
}

func TestKeysInTextInputsIgnored(t *testing.T) {
	s, ed, _ := newTestShell(t)
	assert.False(t, s.HandleKey(Key{Key: "e", Target: "input"}))
	assert.False(t, s.HandleKey(Key{Key: "z", Ctrl: true, Target: "TEXTAREA"}))
	assert.Equal(t, editor.ToolBrush, ed.Tool())
	assert.False(t, s.HandleKey(Key{Key: "q"}))
}

func TestUndoRedoShortcuts(t *testing.T) {
	s, ed, surface := newTestShell(t)
	blank := ed.Snapshot()
	stroke(ed)
	drawn := ed.Snapshot()

	require.True(t, s.HandleKey(Key{Key: "z", Meta: true}))
	assert.True(t, ed.Snapshot().Equal(blank))
	assert.Equal(t, "Undo performed", surface.lastToast().msg)

	require.True(t, s.HandleKey(Key{Key: "Z", Ctrl: true, Shift: true}))
	assert.True(t, ed.Snapshot().Equal(drawn))

	s.HandleKey(Key{Key: "z", Ctrl: true})
	require.True(t, s.HandleKey(Key{Key: "y", Ctrl: true}))
	assert.True(t, ed.Snapshot().Equal(drawn))
}

func TestClearNeedsConfirmation(t *testing.T) {
	s, ed, surface := newTestShell(t)
	stroke(ed)
	drawn := ed.Snapshot()

	surface.confirm = false
	require.True(t, s.HandleKey(Key{Key: "Delete"}))
	assert.True(t, ed.Snapshot().Equal(drawn))
	require.Len(t, surface.prompts, 1)
	assert.Equal(t, ClearPrompt, surface.prompts[0])

	surface.confirm = true
	require.True(t, s.HandleKey(Key{Key: "Backspace"}))
	assert.False(t, ed.Snapshot().Equal(drawn))
	assert.False(t, ed.CanUndo())
	assert.Equal(t, "Canvas cleared", surface.lastToast().msg)
}

func TestSaveDownloadsPNG(t *testing.T) {
	s, _, surface := newTestShell(t)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }

	require.True(t, s.HandleKey(Key{Key: "s", Ctrl: true}))
	data, ok := surface.downloads["canvas-editor-1700000000000.png"]
	require.True(t, ok)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 80, img.Bounds().Dx())
	assert.Equal(t, toast{"Image saved successfully!", ToastSuccess}, surface.lastToast())

	s.SavePDF()
	pdf, ok := surface.downloads["canvas-editor-1700000000000.pdf"]
	require.True(t, ok)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestSaveFailureWarns(t *testing.T) {
	s, _, surface := newTestShell(t)
	surface.downloadErr = errors.New("blocked")
	s.Save()
	assert.Equal(t, ToastWarning, surface.lastToast().kind)
}

func TestSaveToastWaitsForWrite(t *testing.T) {
	s, _, surface := newTestShell(t)
	surface.holdSaves = true

	s.Save()
	s.SavePDF()
	require.Len(t, surface.pending, 2)
	assert.Empty(t, surface.lastToast().msg)

	// answers may arrive in any order; nothing is shown before one arrives
	surface.pending[1](nil)
	assert.Equal(t, toast{"Image saved successfully!", ToastSuccess}, surface.lastToast())

	surface.pending[0](errors.New("disk full"))
	assert.Equal(t, toast{"Export failed", ToastWarning}, surface.lastToast())
}

func TestSelectColor(t *testing.T) {
	s, ed, surface := newTestShell(t)
	s.SelectColor("#ff0000")
	assert.Equal(t, "#ff0000", ed.Color())
	assert.Equal(t, "#ff0000", surface.color)

	s.SelectColor("red")
	assert.Equal(t, "#ff0000", ed.Color())
}

func TestToastExpires(t *testing.T) {
	ed := editor.New(editor.Options{Width: 20, Height: 20})
	surface := newFakeSurface()
	s := New(ed, surface, fullReport(), Options{ToastDuration: 20 * time.Millisecond, TipDelay: time.Hour})
	defer s.Close()

	s.Toast("first", ToastInfo)
	s.Toast("second", ToastWarning)
	assert.True(t, surface.isVisible())
	assert.Equal(t, toast{"second", ToastWarning}, surface.lastToast())
	assert.Eventually(t, func() bool { return !surface.isVisible() }, time.Second, 5*time.Millisecond)
}

func TestOnlineOffline(t *testing.T) {
	s, _, surface := newTestShell(t)
	s.SetOnline(false)
	assert.Equal(t, ToastWarning, surface.lastToast().kind)
	s.SetOnline(true)
	assert.Equal(t, toast{"Back online!", ToastSuccess}, surface.lastToast())
}

func TestFirstRunTipShownOnce(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "canvas.db"))
	require.NoError(t, err)
	defer db.Close()

	run := func() *fakeSurface {
		ed := editor.New(editor.Options{Width: 20, Height: 20})
		surface := newFakeSurface()
		s := New(ed, surface, fullReport(), Options{
			TipDelay: 10 * time.Millisecond,
			SeenTips: store.NewFlag(db, store.SeenTipsKey),
			Events:   store.NewEventLog(db, "test"),
		})
		defer s.Close()
		require.NoError(t, s.Start())
		time.Sleep(60 * time.Millisecond)
		return surface
	}

	first := run()
	assert.Equal(t, TipMessage, first.lastToast().msg)
	second := run()
	assert.Empty(t, second.lastToast().msg)

	events := store.NewEventLog(db, "test").Events()
	require.Len(t, events, 2)
	assert.Equal(t, "session_start", events[0].Event)
}

func TestStartWithoutCanvasShowsFallback(t *testing.T) {
	ed := editor.New(editor.Options{Width: 20, Height: 20})
	surface := newFakeSurface()
	s := New(ed, surface, caps.Detect(nil, ""), Options{})
	defer s.Close()
	assert.ErrorIs(t, s.Start(), ErrUnsupported)
	assert.Equal(t, FallbackMessage, surface.fallback)
}

func TestWelcomeMessage(t *testing.T) {
	msg := WelcomeMessage(fullReport())
	assert.Contains(t, msg, "Browser: Chrome 120")
	assert.Contains(t, msg, "Desktop Mode")
	assert.Contains(t, msg, "+ Pointer Events")

	bare := WelcomeMessage(caps.Detect(map[string]bool{"canvas": true}, "Mozilla/5.0 (iPhone) Version/17.0 Safari/604.1"))
	assert.Contains(t, bare, "Mobile Mode")
	assert.True(t, strings.Contains(bare, "- Touch Support"))
}

func TestFrameMonitor(t *testing.T) {
	m := NewFrameMonitor()
	base := time.Unix(0, 0)
	now := base
	m.now = func() time.Time { return now }
	m.last = base

	for i := 0; i < 59; i++ {
		now = now.Add(10 * time.Millisecond)
		_, done := m.Tick()
		require.False(t, done)
	}
	now = base.Add(2 * time.Second)
	fps, done := m.Tick()
	require.True(t, done)
	assert.Equal(t, 30, fps)
	assert.Equal(t, 30, m.FPS())
}

func TestFrameMonitorCountsReportedFrames(t *testing.T) {
	m := NewFrameMonitor()
	base := time.Unix(0, 0)
	now := base
	m.now = func() time.Time { return now }
	m.last = base

	now = base.Add(500 * time.Millisecond)
	_, done := m.Add(30)
	require.False(t, done)
	_, done = m.Add(0)
	require.False(t, done)

	now = base.Add(time.Second)
	fps, done := m.Add(30)
	require.True(t, done)
	assert.Equal(t, 60, fps)
	assert.Equal(t, 60, m.FPS())
}
