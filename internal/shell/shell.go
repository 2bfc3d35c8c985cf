package shell

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"strings"
	"time"

	"CanvasEditor/internal/caps"
	"CanvasEditor/internal/editor"
	"CanvasEditor/internal/export"
	"CanvasEditor/internal/input"
	"CanvasEditor/internal/store"
)

const (
	ToastDuration = 3 * time.Second
	TipDelay      = 2 * time.Second

	ClearPrompt = "Clear the entire canvas? This action cannot be undone."
	TipMessage  = "Tip: Use keyboard shortcuts for faster drawing!"
)

// ErrUnsupported is returned by Start when the client cannot host a canvas.
var ErrUnsupported = errors.New("canvas not supported")

type Options struct {
	// Dispatch runs timer callbacks on the session's owning goroutine.
	Dispatch      func(func())
	Events        *store.EventLog
	SeenTips      *store.Flag
	ToastDuration time.Duration
	TipDelay      time.Duration
}

type Shell struct {
	canvas   Canvas
	surface  Surface
	report   caps.Report
	dispatch func(func())
	events   *store.EventLog
	seenTips *store.Flag
	tipDelay time.Duration
	now      func() time.Time

	toasts  *input.Debouncer
	tip     *time.Timer
	monitor *FrameMonitor
}

func New(canvas Canvas, surface Surface, report caps.Report, opts Options) *Shell {
	if opts.Dispatch == nil {
		opts.Dispatch = func(f func()) { f() }
	}
	if opts.ToastDuration <= 0 {
		opts.ToastDuration = ToastDuration
	}
	if opts.TipDelay <= 0 {
		opts.TipDelay = TipDelay
	}
	if opts.Events == nil {
		opts.Events = store.NewEventLog(nil, "")
	}
	if opts.SeenTips == nil {
		opts.SeenTips = store.NewFlag(nil, store.SeenTipsKey)
	}
	return &Shell{
		canvas:   canvas,
		surface:  surface,
		report:   report,
		dispatch: opts.Dispatch,
		events:   opts.Events,
		seenTips: opts.SeenTips,
		tipDelay: opts.TipDelay,
		now:      time.Now,
		toasts:   input.NewDebouncer(opts.ToastDuration, opts.Dispatch),
		monitor:  NewFrameMonitor(),
	}
}

// Start shows the initial state, logs the welcome message and schedules the
// first-run tip. A client without canvas support gets the fallback instead.
func (s *Shell) Start() error {
	if s.canvas == nil || !s.report.Has(caps.Canvas) {
		s.surface.ShowFallback(FallbackMessage)
		return ErrUnsupported
	}
	s.surface.HighlightTool(s.canvas.Tool())
	s.surface.HighlightColor(s.canvas.Color())
	if s.report.LowSupport() {
		log.Printf("[SHELL] Limited browser support (%d%%), missing: %v", s.report.Score(), s.report.Missing())
	}

	log.Print(WelcomeMessage(s.report))
	if !s.seenTips.IsSet() {
		s.tip = time.AfterFunc(s.tipDelay, func() {
			s.dispatch(func() {
				s.Toast(TipMessage, ToastInfo)
				s.seenTips.Set()
			})
		})
	}
	s.Track("session_start")
	return nil
}

// Close cancels pending timers.
func (s *Shell) Close() {
	if s.tip != nil {
		s.tip.Stop()
	}
	s.toasts.Stop()
}

// Toast replaces any visible toast; it hides itself after the toast duration.
func (s *Shell) Toast(message string, kind ToastKind) {
	s.surface.ShowToast(message, kind)
	s.toasts.Trigger(s.surface.HideToast)
}

func (s *Shell) SelectTool(t editor.Tool) {
	s.canvas.SetTool(t)
	s.surface.HighlightTool(t)
	s.Toast("Tool: "+t.Label(), ToastInfo)
}

// SelectColor applies a hex color. Invalid values are ignored.
func (s *Shell) SelectColor(value string) {
	if _, err := editor.ParseColor(value); err != nil {
		log.Printf("[SHELL] Ignoring color %q: %v", value, err)
		return
	}
	s.canvas.SetColor(value)
	s.surface.HighlightColor(s.canvas.Color())
}

func (s *Shell) SetStrokeWidth(w float64) {
	s.canvas.SetStrokeWidth(w)
}

func (s *Shell) Undo() {
	if s.canvas.Undo() {
		s.Toast("Undo performed", ToastInfo)
	}
}

func (s *Shell) Redo() {
	if s.canvas.Redo() {
		s.Toast("Redo performed", ToastInfo)
	}
}

// RequestClear asks for confirmation and clears only when it is given.
func (s *Shell) RequestClear() {
	s.surface.Confirm(ClearPrompt, func(ok bool) {
		if !ok {
			return
		}
		s.canvas.Clear()
		s.Toast("Canvas cleared", ToastInfo)
		s.Track("canvas_cleared")
	})
}

// Save downloads the canvas as a timestamped PNG.
func (s *Shell) Save() {
	s.download("png", export.PNG)
}

// SavePDF downloads the canvas as a single-page PDF.
func (s *Shell) SavePDF() {
	s.download("pdf", export.PDF)
}

func (s *Shell) download(ext string, encode func(io.Writer, image.Image) error) {
	var buf bytes.Buffer
	if err := encode(&buf, s.canvas.Image()); err != nil {
		log.Printf("[SHELL] Export failed: %v", err)
		s.Toast("Export failed", ToastWarning)
		return
	}
	name := export.FileName(s.now(), ext)
	s.surface.Download(name, buf.Bytes(), func(err error) {
		if err != nil {
			log.Printf("[SHELL] Download of %s failed: %v", name, err)
			s.Toast("Export failed", ToastWarning)
			return
		}
		s.Toast("Image saved successfully!", ToastSuccess)
		s.Track("canvas_saved_" + ext)
	})
}

// SetOnline reports a connectivity change from the front-end.
func (s *Shell) SetOnline(online bool) {
	if online {
		s.Toast("Back online!", ToastSuccess)
		return
	}
	s.Toast("You are offline. Some features may be limited.", ToastWarning)
}

// Track records a usage event. Failures never reach the user.
func (s *Shell) Track(name string) {
	s.events.Track(name)
}

// Frame records a painted frame with the monitor.
func (s *Shell) Frame() {
	s.monitor.Tick()
}

// Frames records n frames painted by the client since its last report.
func (s *Shell) Frames(n int) {
	s.monitor.Add(n)
}

func (s *Shell) Monitor() *FrameMonitor { return s.monitor }

// FallbackMessage is shown when the client cannot run the editor.
const FallbackMessage = "Your browser has limited canvas support. " +
	"Please try updating your browser or using Chrome or Firefox, then retry."

// WelcomeMessage summarizes the client and the shortcuts.
func WelcomeMessage(r caps.Report) string {
	b := r.Browser()
	mode := "Desktop"
	if b.Mobile {
		mode = "Mobile"
	}
	mark := func(f caps.Feature, label string) string {
		if r.Has(f) {
			return "+ " + label
		}
		return "- " + label
	}

	var sb strings.Builder
	sb.WriteString("[SHELL] Welcome to Canvas Editor!\n")
	fmt.Fprintf(&sb, "Browser: %s %s\n%s Mode\n", b.Name, b.Version, mode)
	sb.WriteString("Features Available:\n")
	for _, line := range []string{
		mark(caps.PointerEvents, "Pointer Events"),
		mark(caps.TouchEvents, "Touch Support"),
		mark(caps.PassiveEvents, "Passive Events"),
	} {
		sb.WriteString("  " + line + "\n")
	}
	sb.WriteString("Keyboard Shortcuts:\n")
	sb.WriteString("  B - Brush | E - Eraser | L - Line\n")
	sb.WriteString("  R - Rectangle | C - Circle\n")
	sb.WriteString("  Ctrl+Z - Undo | Ctrl+Y - Redo | Ctrl+S - Save")
	return sb.String()
}
