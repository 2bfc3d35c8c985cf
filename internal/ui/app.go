// Package ui is the Fyne desktop front-end.
package ui

import (
	"fmt"
	"image"
	"io"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/google/uuid"

	"CanvasEditor/internal/caps"
	"CanvasEditor/internal/config"
	"CanvasEditor/internal/editor"
	"CanvasEditor/internal/export"
	"CanvasEditor/internal/input"
	"CanvasEditor/internal/lan"
	"CanvasEditor/internal/shell"
	"CanvasEditor/internal/store"
)

const connectivityInterval = 5 * time.Second

type Options struct {
	Config *config.Config
	// KV persists usage events and the first-run flag. It may be nil.
	KV        store.KV
	StorageOK bool
}

// Run opens the editor window and blocks until it is closed.
func Run(opts Options) error {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	a := app.NewWithID("io.canvaseditor.desktop")
	w := NewWindow(a, opts)
	if err := w.Start(); err != nil {
		log.Printf("[UI] Startup failed: %v", err)
	}
	w.win.ShowAndRun()
	w.Close()
	return nil
}

// Window is one editor window. It is the shell's Surface; every method runs
// on the Fyne event goroutine.
type Window struct {
	app  fyne.App
	win  fyne.Window
	opts Options
	id   string

	editor  *editor.Editor
	input   *input.Normalizer
	shell   *shell.Shell
	board   *Board
	toolbar *Toolbar
	toast   *widget.Label
	status  *widget.Label

	stop chan struct{}
}

func NewWindow(a fyne.App, opts Options) *Window {
	cfg := opts.Config
	w := &Window{
		app:  a,
		win:  a.NewWindow("Canvas Editor"),
		opts: opts,
		id:   uuid.NewString(),
	}
	w.win.Resize(fyne.NewSize(float32(cfg.Canvas.Width), float32(cfg.Canvas.Height)+80))
	return w
}

// Start builds the editor and shows it. A client that cannot draw gets the
// fallback page instead.
func (w *Window) Start() error {
	cfg := w.opts.Config
	mobile := fyne.CurrentDevice().IsMobile()
	report := caps.Detect(Probes(w.opts.StorageOK, mobile), UserAgent())

	w.editor = editor.New(cfg.EditorOptions())
	w.board = NewBoard()
	w.input = input.New(w.editor, report, input.Options{
		ResizeDelay: cfg.ResizeDelay(),
		Dispatch:    w.dispatch,
	})
	w.board.Bind(w.input)
	w.board.OnChanged = w.refresh

	w.shell = shell.New(w.editor, w, report, shell.Options{
		Dispatch: w.dispatch,
		Events:   store.NewEventLog(w.opts.KV, w.id),
		SeenTips: store.NewFlag(w.opts.KV, store.SeenTipsKey),
	})
	w.board.OnFrame = w.shell.Frame
	w.toolbar = NewToolbar(w.shell, w.editor.StrokeWidth(), w.openImage)

	w.toast = widget.NewLabel("")
	w.toast.Hide()
	w.status = widget.NewLabel("")
	w.win.SetContent(container.NewBorder(
		w.toolbar.Object,
		container.NewVBox(w.toast, w.status),
		nil, nil,
		w.board,
	))
	w.bindKeys(w.win.Canvas())

	if err := w.shell.Start(); err != nil {
		return fmt.Errorf("start shell: %w", err)
	}
	w.stop = make(chan struct{})
	go w.watchConnectivity(w.stop)
	w.refresh()
	return nil
}

// Close stops background work.
func (w *Window) Close() {
	if w.stop != nil {
		close(w.stop)
		w.stop = nil
	}
	if w.input != nil {
		w.input.Close()
	}
	if w.shell != nil {
		w.shell.Close()
	}
}

// dispatch runs f on the Fyne goroutine and repaints.
func (w *Window) dispatch(f func()) {
	fyne.Do(func() {
		f()
		w.refresh()
	})
}

func (w *Window) refresh() {
	w.board.SetFrame(w.editor.Image())
	width, height := w.editor.Size()
	w.status.SetText(fmt.Sprintf("%s | size %.0f | %dx%d | %d fps",
		w.editor.Tool().Label(), w.editor.StrokeWidth(), width, height, w.shell.Monitor().FPS()))
}

func (w *Window) bindKeys(c fyne.Canvas) {
	handle := func(k shell.Key) {
		if w.shell.HandleKey(k) {
			w.refresh()
		}
	}
	c.SetOnTypedRune(func(r rune) {
		handle(shell.Key{Key: string(r)})
	})
	c.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyDelete:
			handle(shell.Key{Key: "Delete"})
		case fyne.KeyBackspace:
			handle(shell.Key{Key: "Backspace"})
		}
	})

	mod := fyne.KeyModifierShortcutDefault
	shortcuts := []struct {
		name fyne.KeyName
		mod  fyne.KeyModifier
		key  shell.Key
	}{
		{fyne.KeyZ, mod, shell.Key{Key: "z", Ctrl: true}},
		{fyne.KeyZ, mod | fyne.KeyModifierShift, shell.Key{Key: "z", Ctrl: true, Shift: true}},
		{fyne.KeyY, mod, shell.Key{Key: "y", Ctrl: true}},
		{fyne.KeyS, mod, shell.Key{Key: "s", Ctrl: true}},
	}
	for _, sc := range shortcuts {
		c.AddShortcut(&desktop.CustomShortcut{KeyName: sc.name, Modifier: sc.mod}, func(fyne.Shortcut) {
			handle(sc.key)
		})
	}
}

func (w *Window) watchConnectivity(stop <-chan struct{}) {
	online := lan.Online()
	ticker := time.NewTicker(connectivityInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		now := lan.Online()
		if now == online {
			continue
		}
		online = now
		w.dispatch(func() { w.shell.SetOnline(now) })
	}
}

func (w *Window) openImage() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			log.Printf("[UI] Open dialog: %v", err)
			return
		}
		if rc == nil {
			return
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err == nil {
			var img image.Image
			img, err = export.DecodeImage(data)
			if err == nil {
				w.editor.LoadImage(img)
			}
		}
		if err != nil {
			log.Printf("[UI] Load %s: %v", rc.URI().Name(), err)
			w.shell.Toast("Could not open that file", shell.ToastWarning)
			return
		}
		w.shell.Toast("Image loaded", shell.ToastSuccess)
		w.shell.Track("image_loaded")
		w.refresh()
	}, w.win)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}))
	d.Show()
}

func toastImportance(kind shell.ToastKind) widget.Importance {
	switch kind {
	case shell.ToastSuccess:
		return widget.SuccessImportance
	case shell.ToastWarning:
		return widget.WarningImportance
	}
	return widget.HighImportance
}

func (w *Window) ShowToast(message string, kind shell.ToastKind) {
	w.toast.Importance = toastImportance(kind)
	w.toast.SetText(message)
	w.toast.Show()
}

func (w *Window) HideToast() {
	w.toast.Hide()
}

func (w *Window) Confirm(message string, answer func(ok bool)) {
	dialog.ShowConfirm("Clear canvas", message, func(ok bool) {
		answer(ok)
		w.refresh()
	}, w.win)
}

// Download asks where to save; the write happens once the user picks a file.
func (w *Window) Download(name string, data []byte, done func(error)) {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			done(fmt.Errorf("save dialog: %w", err))
			return
		}
		if wc == nil {
			log.Printf("[UI] Save of %s cancelled", name)
			return
		}
		done(writeFile(wc, data))
	}, w.win)
	d.SetFileName(name)
	d.Show()
}

func writeFile(wc fyne.URIWriteCloser, data []byte) error {
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("write %s: %w", wc.URI().Name(), err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close %s: %w", wc.URI().Name(), err)
	}
	return nil
}

func (w *Window) HighlightTool(t editor.Tool) {
	w.toolbar.SetActiveTool(t)
}

func (w *Window) HighlightColor(value string) {
	w.toolbar.SetActiveColor(value)
}

func (w *Window) ShowFallback(message string) {
	title := widget.NewLabelWithStyle("Compatibility Issue Detected", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	retry := widget.NewButton("Retry", func() {
		w.Close()
		if err := w.Start(); err != nil {
			log.Printf("[UI] Retry failed: %v", err)
		}
	})
	w.win.SetContent(container.NewCenter(container.NewVBox(title, widget.NewLabel(message), retry)))
}
