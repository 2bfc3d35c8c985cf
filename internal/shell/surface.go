// Package shell is the application glue between a front-end and the editor:
// keyboard shortcuts, toasts, confirmation, export, first-run tips, usage
// tracking and the frame monitor.
package shell

import (
	"image"

	"CanvasEditor/internal/editor"
)

type ToastKind string

const (
	ToastInfo    ToastKind = "info"
	ToastSuccess ToastKind = "success"
	ToastWarning ToastKind = "warning"
)

// Surface is what a front-end must provide. All methods are called on the
// goroutine that owns the session, and Confirm and Download must invoke their
// callbacks there too.
type Surface interface {
	ShowToast(message string, kind ToastKind)
	HideToast()
	Confirm(message string, answer func(ok bool))
	// Download hands the file to the user. done reports whether it was
	// written; it is never called when the user cancels.
	Download(name string, data []byte, done func(err error))
	HighlightTool(t editor.Tool)
	HighlightColor(value string)
	ShowFallback(message string)
}

// Canvas is the part of the editor the shell drives. *editor.Editor
// implements it.
type Canvas interface {
	Tool() editor.Tool
	Color() string
	StrokeWidth() float64
	SetTool(t editor.Tool)
	SetColor(value string)
	SetStrokeWidth(w float64)
	Undo() bool
	Redo() bool
	Clear()
	Image() *image.RGBA
}
