package web

import (
	"CanvasEditor/internal/input"
	"CanvasEditor/internal/shell"
)

// Message types sent by the browser.
const (
	msgHello   = "hello"
	msgPointer = "pointer"
	msgTouch   = "touch"
	msgMouse   = "mouse"
	msgKey     = "key"
	msgCommand = "command"
	msgResize  = "resize"
	msgStatus  = "status"
	msgConfirm = "confirm"
	msgLoad    = "load"
	msgFrames  = "frames"
)

// clientMessage is every message the browser sends, told apart by Type.
type clientMessage struct {
	Type string `json:"type"`

	// hello
	Probes    map[string]bool `json:"probes,omitempty"`
	UserAgent string          `json:"userAgent,omitempty"`

	// hello, resize
	Width  int         `json:"width,omitempty"`
	Height int         `json:"height,omitempty"`
	Box    *input.Rect `json:"box,omitempty"`

	Pointer *input.PointerEvent `json:"pointer,omitempty"`
	Touch   *input.TouchEvent   `json:"touch,omitempty"`
	Mouse   *input.MouseEvent   `json:"mouse,omitempty"`
	Key     *shell.Key          `json:"key,omitempty"`

	// command
	Name   string  `json:"name,omitempty"`
	Value  string  `json:"value,omitempty"`
	Number float64 `json:"number,omitempty"`

	// confirm
	ID int  `json:"id,omitempty"`
	OK bool `json:"ok,omitempty"`

	// status
	Online bool `json:"online,omitempty"`

	// load
	Data []byte `json:"data,omitempty"`

	// frames: animation frames painted since the last report
	Count int `json:"count,omitempty"`
}

// serverMessage is every JSON message sent to the browser. Frames travel as
// binary PNG messages instead.
type serverMessage struct {
	Type    string          `json:"type"`
	Message string          `json:"message,omitempty"`
	Kind    shell.ToastKind `json:"kind,omitempty"`
	ID      int             `json:"id,omitempty"`
	Name    string          `json:"name,omitempty"`
	Data    []byte          `json:"data,omitempty"`
	Tool    string          `json:"tool,omitempty"`
	Color   string          `json:"color,omitempty"`
	State   *sessionState   `json:"state,omitempty"`
}

type sessionState struct {
	Session string  `json:"session"`
	Tool    string  `json:"tool"`
	Color   string  `json:"color"`
	Size    float64 `json:"size"`
	CanUndo bool    `json:"canUndo"`
	CanRedo bool    `json:"canRedo"`
	Source  string  `json:"source"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Browser string  `json:"browser"`
	Score   int     `json:"score"`
	FPS     int     `json:"fps"`
}
