package shell

import (
	"strings"

	"CanvasEditor/internal/editor"
)

// Key is one keydown as reported by a front-end.
type Key struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Meta  bool   `json:"meta"`
	Shift bool   `json:"shift"`
	// Target is the tag name of the focused element, e.g. "INPUT".
	Target string `json:"target"`
}

func (k Key) command() bool { return k.Ctrl || k.Meta }

func (k Key) typing() bool {
	switch strings.ToUpper(k.Target) {
	case "INPUT", "TEXTAREA":
		return true
	}
	return false
}

var toolKeys = map[string]editor.Tool{
	"b": editor.ToolBrush,
	"e": editor.ToolEraser,
	"l": editor.ToolLine,
	"r": editor.ToolRectangle,
	"c": editor.ToolCircle,
}

// HandleKey runs the shortcut bound to k and reports whether there was one,
// in which case the front-end should suppress the default action.
func (s *Shell) HandleKey(k Key) bool {
	if k.typing() {
		return false
	}
	name := strings.ToLower(k.Key)

	if k.command() {
		switch {
		case name == "z" && k.Shift, name == "y":
			s.Redo()
		case name == "z":
			s.Undo()
		case name == "s":
			s.Save()
		default:
			return false
		}
		return true
	}

	if t, ok := toolKeys[name]; ok {
		s.SelectTool(t)
		return true
	}
	switch name {
	case "delete", "backspace":
		s.RequestClear()
		return true
	}
	return false
}
