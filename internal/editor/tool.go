package editor

import (
	"fmt"
	"strings"
)

// Tool is the active drawing tool.
type Tool int

const (
	ToolBrush Tool = iota
	ToolEraser
	ToolLine
	ToolRectangle
	ToolCircle
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{ToolBrush, ToolEraser, ToolLine, ToolRectangle, ToolCircle}

func (t Tool) String() string {
	switch t {
	case ToolBrush:
		return "brush"
	case ToolEraser:
		return "eraser"
	case ToolLine:
		return "line"
	case ToolRectangle:
		return "rectangle"
	case ToolCircle:
		return "circle"
	default:
		return fmt.Sprintf("tool(%d)", int(t))
	}
}

// Label is the capitalized name shown to the user.
func (t Tool) Label() string {
	s := t.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// IsShape reports whether the tool draws a previewed shape rather than
// painting freehand.
func (t Tool) IsShape() bool {
	switch t {
	case ToolLine, ToolRectangle, ToolCircle:
		return true
	default:
		return false
	}
}

func (t Tool) valid() bool {
	return t >= ToolBrush && t <= ToolCircle
}

// ParseTool maps a tool name to a Tool.
func ParseTool(name string) (Tool, error) {
	for _, t := range Tools {
		if strings.EqualFold(name, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tool %q", name)
}
