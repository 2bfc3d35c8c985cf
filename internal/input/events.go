package input

// Source is the raw event family a session listens to.
type Source int

const (
	SourceMouse Source = iota
	SourceTouch
	SourcePointer
)

func (s Source) String() string {
	switch s {
	case SourcePointer:
		return "pointer"
	case SourceTouch:
		return "touch"
	default:
		return "mouse"
	}
}

// Phase is the stage of a raw event.
type Phase string

const (
	PhaseDown   Phase = "down"
	PhaseMove   Phase = "move"
	PhaseUp     Phase = "up"
	PhaseCancel Phase = "cancel"
	PhaseLeave  Phase = "leave"
)

// Primary button values as reported by browsers: Button names the button
// that changed, Buttons is the bitmask of held buttons.
const (
	ButtonPrimary  = 0
	ButtonsPrimary = 1
)

// PointerEvent is a pointerdown/move/up/cancel event.
type PointerEvent struct {
	Phase       Phase   `json:"phase"`
	PointerType string  `json:"pointerType,omitempty"`
	Button      int     `json:"button"`
	Buttons     int     `json:"buttons"`
	ClientX     float64 `json:"clientX"`
	ClientY     float64 `json:"clientY"`
}

// Touch is one contact point.
type Touch struct {
	ID      int     `json:"id"`
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
}

// TouchEvent is a touchstart/move/end/cancel event. Touches holds the
// contacts still on the surface, Changed the ones this event is about.
type TouchEvent struct {
	Phase   Phase   `json:"phase"`
	Touches []Touch `json:"touches"`
	Changed []Touch `json:"changed"`
}

// MouseEvent is a mousedown/move/up/leave event.
type MouseEvent struct {
	Phase   Phase   `json:"phase"`
	Button  int     `json:"button"`
	Buttons int     `json:"buttons"`
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
}

// Rect is the on-screen bounding box of the canvas in client coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
