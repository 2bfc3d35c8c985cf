package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"CanvasEditor/internal/caps"
	"CanvasEditor/internal/editor"
	"CanvasEditor/internal/export"
	"CanvasEditor/internal/input"
	"CanvasEditor/internal/shell"
	"CanvasEditor/internal/store"
)

const (
	helloTimeout   = 5 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 16 << 20
	maxCanvasSide  = 4096

	// maxFramesReport drops frame counts no display could paint in a report.
	maxFramesReport = 1000
)

// Session is one browser tab drawing on its own canvas. The read loop and the
// timers take mu before touching the editor, so the editor sees one mutator.
type Session struct {
	id     string
	conn   *websocket.Conn
	server *Server

	writeMu sync.Mutex

	mu       sync.Mutex
	report   caps.Report
	editor   *editor.Editor
	input    *input.Normalizer
	shell    *shell.Shell
	dirty    bool
	closed   bool
	confirms map[int]func(bool)
	nextID   int
}

func newSession(srv *Server, conn *websocket.Conn) *Session {
	return &Session{
		id:       uuid.NewString(),
		conn:     conn,
		server:   srv,
		confirms: make(map[int]func(bool)),
	}
}

func (s *Session) ID() string { return s.id }

// run serves the connection until the browser goes away or ctx ends.
func (s *Session) run(ctx context.Context) error {
	s.conn.SetReadLimit(maxMessageSize)

	hello, err := s.readHello()
	if err != nil {
		s.ShowFallback(shell.FallbackMessage)
		return err
	}
	err = s.start(hello)
	defer s.stop()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.frameLoop(ctx)
	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return fmt.Errorf("read: %w", err)
			}
			return nil
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WEB] Session %s sent bad message: %v", s.id, err)
			continue
		}
		s.dispatch(func() { s.handle(msg) })
	}
}

func (s *Session) readHello() (clientMessage, error) {
	var msg clientMessage
	s.conn.SetReadDeadline(time.Now().Add(helloTimeout))
	defer s.conn.SetReadDeadline(time.Time{})
	if err := s.conn.ReadJSON(&msg); err != nil {
		return msg, fmt.Errorf("read hello: %w", err)
	}
	if msg.Type != msgHello {
		return msg, fmt.Errorf("expected hello, got %q", msg.Type)
	}
	return msg, nil
}

func (s *Session) start(hello clientMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.server.cfg
	s.report = caps.Detect(hello.Probes, hello.UserAgent)
	opts := cfg.EditorOptions()
	if w, h := clampSize(hello.Width, hello.Height); w > 0 {
		opts.Width, opts.Height = w, h
	}
	s.editor = editor.New(opts)
	s.input = input.New(s.editor, s.report, input.Options{
		ResizeDelay: cfg.ResizeDelay(),
		Dispatch:    s.dispatch,
	})
	if hello.Box != nil {
		s.input.SetBounds(*hello.Box)
	}
	s.shell = shell.New(s.editor, s, s.report, shell.Options{
		Dispatch: s.dispatch,
		Events:   store.NewEventLog(s.server.kv, s.id),
		SeenTips: store.NewFlag(s.server.kv, store.SeenTipsKey),
	})
	s.dirty = true

	b := s.report.Browser()
	log.Printf("[WEB] Session %s: %s %s, support %d%%", s.id, b.Name, b.Version, s.report.Score())
	if err := s.shell.Start(); err != nil {
		return fmt.Errorf("start shell: %w", err)
	}
	return nil
}

func (s *Session) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.input.Close()
	s.shell.Close()
}

// dispatch runs f as the session's single mutator.
func (s *Session) dispatch(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	f()
	s.dirty = true
}

func (s *Session) handle(msg clientMessage) {
	switch msg.Type {
	case msgPointer:
		if msg.Pointer != nil {
			s.input.HandlePointer(*msg.Pointer)
		}
	case msgTouch:
		if msg.Touch != nil {
			s.input.HandleTouch(*msg.Touch)
		}
	case msgMouse:
		if msg.Mouse != nil {
			s.input.HandleMouse(*msg.Mouse)
		}
	case msgKey:
		if msg.Key != nil {
			s.shell.HandleKey(*msg.Key)
		}
	case msgCommand:
		s.command(msg)
	case msgResize:
		if msg.Box != nil {
			s.input.SetBounds(*msg.Box)
		}
		if w, h := clampSize(msg.Width, msg.Height); w > 0 {
			s.input.RequestResize(w, h)
		}
	case msgStatus:
		s.shell.SetOnline(msg.Online)
	case msgConfirm:
		if answer, ok := s.confirms[msg.ID]; ok {
			delete(s.confirms, msg.ID)
			answer(msg.OK)
		}
	case msgLoad:
		s.load(msg.Data)
	case msgFrames:
		if msg.Count > 0 && msg.Count <= maxFramesReport {
			s.shell.Frames(msg.Count)
		}
	case msgHello:
	default:
		log.Printf("[WEB] Session %s: unknown message type %q", s.id, msg.Type)
	}
}

func (s *Session) command(msg clientMessage) {
	switch msg.Name {
	case "tool":
		t, err := editor.ParseTool(msg.Value)
		if err != nil {
			log.Printf("[WEB] Session %s: %v", s.id, err)
			return
		}
		s.shell.SelectTool(t)
	case "color":
		s.shell.SelectColor(msg.Value)
	case "size":
		s.shell.SetStrokeWidth(msg.Number)
	case "undo":
		s.shell.Undo()
	case "redo":
		s.shell.Redo()
	case "clear":
		s.shell.RequestClear()
	case "save":
		s.shell.Save()
	case "save_pdf":
		s.shell.SavePDF()
	case "track":
		if msg.Value != "" {
			s.shell.Track(msg.Value)
		}
	default:
		log.Printf("[WEB] Session %s: unknown command %q", s.id, msg.Name)
	}
}

func (s *Session) load(data []byte) {
	img, err := export.DecodeImage(data)
	if err != nil {
		log.Printf("[WEB] Session %s: load image: %v", s.id, err)
		s.shell.Toast("Could not open that file", shell.ToastWarning)
		return
	}
	s.editor.LoadImage(img)
	s.shell.Toast("Image loaded", shell.ToastSuccess)
	s.shell.Track("image_loaded")
}

func clampSize(w, h int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	return min(w, maxCanvasSide), min(h, maxCanvasSide)
}

// frameLoop pushes the canvas whenever it changed since the last tick.
func (s *Session) frameLoop(ctx context.Context) {
	ticker := time.NewTicker(s.server.cfg.FrameInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame, state, err := s.render()
		if err != nil {
			log.Printf("[WEB] Session %s: render: %v", s.id, err)
			continue
		}
		if frame == nil {
			continue
		}
		if err := s.send(serverMessage{Type: "state", State: state}); err != nil {
			return
		}
		if err := s.write(websocket.BinaryMessage, frame); err != nil {
			return
		}
	}
}

func (s *Session) render() ([]byte, *sessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty || s.closed {
		return nil, nil, nil
	}
	var buf bytes.Buffer
	if err := s.editor.ExportPNG(&buf); err != nil {
		return nil, nil, err
	}
	s.dirty = false
	return buf.Bytes(), s.state(), nil
}

func (s *Session) state() *sessionState {
	w, h := s.editor.Size()
	b := s.report.Browser()
	return &sessionState{
		Session: s.id,
		Tool:    s.editor.Tool().String(),
		Color:   s.editor.Color(),
		Size:    s.editor.StrokeWidth(),
		CanUndo: s.editor.CanUndo(),
		CanRedo: s.editor.CanRedo(),
		Source:  s.input.Source().String(),
		Width:   w,
		Height:  h,
		Browser: b.Name + " " + b.Version,
		Score:   s.report.Score(),
		FPS:     s.shell.Monitor().FPS(),
	}
}

func (s *Session) write(kind int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(kind, data)
}

func (s *Session) send(msg serverMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	return s.write(websocket.TextMessage, data)
}

func (s *Session) notify(msg serverMessage) {
	if err := s.send(msg); err != nil {
		log.Printf("[WEB] Session %s: send %s: %v", s.id, msg.Type, err)
	}
}

// The methods below make Session the shell's Surface.

func (s *Session) ShowToast(message string, kind shell.ToastKind) {
	s.notify(serverMessage{Type: "toast", Message: message, Kind: kind})
}

func (s *Session) HideToast() {
	s.notify(serverMessage{Type: "hide_toast"})
}

func (s *Session) Confirm(message string, answer func(ok bool)) {
	s.nextID++
	s.confirms[s.nextID] = answer
	s.notify(serverMessage{Type: "confirm", ID: s.nextID, Message: message})
}

func (s *Session) Download(name string, data []byte, done func(error)) {
	done(s.send(serverMessage{Type: "download", Name: name, Data: data}))
}

func (s *Session) HighlightTool(t editor.Tool) {
	s.notify(serverMessage{Type: "highlight", Tool: t.String()})
}

func (s *Session) HighlightColor(value string) {
	s.notify(serverMessage{Type: "highlight", Color: value})
}

func (s *Session) ShowFallback(message string) {
	s.notify(serverMessage{Type: "fallback", Message: message})
}
