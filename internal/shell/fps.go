package shell

import (
	"log"
	"math"
	"time"
)

// LowFPS is the rate below which the monitor warns.
const LowFPS = 30

// FrameMonitor counts rendered frames and computes the rate at most once a
// second. It only observes; it never touches the canvas.
type FrameMonitor struct {
	frames int
	last   time.Time
	now    func() time.Time
	fps    int
}

func NewFrameMonitor() *FrameMonitor {
	m := &FrameMonitor{now: time.Now}
	m.last = m.now()
	return m
}

// Tick records a frame. It returns the measured rate and true when a
// measurement window closed with this frame.
func (m *FrameMonitor) Tick() (int, bool) {
	return m.Add(1)
}

// Add records n frames painted elsewhere, such as a browser reporting its
// animation frames in batches.
func (m *FrameMonitor) Add(n int) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	m.frames += n
	now := m.now()
	elapsed := now.Sub(m.last)
	if elapsed < time.Second {
		return 0, false
	}
	m.fps = int(math.Round(float64(m.frames) / elapsed.Seconds()))
	if m.fps < LowFPS {
		log.Printf("[SHELL] Low FPS detected: %d", m.fps)
	}
	m.frames = 0
	m.last = now
	return m.fps, true
}

// FPS is the last measured rate, 0 before the first window closes.
func (m *FrameMonitor) FPS() int { return m.fps }
