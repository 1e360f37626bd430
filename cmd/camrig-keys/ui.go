package main

import (
	"context"
	"fmt"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/teslashibe/go-camrig/pkg/lerp"
	"github.com/teslashibe/go-camrig/pkg/rig"
	"github.com/teslashibe/go-camrig/pkg/web"
)

// Terminals report key presses and repeats but never releases, so input is
// ended once no direction key has been seen for releaseAfter.
const releaseAfter = 180 * time.Millisecond

const frameInterval = 33 * time.Millisecond

var (
	styleTitle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleText  = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleHelp  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleError = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

type ui struct {
	screen tcell.Screen
	rigID  string
	send   func(web.InputFrame) error
	pulse  lerp.Driver
	start  time.Time

	input    [2]float64
	holding  bool
	lastKey  time.Time
	snap     rig.Snapshot
	haveSnap bool
	status   string
	failed   bool
}

// pulseFactor returns the status pulse named on the command line.
func pulseFactor(name string) (lerp.Factor, error) {
	switch name {
	case "", "sine":
		return lerp.Smooth{Factor: lerp.Sine{Speed: 8}}, nil
	case "noise":
		return lerp.NewNoise(2.5, nil), nil
	default:
		return nil, fmt.Errorf("unknown pulse %q (want sine or noise)", name)
	}
}

func newUI(screen tcell.Screen, rigID string, pulse lerp.Factor, send func(web.InputFrame) error) *ui {
	return &ui{
		screen: screen,
		rigID:  rigID,
		send:   send,
		pulse: lerp.Driver{
			Start:  colorful.Color{R: 0.25, G: 0.25, B: 0.3},
			End:    colorful.Color{R: 0.2, G: 0.9, B: 0.4},
			Factor: pulse,
		},
		start:  time.Now(),
		status: "waiting for orientation",
	}
}

// keyInput maps arrow keys and WASD to a stick deflection.
func keyInput(ev *tcell.EventKey) (x, y float64, ok bool) {
	switch ev.Key() {
	case tcell.KeyLeft:
		return -1, 0, true
	case tcell.KeyRight:
		return 1, 0, true
	case tcell.KeyUp:
		return 0, 1, true
	case tcell.KeyDown:
		return 0, -1, true
	case tcell.KeyRune:
		switch unicode.ToLower(ev.Rune()) {
		case 'a':
			return -1, 0, true
		case 'd':
			return 1, 0, true
		case 'w':
			return 0, 1, true
		case 's':
			return 0, -1, true
		}
	}
	return 0, 0, false
}

// handleKey applies a key press. It returns false when the user quits.
func (u *ui) handleKey(ev *tcell.EventKey, now time.Time) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'r':
			u.holding = false
			u.input = [2]float64{}
			u.transmit(web.InputFrame{Action: "reset"}, "reset")
			return true
		case ' ':
			u.holding = false
			u.input = [2]float64{}
			u.transmit(web.InputFrame{Action: "stop"}, "stopped")
			return true
		}
	}

	x, y, ok := keyInput(ev)
	if !ok {
		return true
	}
	u.input = [2]float64{x, y}
	u.holding = true
	u.lastKey = now
	u.transmit(web.InputFrame{X: x, Y: y}, "moving")
	return true
}

// update ends input once keys have gone quiet.
func (u *ui) update(now time.Time) {
	if u.holding && now.Sub(u.lastKey) > releaseAfter {
		u.holding = false
		u.input = [2]float64{}
		u.transmit(web.InputFrame{Action: "end"}, "released")
	}
}

func (u *ui) transmit(f web.InputFrame, status string) {
	if err := u.send(f); err != nil {
		u.status = err.Error()
		u.failed = true
		return
	}
	u.status = status
	u.failed = false
}

func (u *ui) setSnapshot(s rig.Snapshot) {
	u.snap = s
	u.haveSnap = true
}

// statusColour pulses while input is held.
func (u *ui) statusColour(now time.Time) tcell.Color {
	c := u.pulse.Start
	if u.holding {
		c = u.pulse.At(now.Sub(u.start).Seconds())
	}
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func (u *ui) draw(now time.Time) {
	u.screen.Clear()
	_, h := u.screen.Size()

	u.text(0, 0, styleTitle, fmt.Sprintf("camrig-keys  rig: %s", u.rigID))
	if u.haveSnap {
		s := u.snap
		u.text(0, 2, styleText, fmt.Sprintf("yaw    %8.2f   limits [%g, %g]", s.Yaw, s.Limits.Yaw.Min, s.Limits.Yaw.Max))
		u.text(0, 3, styleText, fmt.Sprintf("pitch  %8.2f   limits [%g, %g]", s.Pitch, s.Limits.Pitch.Min, s.Limits.Pitch.Max))
		u.text(0, 4, styleText, fmt.Sprintf("speed  %8.2f %8.2f", s.Velocity[0], s.Velocity[1]))
		u.text(0, 5, styleText, fmt.Sprintf("tick   %d", s.Tick))
	}
	u.text(0, 7, styleText, fmt.Sprintf("input  %+.0f %+.0f", u.input[0], u.input[1]))

	statusStyle := tcell.StyleDefault.Foreground(u.statusColour(now))
	if u.failed {
		statusStyle = styleError
	}
	u.text(0, h-2, statusStyle, u.status)
	u.text(0, h-1, styleHelp, "arrows/wasd move  space stop  r reset  q quit")
	u.screen.Show()
}

func (u *ui) text(x, y int, style tcell.Style, s string) {
	for _, r := range s {
		u.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// run drives the screen until ctx is done or the user quits.
func (u *ui) run(ctx context.Context, snaps <-chan rig.Snapshot) {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := u.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !u.handleKey(ev, time.Now()) {
					return
				}
			case *tcell.EventResize:
				u.screen.Sync()
			}
		case s := <-snaps:
			u.setSnapshot(s)
		case <-ticker.C:
			now := time.Now()
			u.update(now)
			u.draw(now)
		}
	}
}
