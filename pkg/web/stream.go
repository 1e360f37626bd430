package web

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-camrig/pkg/hub"
	"github.com/teslashibe/go-camrig/pkg/rig"
	"github.com/teslashibe/go-camrig/pkg/selection"
)

// Event types sent on /ws/orientation.
const (
	EventOrientation = "orientation"
	EventCamera      = "camera"
)

// InputFrame is a message on /ws/rigs/:id/input. Without an action it sets
// the stick deflection; actions are "end", "stop" and "reset".
type InputFrame struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Action string  `json:"action,omitempty"`
}

// CameraEvent announces a camera being switched on or off.
type CameraEvent struct {
	Camera selection.Camera `json:"camera"`
	Active bool             `json:"active"`
}

// OrientationPublisher broadcasts rig snapshots on a hub, at most once per
// interval.
type OrientationPublisher struct {
	hub      *hub.Hub
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewOrientationPublisher creates a publisher. A zero interval publishes
// every step.
func NewOrientationPublisher(h *hub.Hub, interval time.Duration) *OrientationPublisher {
	return &OrientationPublisher{hub: h, interval: interval, now: time.Now}
}

// Publish implements rig.Publisher.
func (p *OrientationPublisher) Publish(snaps []rig.Snapshot) {
	now := p.now()
	p.mu.Lock()
	if p.interval > 0 && !p.last.IsZero() && now.Sub(p.last) < p.interval {
		p.mu.Unlock()
		return
	}
	p.last = now
	p.mu.Unlock()

	if p.hub.ClientCount() == 0 {
		return
	}
	p.hub.BroadcastEvent(EventOrientation, snaps)
}

// CameraActivator returns a selection.Activator that reports switches on h.
func CameraActivator(h *hub.Hub, logger *slog.Logger) selection.Activator {
	return func(cam selection.Camera, active bool) {
		if err := h.BroadcastEvent(EventCamera, CameraEvent{Camera: cam, Active: active}); err != nil {
			logger.Warn("camera event dropped", "camera", cam.ID, "error", err)
		}
	}
}

// handleOrientationWS streams snapshots and camera events.
func (s *Server) handleOrientationWS(c *websocket.Conn) {
	client, err := hub.NewClient(s.orientationHub, c)
	if err != nil {
		s.logger.Warn("orientation stream rejected", "error", err)
		c.Close()
		return
	}

	// Send current state first
	msg, err := hub.NewEvent(EventOrientation, s.rigs.Snapshots())
	if err != nil {
		s.logger.Error("encode initial orientation", "error", err)
	} else if err := c.WriteMessage(websocket.TextMessage, msg.Data); err != nil {
		s.logger.Debug("initial orientation write failed", "error", err)
	}

	client.Run()
}

// handleInputWS drives one rig from a stream of input frames. The stream
// holds the rig's input for as long as it is open.
func (s *Server) handleInputWS(c *websocket.Conn) {
	id := c.Params("id")

	release, err := s.rigs.Hold(id)
	if err != nil {
		c.WriteJSON(map[string]string{"error": err.Error()})
		c.Close()
		return
	}
	defer release()

	client, err := hub.NewClient(s.inputHub, c)
	if err != nil {
		c.Close()
		return
	}
	client.OnMessage = func(data []byte) {
		if err := s.applyInput(id, data); err != nil {
			s.logger.Debug("input frame rejected", "rig", id, "error", err)
		}
	}

	s.logger.Info("input stream opened", "rig", id)
	client.Run()
	s.logger.Info("input stream closed", "rig", id)
}

func (s *Server) applyInput(id string, data []byte) error {
	var f InputFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	switch f.Action {
	case "end":
		return s.rigs.EndInput(id)
	case "stop":
		return s.rigs.Stop(id)
	case "reset":
		return s.rigs.Reset(id)
	default:
		return s.rigs.SetInput(id, f.X, f.Y)
	}
}
