package web

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-camrig/pkg/rig"
	"github.com/teslashibe/go-camrig/pkg/rotation"
	"github.com/teslashibe/go-camrig/pkg/selection"
)

// InputRequest is the body of an input update. Components are clamped to
// [-1, 1].
type InputRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointRequest is the body of a framing or visibility query.
type PointRequest struct {
	Point    [3]float64 `json:"point"`
	Centered *float64   `json:"centered,omitempty"`
}

// ColliderRequest is the body of a volume enter/exit.
type ColliderRequest struct {
	Collider string `json:"collider"`
}

// ToggleRequest switches a boolean setting.
type ToggleRequest struct {
	Enabled bool `json:"enabled"`
}

// handleError maps domain errors to status codes.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, rig.ErrUnknownRig),
		errors.Is(err, selection.ErrUnknownCamera),
		errors.Is(err, selection.ErrUnknownVolume):
		code = fiber.StatusNotFound
	case errors.Is(err, rotation.ErrInvalidSpeed),
		errors.Is(err, rotation.ErrInvalidTiming):
		code = fiber.StatusBadRequest
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
}

// handleHealth reports loop and client state
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"rigs":    s.rigs.Len(),
		"ticks":   s.rigs.Ticks(),
		"running": s.rigs.Running(),
		"clients": s.orientationHub.ClientCount(),
	})
}

func (s *Server) handleListRigs(c *fiber.Ctx) error {
	return c.JSON(s.rigs.Snapshots())
}

func (s *Server) handleGetRig(c *fiber.Ctx) error {
	snap, err := s.rigs.Snapshot(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(snap)
}

func (s *Server) handleInput(c *fiber.Ctx) error {
	var req InputRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	id := c.Params("id")
	if err := s.rigs.SetInput(id, req.X, req.Y); err != nil {
		return err
	}
	return s.respondSnapshot(c, id)
}

func (s *Server) handleEndInput(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.rigs.EndInput(id); err != nil {
		return err
	}
	return s.respondSnapshot(c, id)
}

func (s *Server) handleStop(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.rigs.Stop(id); err != nil {
		return err
	}
	return s.respondSnapshot(c, id)
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.rigs.Reset(id); err != nil {
		return err
	}
	return s.respondSnapshot(c, id)
}

func (s *Server) handleFrame(c *fiber.Ctx) error {
	var req PointRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	centered := 1.0
	if req.Centered != nil {
		centered = *req.Centered
	}
	res, err := s.rigs.Frame(c.Params("id"), mgl64.Vec3(req.Point), centered)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (s *Server) handleInView(c *fiber.Ctx) error {
	var req PointRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	in, err := s.rigs.InView(c.Params("id"), mgl64.Vec3(req.Point))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"in_view": in})
}

func (s *Server) handleReconfigure(c *fiber.Ctx) error {
	var cfg rotation.Config
	if err := c.BodyParser(&cfg); err != nil {
		return badRequest(err)
	}
	snap, err := s.rigs.Reconfigure(c.Params("id"), cfg)
	if err != nil {
		return err
	}
	return c.JSON(snap)
}

func (s *Server) respondSnapshot(c *fiber.Ctx, id string) error {
	snap, err := s.rigs.Snapshot(id)
	if err != nil {
		return err
	}
	return c.JSON(snap)
}

func (s *Server) handleListCameras(c *fiber.Ctx) error {
	current := ""
	if cam, ok := s.cameras.Current(); ok {
		current = cam.ID
	}
	return c.JSON(fiber.Map{
		"cameras": s.cameras.Cameras(),
		"current": current,
	})
}

func (s *Server) handleSwitchCamera(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.cameras.Switch(id); err != nil {
		return err
	}
	cam, _ := s.cameras.Get(id)
	return c.JSON(fiber.Map{"current": cam})
}

func (s *Server) handleListVolumes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"volumes":        s.volumes.States(),
		"containing":     s.volumes.Containing(),
		"auto_switch":    s.volumes.AutoSwitch(),
		"last_attempted": s.volumes.LastAttempted(),
	})
}

func (s *Server) handleAutoSwitch(c *fiber.Ctx) error {
	var req ToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	s.volumes.SetAutoSwitch(req.Enabled)
	return c.JSON(fiber.Map{"auto_switch": req.Enabled})
}

func (s *Server) handleVolumeEnter(c *fiber.Ctx) error {
	return s.volumeEvent(c, s.volumes.Enter)
}

func (s *Server) handleVolumeExit(c *fiber.Ctx) error {
	return s.volumeEvent(c, s.volumes.Exit)
}

func (s *Server) volumeEvent(c *fiber.Ctx, fn func(volume, collider string) (string, error)) error {
	var req ColliderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	if req.Collider == "" {
		return fiber.NewError(fiber.StatusBadRequest, "collider is required")
	}
	switched, err := fn(c.Params("id"), req.Collider)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"switched_to": switched,
		"containing":  s.volumes.Containing(),
	})
}

func (s *Server) handleVolumeDisable(c *fiber.Ctx) error {
	if err := s.volumes.Disable(c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"containing": s.volumes.Containing()})
}
