// Command camrig-keys steers one rig from the keyboard.
//
// Usage:
//
//	go run ./cmd/camrig-keys -server http://localhost:8080 -rig lobby -camera hall
//
// Without -rig the first rig reported by the server is used. -camera makes
// that camera active before steering starts. -pulse picks how the status
// line pulses while a key is held: sine or noise.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-camrig/internal/httpc"
	"github.com/teslashibe/go-camrig/pkg/hub"
	"github.com/teslashibe/go-camrig/pkg/rig"
	"github.com/teslashibe/go-camrig/pkg/web"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "camrigd base URL")
	rigID := flag.String("rig", "", "Rig to steer (default: first rig)")
	camera := flag.String("camera", "", "Camera to switch to before steering")
	pulse := flag.String("pulse", "sine", "Status pulse while moving: sine or noise")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := options{
		server: strings.TrimRight(*server, "/"),
		rigID:  *rigID,
		camera: *camera,
		pulse:  *pulse,
	}
	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "camrig-keys: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	server string
	rigID  string
	camera string
	pulse  string
}

func run(ctx context.Context, opts options) error {
	server, rigID := opts.server, opts.rigID
	pulse, err := pulseFactor(opts.pulse)
	if err != nil {
		return err
	}
	if opts.camera != "" {
		if err := switchCamera(ctx, server, opts.camera); err != nil {
			return err
		}
	}
	if rigID == "" {
		id, err := firstRig(ctx, server)
		if err != nil {
			return err
		}
		rigID = id
	}

	wsBase, err := websocketURL(server)
	if err != nil {
		return err
	}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	input, _, err := dialer.DialContext(ctx, wsBase+"/ws/rigs/"+url.PathEscape(rigID)+"/input", nil)
	if err != nil {
		return fmt.Errorf("connect input stream: %w", err)
	}
	defer input.Close()
	// Reading keeps ping handling alive
	go discard(input)

	orientation, _, err := dialer.DialContext(ctx, wsBase+"/ws/orientation", nil)
	if err != nil {
		return fmt.Errorf("connect orientation stream: %w", err)
	}
	defer orientation.Close()

	snaps := make(chan rig.Snapshot, 1)
	go readOrientation(orientation, rigID, snaps)

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	send := func(f web.InputFrame) error {
		input.SetWriteDeadline(time.Now().Add(time.Second))
		return input.WriteJSON(f)
	}
	newUI(screen, rigID, pulse, send).run(ctx, snaps)

	return send(web.InputFrame{Action: "end"})
}

func firstRig(ctx context.Context, server string) (string, error) {
	var rigs []rig.Snapshot
	if err := httpc.GetJSON(ctx, server+"/api/rigs", &rigs); err != nil {
		return "", fmt.Errorf("list rigs: %w", err)
	}
	if len(rigs) == 0 {
		return "", errors.New("server has no rigs")
	}
	return rigs[0].ID, nil
}

// switchCamera makes a camera the active one.
func switchCamera(ctx context.Context, server, id string) error {
	if err := httpc.PostJSON(ctx, server+"/api/cameras/"+url.PathEscape(id)+"/switch", nil, nil); err != nil {
		return fmt.Errorf("switch camera %s: %w", id, err)
	}
	return nil
}

// websocketURL maps an http(s) base URL to ws(s).
func websocketURL(server string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

func discard(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func readOrientation(conn *websocket.Conn, rigID string, out chan rig.Snapshot) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if s, ok := pickSnapshot(data, rigID); ok {
			// Keep only the newest
			select {
			case <-out:
			default:
			}
			out <- s
		}
	}
}

// pickSnapshot extracts rigID's snapshot from an orientation event.
func pickSnapshot(data []byte, rigID string) (rig.Snapshot, bool) {
	var ev hub.Event
	if err := json.Unmarshal(data, &ev); err != nil || ev.Type != web.EventOrientation {
		return rig.Snapshot{}, false
	}
	var snaps []rig.Snapshot
	if err := json.Unmarshal(ev.Data, &snaps); err != nil {
		return rig.Snapshot{}, false
	}
	for _, s := range snaps {
		if s.ID == rigID {
			return s, true
		}
	}
	return rig.Snapshot{}, false
}
