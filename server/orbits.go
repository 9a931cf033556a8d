package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/orrery/kinematics"
)

const (
	writeWait   = 5 * time.Second
	defaultTick = 20 // Hz
)

// OrbitFrame is one message of the orbit stream.
type OrbitFrame struct {
	Tick     int                        `json:"tick"`
	Elapsed  float64                    `json:"elapsed"` // Simulated seconds
	Bodies   []kinematics.BodyState     `json:"bodies"`
	Lagrange map[string]LagrangeMessage `json:"lagrange,omitempty"`
}

// LagrangeMessage carries one body's L4/L5 points as xyz triples.
type LagrangeMessage struct {
	L4 [3]float64 `json:"l4"`
	L5 [3]float64 `json:"l5"`
}

// OrbitControl is a client message adjusting its stream.
type OrbitControl struct {
	TimeScale *float64 `json:"timeScale,omitempty"` // Simulated seconds per wall second
	Paused    *bool    `json:"paused,omitempty"`
}

// handleOrbits streams body positions over a websocket at the configured
// tick rate. ?lagrange=name,name adds L4/L5 for those bodies. Wall-clock
// gaps longer than max_delta are clamped.
func (s *Server) handleOrbits(w http.ResponseWriter, r *http.Request) {
	sys, err := s.cfg.BuildSystem()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var lagrange []string
	if v := r.URL.Query().Get("lagrange"); v != "" {
		lagrange = splitList(v)
		for _, name := range lagrange {
			if _, ok := sys.Lookup(name); !ok {
				s.fail(w, r, fmt.Errorf("lagrange body %q: %w", name, errBadRequest))
				return
			}
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	logger := s.logger.With("stream", "orbits", "remote_addr", r.RemoteAddr)
	logger.Info("orbit stream opened", "bodies", sys.Len())

	controls := make(chan OrbitControl, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg OrbitControl
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			select {
			case controls <- msg:
			default:
			}
		}
	}()

	hz := s.cfg.Server.TickHz
	if hz <= 0 {
		hz = defaultTick
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / hz))
	defer ticker.Stop()

	scale, paused := 1.0, false
	last := time.Now()
	for tick := 0; ; tick++ {
		frame := OrbitFrame{Tick: tick, Elapsed: sys.Elapsed(), Bodies: sys.Snapshot()}
		if len(lagrange) > 0 {
			frame.Lagrange = lagrangeFrames(sys, lagrange)
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(frame); err != nil {
			logger.Debug("orbit stream write failed", "error", err)
			return
		}

		select {
		case <-done:
			logger.Info("orbit stream closed", "ticks", tick+1)
			return
		case <-r.Context().Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case msg := <-controls:
			if msg.TimeScale != nil && *msg.TimeScale >= 0 {
				scale = *msg.TimeScale
			}
			if msg.Paused != nil {
				paused = *msg.Paused
			}
		case now := <-ticker.C:
			dt := s.clampDelta(now.Sub(last).Seconds())
			last = now
			if !paused {
				sys.Update(dt * scale)
			}
		}
	}
}

// clampDelta limits a wall-clock delta so a stalled connection does not
// make bodies jump.
func (s *Server) clampDelta(dt float64) float64 {
	if limit := s.cfg.Server.MaxDelta; limit > 0 && dt > limit {
		return limit
	}
	return dt
}

func lagrangeFrames(sys *kinematics.System, names []string) map[string]LagrangeMessage {
	out := make(map[string]LagrangeMessage, len(names))
	for _, name := range names {
		e, ok := sys.Lookup(name)
		if !ok {
			continue
		}
		lp, err := sys.Lagrange(e)
		if err != nil {
			continue
		}
		out[name] = LagrangeMessage{
			L4: [3]float64{lp.L4.X, lp.L4.Y, lp.L4.Z},
			L5: [3]float64{lp.L5.X, lp.L5.Y, lp.L5.Z},
		}
	}
	return out
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
