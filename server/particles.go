package server

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/pthm-cable/orrery/config"
	"github.com/pthm-cable/orrery/particles"
)

const maxParticles = 200000

// generator builds the fields of one named generator; count > 0 overrides
// the configured particle count.
type generator func(c *config.Config, count int) []particles.Field

var generators = map[string]generator{
	"galaxy": func(c *config.Config, n int) []particles.Field {
		cc := *c
		if n > 0 {
			cc.Galaxy.Count, cc.DiskHalo.Count = n, n
		}
		return cc.GalaxyFields()
	},
	"disk_halo": func(c *config.Config, n int) []particles.Field {
		p := c.DiskHaloParams()
		if n > 0 {
			p.Count = n
		}
		return []particles.Field{particles.GenerateDiskHalo(p)}
	},
	"star_field": func(c *config.Config, n int) []particles.Field {
		p := c.StarFieldParams()
		if n > 0 && len(p.Layers) > 0 {
			for i := range p.Layers {
				p.Layers[i].Count = n / len(p.Layers)
			}
			p.Layers[0].Count += n % len(p.Layers)
		}
		return []particles.Field{particles.GenerateStarField(p)}
	},
	"nebula": func(c *config.Config, n int) []particles.Field {
		p := c.NebulaParams()
		if n > 0 {
			p.Count = n
		}
		return []particles.Field{particles.GenerateNebula(p)}
	},
	"dust": func(c *config.Config, n int) []particles.Field {
		p := c.DustParams()
		if n > 0 {
			p.Count = n
		}
		return []particles.Field{particles.GenerateDust(p)}
	},
	"belt": func(c *config.Config, n int) []particles.Field {
		p := c.BeltParams()
		if n > 0 {
			p.Count = n
		}
		return []particles.Field{particles.GenerateAsteroidBelt(p)}
	},
	"wind": func(c *config.Config, n int) []particles.Field {
		p := c.WindParams()
		if n > 0 {
			p.Count = n
		}
		return []particles.Field{particles.NewSolarWind(p)}
	},
	"debris": func(c *config.Config, n int) []particles.Field {
		p := c.DebrisParams()
		if n > 0 {
			p.Count = n
		}
		return []particles.Field{particles.NewDebrisRing(p)}
	},
}

// Generators returns the generator names served under /particles/.
func Generators() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParticlesResponse is the body of GET /particles/{generator}.
type ParticlesResponse struct {
	Generator string              `json:"generator"`
	Count     int                 `json:"count"`
	Buffers   []*particles.Buffer `json:"buffers"`
}

// handleParticles serves GET /particles/{generator}?count=N as JSON
// attribute buffers. Layered galaxies return one buffer per layer.
func (s *Server) handleParticles(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("generator")
	gen, ok := generators[name]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("unknown generator %q", name))
		return
	}

	count := 0
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxParticles {
			s.fail(w, r, fmt.Errorf("count %q: want 1-%d: %w", v, maxParticles, errBadRequest))
			return
		}
		count = n
	}

	resp := ParticlesResponse{Generator: name}
	sink := particles.SinkFunc(func(_ string, b *particles.Buffer) error {
		resp.Buffers = append(resp.Buffers, b)
		resp.Count += b.Len()
		return nil
	})
	for i, f := range gen(s.cfg, count) {
		if err := particles.Upload(sink, fmt.Sprintf("%s/%d", name, i), f); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	s.logger.Debug("particles generated", "generator", name, "count", resp.Count, "buffers", len(resp.Buffers))
	writeJSON(w, http.StatusOK, resp)
}
