package server

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/pthm-cable/orrery/raster"
)

// handleTexture serves GET /textures/{kind}/{identity}?res=0.25 as PNG.
// Identities naming a configured body use that body's palette. Unknown kinds
// fall back to the generic base layer. Only configured resolutions are
// accepted, so the key space per identity stays small.
func (s *Server) handleTexture(w http.ResponseWriter, r *http.Request) {
	kindName := r.PathValue("kind")
	identity := r.PathValue("identity")

	res := s.cfg.Texture.FinalResolution
	if v := r.URL.Query().Get("res"); v != "" {
		allowed := s.cfg.TextureResolutions()
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || !slices.Contains(allowed, f) {
			s.fail(w, r, fmt.Errorf("res %q: want one of %v: %w", v, allowed, errBadRequest))
			return
		}
		res = f
	}

	kind, ok := raster.ParseKind(kindName)
	if !ok {
		s.logger.Warn("unsupported texture kind, using generic", "kind", kindName, "identity", identity)
	}
	req := raster.Request{Kind: kind, Identity: identity, Resolution: res}
	if b, ok := s.cfg.Body(identity); ok {
		req.Palette = s.cfg.Palette(b.Palette)
	}

	if s.cache == nil {
		s.fail(w, r, fmt.Errorf("texture %s/%s: %w", kindName, identity, raster.ErrBackendUnavailable))
		return
	}

	sink := raster.SinkFunc(func(rs *raster.Raster) error {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Header().Set("X-Texture-Wrap", rs.WrapS.String()+","+rs.WrapT.String())
		w.Header().Set("X-Texture-Size", fmt.Sprintf("%dx%d", rs.Width, rs.Height))
		return rs.EncodePNG(w)
	})
	if _, err := s.cache.Get(sink, req); err != nil {
		// Headers may already be out; log only.
		s.logger.Error("texture upload failed", "kind", kindName, "identity", identity, "error", err)
	}
}
