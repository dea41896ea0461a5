package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ETagMiddleware tags successful GET responses and answers 304 Not Modified
// when the client already holds a matching representation.
//
// Stored maps are immutable, so /v1/maps/:id and its sub-resources get a
// strong tag derived from the map id and representation. Everything else
// gets a weak tag hashed from the body.
func ETagMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}

		etag, ok := mapETag(c.Path())
		if !ok {
			body := c.Response().Body()
			if len(body) == 0 {
				return nil
			}
			h := sha256.Sum256(body)
			etag = `W/"` + hex.EncodeToString(h[:8]) + `"`
		}
		c.Set(fiber.HeaderETag, etag)

		if etagMatches(c.Get(fiber.HeaderIfNoneMatch), etag) {
			c.Status(fiber.StatusNotModified)
			c.Response().ResetBody()
		}
		return nil
	}
}

// mapETag returns the strong tag for a stored map path such as
// /v1/maps/<id>, /v1/maps/<id>/html or /v1/maps/<id>/geojson.
func mapETag(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/v1/maps/")
	if !ok || rest == "" {
		return "", false
	}
	id, variant, _ := strings.Cut(strings.TrimSuffix(rest, "/"), "/")
	if id == "" || id == "async" || strings.Contains(variant, "/") {
		return "", false
	}
	if variant == "" {
		variant = "json"
	}
	return `"` + id + "-" + variant + `"`, true
}

// etagMatches applies the weak comparison If-None-Match requires: a list of
// tags separated by commas, or "*" for any current representation.
func etagMatches(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == want {
			return true
		}
	}
	return false
}
