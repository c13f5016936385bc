package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-catalog-api/pkg/config"
)

const (
	allowHeaders = "Content-Type, X-Requested-With, X-Request-ID"
	allowMethods = "GET, POST, PUT, OPTIONS"
)

// New returns a CORS middleware honoring the configured origins; an empty list allows any origin.
func New(cfg config.CORSConfig) gin.HandlerFunc {
	origins := NewOriginSet(cfg.AllowedOrigins)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case origin != "" && origins.Allows(origin):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		case origin == "" && origins.Empty():
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Vary", "Origin")
		c.Writer.Header().Set("Access-Control-Allow-Headers", allowHeaders)
		c.Writer.Header().Set("Access-Control-Allow-Methods", allowMethods)
		c.Writer.Header().Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// OriginSet is a normalised set of allowed origins. It is shared with the
// websocket upgrader so browser handshakes follow the same policy.
type OriginSet map[string]struct{}

// NewOriginSet normalises trailing slashes away.
func NewOriginSet(allowed []string) OriginSet {
	set := make(OriginSet, len(allowed))
	for _, origin := range allowed {
		set[strings.TrimRight(origin, "/")] = struct{}{}
	}
	return set
}

// Empty reports whether every origin is allowed.
func (s OriginSet) Empty() bool {
	return len(s) == 0
}

// Allows reports whether the origin may call the API.
func (s OriginSet) Allows(origin string) bool {
	if s.Empty() {
		return true
	}
	_, ok := s[strings.TrimRight(origin, "/")]
	return ok
}
