package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRouter(cfg CORSConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(CORS(cfg))
	r.GET("/api/v1/benchmarks", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORS_Origins(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.example.com", "*.partner.io"}
	cfg.AllowWildcard = true
	r := corsRouter(cfg)

	tests := []struct {
		name      string
		origin    string
		wantAllow string
	}{
		{"no origin", "", ""},
		{"exact", "https://app.example.com", "https://app.example.com"},
		{"case insensitive", "https://APP.example.com", "https://APP.example.com"},
		{"subdomain pattern", "https://eu.partner.io", "https://eu.partner.io"},
		{"not listed", "https://evil.test", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := map[string]string{}
			if tt.origin != "" {
				h["Origin"] = tt.origin
			}
			w := serve(r, http.MethodGet, "/api/v1/benchmarks", h)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantAllow, w.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantAllow != "" {
				assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), HeaderRequestID)
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.example.com"}
	r := corsRouter(cfg)

	w := serve(r, http.MethodOptions, "/api/v1/benchmarks", map[string]string{
		"Origin":                        "https://app.example.com",
		"Access-Control-Request-Method": http.MethodPost,
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))

	w = serve(r, http.MethodOptions, "/api/v1/benchmarks", map[string]string{
		"Origin":                        "https://evil.test",
		"Access-Control-Request-Method": http.MethodPost,
	})
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_AllowAll(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"*"}
	w := serve(corsRouter(cfg), http.MethodGet, "/api/v1/benchmarks", map[string]string{"Origin": "https://any.test"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

//Personal.AI order the ending
