package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(origins))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func corsGet(r *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	t.Run("allows a configured origin", func(t *testing.T) {
		r := corsRouter([]string{"https://desiprompts.example"})
		w := corsGet(r, "https://desiprompts.example")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://desiprompts.example", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("rejects other origins", func(t *testing.T) {
		r := corsRouter([]string{"https://desiprompts.example"})
		w := corsGet(r, "https://evil.example")

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("empty list allows any origin", func(t *testing.T) {
		r := corsRouter(nil)
		w := corsGet(r, "https://anywhere.example")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("answers preflight for a configured origin", func(t *testing.T) {
		r := corsRouter([]string{"https://desiprompts.example"})

		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://desiprompts.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})
}
