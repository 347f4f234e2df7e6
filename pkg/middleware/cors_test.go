package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func prodCORS(origins ...string) CORSConfig {
	return CORSConfig{AllowedOrigins: origins, Environment: "production"}
}

func serveCORS(cfg CORSConfig, method, origin string, preflight bool) (*httptest.ResponseRecorder, bool) {
	reached := false
	h := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, "/cliente", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, reached
}

func TestCORS_AllowOrigin(t *testing.T) {
	tests := []struct {
		name   string
		cfg    CORSConfig
		origin string
		want   string
	}{
		{"development wildcard", CORSConfig{Environment: "development"}, "https://any.example.com", "*"},
		{"development without origin", CORSConfig{Environment: "development"}, "", "*"},
		{"listed origin", prodCORS("https://shop.example.com", "https://admin.example.com"), "https://admin.example.com", "https://admin.example.com"},
		{"unlisted origin", prodCORS("https://shop.example.com"), "https://evil.example.com", ""},
		{"no origin header", prodCORS("https://shop.example.com"), "", ""},
		{"explicit wildcard", prodCORS("*"), "https://any.example.com", "*"},
		{"trimmed config", prodCORS("  https://shop.example.com "), "https://shop.example.com", "https://shop.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, reached := serveCORS(tt.cfg, http.MethodGet, tt.origin, false)

			assert.True(t, reached)
			assert.Equal(t, tt.want, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_VaryOnlyWhenOriginSpecific(t *testing.T) {
	rec, _ := serveCORS(prodCORS("https://shop.example.com"), http.MethodGet, "https://shop.example.com", false)
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))

	rec, _ = serveCORS(DefaultCORSConfig(), http.MethodGet, "https://shop.example.com", false)
	assert.Empty(t, rec.Header().Get("Vary"))
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	rec, reached := serveCORS(DefaultCORSConfig(), http.MethodOptions, "https://shop.example.com", true)

	assert.False(t, reached)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Accept, Content-Type, X-Correlation-ID", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "X-Correlation-ID", rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_PlainOptionsReachesRouter(t *testing.T) {
	rec, reached := serveCORS(DefaultCORSConfig(), http.MethodOptions, "", false)

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS_Defaults(t *testing.T) {
	rec, _ := serveCORS(prodCORS("https://shop.example.com"), http.MethodGet, "", false)

	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Accept, Content-Type, X-Correlation-ID", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_CustomSettings(t *testing.T) {
	cfg := prodCORS("https://shop.example.com")
	cfg.AllowedMethods = []string{"GET"}
	cfg.AllowedHeaders = []string{"Content-Type"}
	cfg.MaxAge = 60
	cfg.AllowCredentials = true

	rec, _ := serveCORS(cfg, http.MethodGet, "https://shop.example.com", false)

	assert.Equal(t, "GET", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "60", rec.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 3600, cfg.MaxAge)
}
