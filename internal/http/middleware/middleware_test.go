package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"notify_relay/internal/http/dto"
	"notify_relay/internal/http/resp"
	"notify_relay/internal/metrics"
)

func TestMiddlewareChain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	m := metrics.New()

	router := gin.New()
	router.Use(ZapLogger(zap.New(core)), Metrics(m), ZapRecovery(zap.New(core)))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(*gin.Context) { panic("boom") })
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := map[string]int{
		"/health":   http.StatusOK,
		"/boom":     http.StatusInternalServerError,
		"/missing":  http.StatusNotFound,
		"/items/42": http.StatusNoContent,
	}
	for path, want := range codes {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, want, rec.Code, path)

		if path == "/boom" {
			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, resp.CodeInternalError, body.Code)
		}
	}

	require.Equal(t, 1, logs.FilterMessage("panic recovered").FilterField(zap.String("route", "/boom")).Len())

	completed := logs.FilterMessage("request completed")
	health := completed.FilterField(zap.String("route", "/health")).All()
	require.Len(t, health, 1)
	require.Equal(t, zapcore.DebugLevel, health[0].Level)

	items := completed.FilterField(zap.String("route", "/items/:id")).All()
	require.Len(t, items, 1)
	require.Equal(t, zapcore.InfoLevel, items[0].Level)
	require.Equal(t, "/items/42", items[0].ContextMap()["path"])

	boom := completed.FilterField(zap.String("route", "/boom")).All()
	require.Len(t, boom, 1)
	require.Equal(t, zapcore.ErrorLevel, boom[0].Level)

	missing := completed.FilterField(zap.String("route", unmatchedRoute)).All()
	require.Len(t, missing, 1)
	require.Equal(t, zapcore.WarnLevel, missing[0].Level)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	require.Contains(t, body, `notify_relay_http_requests_total{method="GET",route="/health",status="200"} 1`)
	require.Contains(t, body, `notify_relay_http_requests_total{method="GET",route="/boom",status="500"} 1`)
	require.Contains(t, body, `notify_relay_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	require.Contains(t, body, `notify_relay_http_requests_total{method="GET",route="/items/:id",status="204"} 1`)
}
