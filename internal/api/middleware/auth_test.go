package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func newEngine(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r *gin.Engine, header, value string) int {
	return doFrom(r, "192.0.2.1:1234", header, value)
}

func doFrom(r *gin.Engine, remoteAddr, header, value string) int {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = remoteAddr
	if header != "" {
		req.Header.Set(header, value)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr.Code
}

func TestAPIKeyAuth(t *testing.T) {
	r := newEngine(APIKeyAuth(AuthConfig{Enabled: true, APIKeys: []string{"sk_test_12345678"}}, nil))

	assert.Equal(t, http.StatusUnauthorized, do(r, "", ""))
	assert.Equal(t, http.StatusForbidden, do(r, "X-API-Key", "nope"))
	assert.Equal(t, http.StatusNoContent, do(r, "X-API-Key", "sk_test_12345678"))
	assert.Equal(t, http.StatusNoContent, do(r, "Authorization", "Bearer sk_test_12345678"))

	open := newEngine(APIKeyAuth(AuthConfig{}, nil))
	assert.Equal(t, http.StatusNoContent, do(open, "", ""))
}

func TestRateLimit(t *testing.T) {
	r := newEngine(RateLimit(RateLimitConfig{Enabled: true, RequestsPerMin: 1, BurstSize: 2}))
	assert.Equal(t, http.StatusNoContent, do(r, "", ""))
	assert.Equal(t, http.StatusNoContent, do(r, "", ""))
	assert.Equal(t, http.StatusTooManyRequests, do(r, "", ""))
}

func TestRateLimit_PerClient(t *testing.T) {
	r := newEngine(RateLimit(RateLimitConfig{Enabled: true, RequestsPerMin: 1, BurstSize: 1}))
	assert.Equal(t, http.StatusNoContent, doFrom(r, "10.0.0.1:5000", "", ""))
	assert.Equal(t, http.StatusTooManyRequests, doFrom(r, "10.0.0.1:5001", "", ""))
	// 另一客户端不受影响
	assert.Equal(t, http.StatusNoContent, doFrom(r, "10.0.0.2:5000", "", ""))
	assert.Equal(t, http.StatusTooManyRequests, doFrom(r, "10.0.0.2:5000", "", ""))
}

func TestClientLimiters_EvictsIdle(t *testing.T) {
	l := newClientLimiters(rate.Limit(1), 1, time.Minute)
	t0 := time.Unix(1_700_000_000, 0)
	assert.True(t, l.allow("a", t0))
	assert.True(t, l.allow("b", t0))
	assert.Equal(t, 2, l.size())

	// 新客户端到来时回收空闲条目
	assert.True(t, l.allow("c", t0.Add(2*time.Minute)))
	assert.Equal(t, 1, l.size())
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk_t****5678", maskAPIKey("sk_test_12345678"))
}
