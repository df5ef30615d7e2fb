package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIPForwardedForTakesPrecedence(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/chat", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1, 10.0.0.2")
	r.Header.Set("X-Real-IP", "198.51.100.4")
	r.RemoteAddr = "192.0.2.1:54321"

	assert.Equal(t, "203.0.113.7", ClientIP(r))
}

func TestClientIPForwardedForTrimsWhitespace(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/chat", nil)
	r.Header.Set("X-Forwarded-For", "  203.0.113.7 , 10.0.0.1")

	assert.Equal(t, "203.0.113.7", ClientIP(r))
}

func TestClientIPRealIPFallback(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/chat", nil)
	r.Header.Set("X-Real-IP", "198.51.100.4")
	r.RemoteAddr = "192.0.2.1:54321"

	assert.Equal(t, "198.51.100.4", ClientIP(r))
}

func TestClientIPRemoteAddrStripsPort(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/chat", nil)
	r.RemoteAddr = "192.0.2.1:54321"

	assert.Equal(t, "192.0.2.1", ClientIP(r))
}

func TestClientIPRemoteAddrWithoutPort(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/chat", nil)
	r.RemoteAddr = "192.0.2.1"

	assert.Equal(t, "192.0.2.1", ClientIP(r))
}

func TestClientIPUnknownFallback(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/chat", nil)
	r.RemoteAddr = ""

	assert.Equal(t, UnknownClient, ClientIP(r))
}
