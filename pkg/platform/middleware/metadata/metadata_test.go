package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"healx/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		hops    int
		headers map[string]string
		remote  string
		want    string
	}{
		{"no trusted proxy ignores forwarded for", 0, map[string]string{"X-Forwarded-For": "10.0.0.1"}, "1.1.1.1:80", "1.1.1.1"},
		{"no trusted proxy ignores real ip", 0, map[string]string{"X-Real-IP": "10.0.0.9"}, "1.1.1.1:80", "1.1.1.1"},
		{"one proxy takes the entry it appended", 1, map[string]string{"X-Forwarded-For": "6.6.6.6, 10.0.0.1"}, "1.1.1.1:80", "10.0.0.1"},
		{"two proxies skip the inner hop", 2, map[string]string{"X-Forwarded-For": "6.6.6.6, 10.0.0.1, 10.0.0.2"}, "1.1.1.1:80", "10.0.0.1"},
		{"short chain falls back to the leftmost entry", 3, map[string]string{"X-Forwarded-For": "10.0.0.1"}, "1.1.1.1:80", "10.0.0.1"},
		{"real ip header behind a proxy", 1, map[string]string{"X-Real-IP": " 10.0.0.9 "}, "1.1.1.1:80", "10.0.0.9"},
		{"remote addr ipv4", 0, nil, "192.168.1.5:5555", "192.168.1.5"},
		{"remote addr ipv6", 0, nil, "[::1]:5555", "::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(r, tt.hops))
		})
	}
}

func TestClientMetadata_IgnoresRotatedForwardedFor(t *testing.T) {
	var seen []string
	h := ClientMetadata(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = append(seen, requestcontext.ClientIP(r.Context()))
	}))

	for _, spoofed := range []string{"1.0.0.1", "1.0.0.2", "1.0.0.3"} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.1.1.1:1234"
		r.Header.Set("X-Forwarded-For", spoofed)
		h.ServeHTTP(httptest.NewRecorder(), r)
	}

	assert.Equal(t, []string{"10.1.1.1", "10.1.1.1", "10.1.1.1"}, seen)
}

func TestClientMetadata_SetsContext(t *testing.T) {
	var gotIP, gotUA string
	h := ClientMetadata(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotIP = requestcontext.ClientIP(r.Context())
		gotUA = requestcontext.UserAgent(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.1.1.1:1234"
	r.Header.Set("User-Agent", "scanner/1.0")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "10.1.1.1", gotIP)
	assert.Equal(t, "scanner/1.0", gotUA)
}
