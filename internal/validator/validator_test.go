package validator

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proxypool/internal/config"
	"proxypool/internal/store"
)

func newTestValidator(t *testing.T, handler http.HandlerFunc) (*Validator, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	v := New(config.ValidatorConfig{
		TestURL:                 srv.URL,
		Timeout:                 2 * time.Second,
		MaxConcurrentValidators: 4,
	})
	v.newClient = func(store.Proxy, time.Duration) (*http.Client, error) {
		return srv.Client(), nil
	}
	return v, srv.URL
}

func TestValidateBatch_SuccessCycle(t *testing.T) {
	v, _ := newTestValidator(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	proxies := []store.Proxy{{ID: 1, IP: "192.0.2.5", Port: 8080, Protocol: "http"}}
	batch := v.ValidateBatch(t.Context(), proxies, "test")

	require.Len(t, batch.Results, 1)
	r := batch.Results[0]
	assert.True(t, r.Success)
	require.NotNil(t, r.Speed)
	require.NotNil(t, r.Anonymity)
	assert.Equal(t, AnonymityElite, *r.Anonymity)
	assert.Equal(t, 1, batch.Success)
	assert.Equal(t, 0, batch.Failed)
}

func TestValidateBatch_AnonymityDetection(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		value    string
		expected string
	}{
		{"via header", "Via", "1.1 proxy", AnonymityAnonymous},
		{"leaks proxy ip", "X-Forwarded-For", "192.0.2.5", AnonymityTransparent},
		{"no headers", "", "", AnonymityElite},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, _ := newTestValidator(t, func(w http.ResponseWriter, r *http.Request) {
				if tc.header != "" {
					w.Header().Set(tc.header, tc.value)
				}
				w.WriteHeader(http.StatusOK)
			})

			proxies := []store.Proxy{{ID: 1, IP: "192.0.2.5", Port: 8080, Protocol: "http"}}
			batch := v.ValidateBatch(t.Context(), proxies, "test")

			require.Len(t, batch.Results, 1)
			require.NotNil(t, batch.Results[0].Anonymity)
			assert.Equal(t, tc.expected, *batch.Results[0].Anonymity)
		})
	}
}

func TestValidateBatch_NonSuccessStatus(t *testing.T) {
	v, _ := newTestValidator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	proxies := []store.Proxy{{ID: 2, IP: "203.0.113.9", Port: 3128, Protocol: "http"}}
	batch := v.ValidateBatch(t.Context(), proxies, "test")

	require.Len(t, batch.Results, 1)
	r := batch.Results[0]
	assert.False(t, r.Success)
	assert.Nil(t, r.Speed)
	assert.Nil(t, r.Anonymity)
	assert.Equal(t, 1, batch.Failed)
}

func TestValidateBatch_Empty(t *testing.T) {
	v := New(config.ValidatorConfig{MaxConcurrentValidators: 4})
	batch := v.ValidateBatch(t.Context(), nil, "test")
	assert.Equal(t, 0, batch.Total)
}

func TestClassifyAnonymity(t *testing.T) {
	assert.Equal(t, AnonymityTransparent, classifyAnonymity(map[string]string{"Server": "nginx/192.0.2.5"}, "192.0.2.5"))
	assert.Equal(t, AnonymityAnonymous, classifyAnonymity(map[string]string{"X-Forwarded-For": "198.51.100.1"}, "10.0.0.1"))
	assert.Equal(t, AnonymityElite, classifyAnonymity(map[string]string{}, "10.0.0.1"))
}
