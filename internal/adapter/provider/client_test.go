package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"smm-admin-gateway/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCfg() config.ProviderConfig {
	return config.ProviderConfig{
		Timeout:   5 * time.Second,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/96.0.4664.110 Safari/537.36",
	}
}

func TestClient_Do_FormEncoding(t *testing.T) {
	var gotForm map[string][]string
	var gotUA, gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		gotUA = r.Header.Get("User-Agent")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"balance":"12.34","currency":"USD"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(testCfg(), zerolog.Nop())
	body, err := c.Do(context.Background(), srv.URL, "secret-key", "balance", nil)
	require.NoError(t, err)

	assert.JSONEq(t, `{"balance":"12.34","currency":"USD"}`, string(body))
	assert.Equal(t, []string{"secret-key"}, gotForm["key"])
	assert.Equal(t, []string{"balance"}, gotForm["action"])
	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
}

func TestClient_Do_ExtraParamsCannotOverrideCredentials(t *testing.T) {
	var gotForm map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Write([]byte(`[]`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(testCfg(), zerolog.Nop())
	_, err := c.Do(context.Background(), srv.URL, "real-key", "services", map[string]string{
		"key":     "attacker-key",
		"action":  "balance",
		"service": "42",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"real-key"}, gotForm["key"])
	assert.Equal(t, []string{"services"}, gotForm["action"])
	assert.Equal(t, []string{"42"}, gotForm["service"])
}

func TestClient_Do_Non2xxDoesNotLeakBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("<html>challenge page with internal hostnames</html>")) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(testCfg(), zerolog.Nop())
	_, err := c.Do(context.Background(), srv.URL, "k", "services", nil)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "challenge page")
	assert.Contains(t, err.Error(), "403")
}

func TestClient_Do_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	cfg := testCfg()
	cfg.Timeout = 50 * time.Millisecond
	c := NewClient(cfg, zerolog.Nop())

	_, err := c.Do(context.Background(), srv.URL, "k", "balance", nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "context deadline exceeded") ||
		strings.Contains(err.Error(), "Client.Timeout"), "got: %v", err)
}
