package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flo-mic/pluginreporter/internal/api"
	"github.com/flo-mic/pluginreporter/internal/auth"
	"github.com/flo-mic/pluginreporter/internal/config"
	"github.com/flo-mic/pluginreporter/internal/report"
)

var now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type countingCollector struct{ calls atomic.Int32 }

func (c *countingCollector) Collect() api.InventoryPayload {
	c.calls.Add(1)
	return api.InventoryPayload{Plugins: []api.InventoryItem{
		{Slug: "a", Status: api.StatusActive},
		{Slug: "b", Status: api.StatusInactive},
		{Slug: "c", Status: api.StatusActive},
	}}
}

type fixture struct {
	srv       *httptest.Server
	collector *countingCollector
	upstream  atomic.Int32 // status code the fake collector endpoint answers with
}

func newFixture(t *testing.T, secret string) *fixture {
	t.Helper()
	f := &fixture{collector: &countingCollector{}}
	f.upstream.Store(http.StatusOK)

	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(f.upstream.Load()))
	}))
	t.Cleanup(endpoint.Close)

	clock := clockwork.NewFakeClockAt(now)
	store := config.NewMemoryStore(config.Settings{EndpointURL: endpoint.URL, Secret: secret})
	rep := report.New(store, f.collector, report.WithClock(clock))

	s := New(store, rep, "https://example.org", clock, nil)
	f.srv = httptest.NewServer(s.Routes())
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path, key string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, nil)
	require.NoError(t, err)
	if key != "" {
		req.Header.Set(auth.KeyHeader, key)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestStatus_ValidKey(t *testing.T) {
	f := newFixture(t, "s3cr3t")

	resp := f.do(t, http.MethodGet, "/status", "s3cr3t")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["active"])
	assert.Equal(t, "plugin-reporter", body["plugin"])
	assert.Equal(t, "Plugin Reporter", body["name"])
	assert.Equal(t, "https://example.org", body["site_url"])
	assert.Equal(t, "2026-10-17T12:00:00Z", body["checked_at"])

	again := f.do(t, http.MethodGet, "/status", "s3cr3t")
	require.Equal(t, http.StatusOK, again.StatusCode)

	assert.Zero(t, f.collector.calls.Load(), "status checks never collect")
}

func TestAuth_Denied(t *testing.T) {
	cases := []struct {
		name, secret, key string
	}{
		{"missing header", "s3cr3t", ""},
		{"wrong key", "s3cr3t", "s3cr3t-not"},
		{"prefix of secret", "s3cr3t", "s3cr"},
		{"no secret configured", "", "anything"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newFixture(t, c.secret)
			for _, ep := range []struct{ method, path string }{
				{http.MethodGet, "/status"},
				{http.MethodPost, "/send"},
			} {
				resp := f.do(t, ep.method, ep.path, c.key)
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, ep.path)
				b, _ := io.ReadAll(resp.Body)
				assert.Empty(t, b, "denial carries no detail")
			}
			assert.Zero(t, f.collector.calls.Load())
		})
	}
}

func TestSend_Success(t *testing.T) {
	f := newFixture(t, "s3cr3t")

	resp := f.do(t, http.MethodPost, "/send", "s3cr3t")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body api.SendResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 3, body.PluginCount)
	assert.Equal(t, "2026-10-17T12:00:00Z", body.SentAt)
	assert.Equal(t, int32(1), f.collector.calls.Load())
}

func TestSend_UpstreamFailure(t *testing.T) {
	f := newFixture(t, "s3cr3t")
	f.upstream.Store(http.StatusInternalServerError)

	resp := f.do(t, http.MethodPost, "/send", "s3cr3t")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "error", body["status"])
	assert.EqualValues(t, 3, body["plugin_count"])
	assert.NotContains(t, body, "sent_at")
	assert.NotContains(t, body, "message")
}

func TestMethodMismatch(t *testing.T) {
	f := newFixture(t, "s3cr3t")
	resp := f.do(t, http.MethodGet, "/send", "s3cr3t")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

type stubSender struct{ res report.Result }

func (s stubSender) Report(context.Context, report.Trigger) report.Result { return s.res }

func TestSend_UsesRemoteTrigger(t *testing.T) {
	store := config.NewMemoryStore(config.Settings{Secret: "k"})
	var got report.Trigger
	s := New(store, senderFunc(func(_ context.Context, tr report.Trigger) report.Result {
		got = tr
		return report.Result{Outcome: report.OutcomeSuccess, Timestamp: now}
	}), "", nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/send", nil)
	req.Header.Set(auth.KeyHeader, "k")
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, report.TriggerRemote, got)
}

func TestSend_ConfigMissingIsBadGateway(t *testing.T) {
	store := config.NewMemoryStore(config.Settings{Secret: "k"})
	s := New(store, stubSender{res: report.Result{Outcome: report.OutcomeConfigMissing}}, "", nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/send", nil)
	req.Header.Set(auth.KeyHeader, "k")
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

type senderFunc func(context.Context, report.Trigger) report.Result

func (f senderFunc) Report(ctx context.Context, t report.Trigger) report.Result { return f(ctx, t) }
