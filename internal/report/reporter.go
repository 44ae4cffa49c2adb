package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"github.com/flo-mic/pluginreporter/internal/api"
	"github.com/flo-mic/pluginreporter/internal/config"
	"github.com/flo-mic/pluginreporter/internal/version"
)

// Trigger names what started an inventory cycle.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
	TriggerRemote    Trigger = "remote"
)

// Outcome classifies a finished cycle.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeHTTPError      Outcome = "http_error"
	OutcomeConfigMissing  Outcome = "config_missing"
)

// maxErrorBody bounds how many characters of a failed response are kept in
// the message.
const maxErrorBody = 200

// Result describes one inventory cycle.
type Result struct {
	Outcome    Outcome
	StatusCode int // 0 when no response was received
	Message    string
	ItemCount  int
	Timestamp  time.Time
	Trigger    Trigger
}

// OK reports whether the collector accepted the inventory.
func (r Result) OK() bool { return r.Outcome == OutcomeSuccess }

// Collector builds the payload for one cycle.
type Collector interface {
	Collect() api.InventoryPayload
}

// Reporter runs inventory cycles: collect, serialize, POST, classify.
type Reporter struct {
	store     config.Store
	collector Collector
	client    *http.Client
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *Metrics
}

// Option configures a Reporter.
type Option func(*Reporter)

func WithHTTPClient(c *http.Client) Option { return func(r *Reporter) { r.client = c } }
func WithClock(c clockwork.Clock) Option { return func(r *Reporter) { r.clock = c } }
func WithLogger(l *slog.Logger) Option { return func(r *Reporter) { r.logger = l } }
func WithMetrics(m *Metrics) Option { return func(r *Reporter) { r.metrics = m } }

// New returns a Reporter that reads the endpoint and secret from store on
// every cycle.
func New(store config.Store, collector Collector, opts ...Option) *Reporter {
	r := &Reporter{
		store:     store,
		collector: collector,
	}
	for _, o := range opts {
		o(r)
	}
	if r.client == nil {
		r.client = NewHTTPClient()
	}
	if r.clock == nil {
		r.clock = clockwork.NewRealClock()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Report runs one cycle. It makes at most one outbound request and never
// retries. Caller cancellation does not abort a request in flight; only the
// client timeout does.
func (r *Reporter) Report(ctx context.Context, trigger Trigger) Result {
	start := r.clock.Now()
	res := r.run(context.WithoutCancel(ctx), trigger)
	res.Trigger = trigger
	res.Timestamp = r.clock.Now().UTC()

	if r.metrics != nil {
		r.metrics.observe(res, r.clock.Since(start))
	}
	if res.OK() {
		r.logger.Info("inventory delivered", "trigger", trigger, "plugins", res.ItemCount, "status", res.StatusCode)
	} else {
		r.logger.Warn("inventory not delivered", "trigger", trigger, "outcome", res.Outcome, "status", res.StatusCode, "message", res.Message)
	}
	return res
}

func (r *Reporter) run(ctx context.Context, trigger Trigger) Result {
	settings, err := r.store.Settings(ctx)
	if err != nil {
		return Result{Outcome: OutcomeConfigMissing, Message: fmt.Sprintf("cannot load settings: %v", err)}
	}
	if settings.EndpointURL == "" || settings.Secret == "" {
		return Result{Outcome: OutcomeConfigMissing, Message: "endpoint URL or secret not configured"}
	}

	payload := r.collector.Collect()
	count := len(payload.Plugins)

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Outcome: OutcomeTransportError, ItemCount: count, Message: fmt.Sprintf("encoding payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, settings.EndpointURL, bytes.NewReader(body))
	if err != nil {
		return Result{Outcome: OutcomeTransportError, ItemCount: count, Message: fmt.Sprintf("building request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+settings.Secret)
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set(DigestHeader, Digest(body))
	req.Header.Set("X-Reporter-Trigger", string(trigger))

	resp, err := r.client.Do(req)
	if err != nil {
		return Result{Outcome: OutcomeTransportError, ItemCount: count, Message: fmt.Sprintf("POST %s: %v", settings.EndpointURL, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody*utf8.UTFMax))
		return Result{
			Outcome:    OutcomeHTTPError,
			StatusCode: resp.StatusCode,
			ItemCount:  count,
			Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncateRunes(snippet, maxErrorBody)),
		}
	}

	return Result{
		Outcome:    OutcomeSuccess,
		StatusCode: resp.StatusCode,
		ItemCount:  count,
		Message:    fmt.Sprintf("Inventory of %d plugins delivered (HTTP %d)", count, resp.StatusCode),
	}
}

// truncateRunes keeps at most n runes of b. A rune cut in half by the read
// limit is dropped.
func truncateRunes(b []byte, n int) string {
	i := 0
	for count := 0; i < len(b) && count < n; count++ {
		if !utf8.FullRune(b[i:]) {
			break
		}
		_, size := utf8.DecodeRune(b[i:])
		i += size
	}
	return string(b[:i])
}
