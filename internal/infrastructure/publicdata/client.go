// Package publicdata talks to the data.go.kr open-data APIs (building ledger
// and apartment trade) and reduces their loosely typed payloads to facts.
package publicdata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/urban-dds/pkg/errors"
)

// Defaults mirrored from the service configuration.
const (
	DefaultTimeoutMS        = 8000
	DefaultBuildingEndpoint = "https://apis.data.go.kr/1613000/BldRgstHubService/getBrRecapTitleInfo"
	DefaultTradeEndpoint    = "https://apis.data.go.kr/1613000/RTMSDataSvcAptTrade/getRTMSDataSvcAptTrade"
	DefaultTradeMonths      = 3
)

// Request outcomes reported to the Recorder.
const (
	OutcomeOK        = "ok"
	OutcomeHTTP      = "http_error"
	OutcomeAPI       = "api_error"
	OutcomeTransport = "transport_error"
	OutcomeDecode    = "decode_error"
)

var nonFatalResultCodes = map[string]bool{"0": true, "00": true, "000": true, "03": true}

// overridableKeys are endpoint query keys replaced by request parameters
// (compared case-insensitively).
var overridableKeys = map[string]bool{
	"servicekey": true,
	"_type":      true,
	"numofrows":  true,
	"pageno":     true,
	"sigungucd":  true,
	"bjdongcd":   true,
	"platgbcd":   true,
	"bun":        true,
	"ji":         true,
	"lawd_cd":    true,
	"deal_ymd":   true,
}

var trailingSeparators = regexp.MustCompile(`[?&]+$`)

// Config configures the gateway.
type Config struct {
	Enabled          bool
	ServiceKey       string
	TimeoutMS        int
	BuildingEndpoint string
	TradeEndpoint    string
	TradeMonths      int
}

// Recorder receives per-request observations.  It is optional.
type Recorder interface {
	ObservePublicDataRequest(endpoint, outcome string, d time.Duration)
}

// Params are request query parameters; blank values are omitted.
type Params map[string]string

// Client performs keyed JSON requests against data.go.kr endpoints.
type Client struct {
	cfg        Config
	httpClient *http.Client
	recorder   Recorder
	logger     logging.Logger
	now        func() time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.  The configured
// timeout is applied on top of it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRecorder installs a request recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithClock overrides the time source used for month windows.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient creates a gateway client.
func NewClient(cfg Config, log logging.Logger, opts ...Option) *Client {
	cfg.ServiceKey = strings.TrimSpace(cfg.ServiceKey)
	if cfg.TimeoutMS <= 0 {
		cfg.TimeoutMS = DefaultTimeoutMS
	}
	if strings.TrimSpace(cfg.BuildingEndpoint) == "" {
		cfg.BuildingEndpoint = DefaultBuildingEndpoint
	}
	if strings.TrimSpace(cfg.TradeEndpoint) == "" {
		cfg.TradeEndpoint = DefaultTradeEndpoint
	}
	if cfg.TradeMonths <= 0 {
		cfg.TradeMonths = DefaultTradeMonths
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     log.Named("publicdata"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether real-data collection is switched on.
func (c *Client) Enabled() bool { return c.cfg.Enabled }

// HasServiceKey reports whether a service key is configured.
func (c *Client) HasServiceKey() bool { return c.cfg.ServiceKey != "" }

// Config returns the effective configuration.
func (c *Client) Config() Config { return c.cfg }

func (c *Client) timeout() time.Duration {
	return time.Duration(c.cfg.TimeoutMS) * time.Millisecond
}

func encodeParams(params Params) url.Values {
	values := url.Values{}
	for k, v := range params {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		values.Set(k, v)
	}
	return values
}

// BuildURL merges params into endpoint.  Endpoint query keys that requests
// may override are dropped; other endpoint keys keep their last value.  An
// endpoint that cannot be parsed as an absolute URL gets the query appended.
func BuildURL(endpoint string, params Params) string {
	dynamic := encodeParams(params)
	clean := strings.TrimSpace(endpoint)

	parsed, err := url.Parse(clean)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		base := trailingSeparators.ReplaceAllString(clean, "")
		sep := "?"
		if strings.Contains(base, "?") {
			sep = "&"
		}
		return base + sep + dynamic.Encode()
	}

	merged := url.Values{}
	for k, vs := range parsed.Query() {
		if overridableKeys[strings.ToLower(k)] || len(vs) == 0 {
			continue
		}
		merged.Set(k, vs[len(vs)-1])
	}
	for k, vs := range dynamic {
		merged[k] = vs
	}
	parsed.RawQuery = merged.Encode()
	return parsed.String()
}

// RequestJSON issues a keyed GET and returns the decoded payload.  Transport
// failures, non-2xx statuses and fatal upstream result codes are errors.
func (c *Client) RequestJSON(ctx context.Context, endpoint string, params Params) (interface{}, error) {
	if c.cfg.ServiceKey == "" {
		return nil, errors.New(errors.ErrCodePublicDataKeyMissing, "DATA_GO_KR_SERVICE_KEY is missing")
	}

	merged := Params{}
	for k, v := range params {
		merged[k] = v
	}
	merged["serviceKey"] = c.cfg.ServiceKey
	merged["_type"] = "json"
	requestURL := BuildURL(endpoint, merged)

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	start := time.Now()
	payload, outcome, err := c.do(ctx, requestURL)
	if c.recorder != nil {
		c.recorder.ObservePublicDataRequest(endpointLabel(endpoint), outcome, time.Since(start))
	}
	return payload, err
}

func (c *Client) do(ctx context.Context, requestURL string) (interface{}, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, OutcomeTransport, errors.Wrap(err, errors.ErrCodePublicDataRequestFailed, "invalid public data request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, OutcomeTransport, errors.Wrap(err, errors.ErrCodePublicDataRequestFailed, "public-data-request-failed:transport")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, OutcomeHTTP, errors.Newf(errors.ErrCodePublicDataRequestFailed, "public-data-request-failed:%d", resp.StatusCode)
	}

	var payload interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, OutcomeDecode, errors.Wrap(err, errors.ErrCodePublicDataParseError, "public data response is not valid JSON")
	}

	meta := ExtractMeta(payload)
	if meta.ResultCode != "" && !nonFatalResultCodes[meta.ResultCode] {
		msg := meta.ResultMsg
		if msg == "" {
			msg = "unknown"
		}
		return nil, OutcomeAPI, errors.Newf(errors.ErrCodePublicDataAPIError, "public-data-api-error:%s:%s", meta.ResultCode, msg)
	}
	return payload, OutcomeOK, nil
}

// endpointLabel keeps metric cardinality bounded to the operation name.
func endpointLabel(endpoint string) string {
	clean := strings.TrimSpace(endpoint)
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	clean = strings.TrimRight(clean, "/")
	if i := strings.LastIndex(clean, "/"); i >= 0 {
		clean = clean[i+1:]
	}
	if clean == "" {
		return "unknown"
	}
	return clean
}

// RedactServiceKey masks the serviceKey query value in a request URL.
func RedactServiceKey(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := parsed.Query()
	for k := range q {
		if strings.EqualFold(k, "serviceKey") {
			q.Set(k, "***")
		}
	}
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

//Personal.AI order the ending
