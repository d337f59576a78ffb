package publicdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/urban-dds/pkg/errors"
)

type recordedCall struct {
	endpoint string
	outcome  string
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeRecorder) ObservePublicDataRequest(endpoint, outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{endpoint, outcome})
}

func newTestClient(t *testing.T, srv *httptest.Server, mutate func(*Config), opts ...Option) *Client {
	t.Helper()
	cfg := Config{
		Enabled:          true,
		ServiceKey:       "  test-key  ",
		BuildingEndpoint: srv.URL + "/BldRgstHubService/getBrTitleInfo",
		TradeEndpoint:    srv.URL + "/RTMSDataSvcAptTrade/getRTMSDataSvcAptTrade",
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(cfg, logging.NewNopLogger(), opts...)
}

func TestBuildURL(t *testing.T) {
	got := BuildURL("https://apis.example.kr/svc/op?serviceKey=OLD&foo=1&foo=2&NumOfRows=5&pageNo=9",
		Params{"numOfRows": "100", "sigunguCd": " 11680 ", "bjdongCd": "  ", "pageNo": "1"})

	u, err := url.Parse(got)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "/svc/op", u.Path)
	assert.Equal(t, []string{"2"}, q["foo"])
	assert.Empty(t, q.Get("serviceKey"))
	assert.Empty(t, q.Get("NumOfRows"))
	assert.Equal(t, "100", q.Get("numOfRows"))
	assert.Equal(t, "1", q.Get("pageNo"))
	assert.Equal(t, "11680", q.Get("sigunguCd"))
	_, hasBjdong := q["bjdongCd"]
	assert.False(t, hasBjdong)
}

func TestBuildURL_UnparsableEndpoint(t *testing.T) {
	assert.Equal(t, "relative/path?a=1", BuildURL(" relative/path?& ", Params{"a": "1"}))
	assert.Equal(t, "relative/path?x=y&a=1", BuildURL("relative/path?x=y&", Params{"a": "1"}))
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{ServiceKey: " k "}, nil)
	cfg := c.Config()
	assert.Equal(t, "k", cfg.ServiceKey)
	assert.Equal(t, DefaultTimeoutMS, cfg.TimeoutMS)
	assert.Equal(t, DefaultBuildingEndpoint, cfg.BuildingEndpoint)
	assert.Equal(t, DefaultTradeEndpoint, cfg.TradeEndpoint)
	assert.Equal(t, DefaultTradeMonths, cfg.TradeMonths)
	assert.False(t, c.Enabled())
	assert.True(t, c.HasServiceKey())
}

func TestRequestJSON_MissingKey(t *testing.T) {
	c := NewClient(Config{Enabled: true}, logging.NewNopLogger())
	_, err := c.RequestJSON(context.Background(), "https://example.invalid/op", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodePublicDataKeyMissing))
	assert.Contains(t, err.Error(), "DATA_GO_KR_SERVICE_KEY is missing")
}

func TestRequestJSON_AddsKeyAndType(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":{"header":{"resultCode":"03","resultMsg":"NODATA_ERROR"},"body":{"items":""}}}`))
	}))
	defer srv.Close()

	rec := &fakeRecorder{}
	c := newTestClient(t, srv, nil, WithRecorder(rec))
	payload, err := c.RequestJSON(context.Background(), srv.URL+"/svc/getThing?serviceKey=stale", Params{"a": "1"})
	require.NoError(t, err)
	assert.NotNil(t, payload)
	assert.Equal(t, "test-key", got.Get("serviceKey"))
	assert.Equal(t, "json", got.Get("_type"))
	assert.Equal(t, "1", got.Get("a"))

	require.Len(t, rec.calls, 1)
	assert.Equal(t, recordedCall{"getThing", OutcomeOK}, rec.calls[0])
}

func TestRequestJSON_Failures(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		code    errors.ErrorCode
		message string
		outcome string
	}{
		{"http status", http.StatusServiceUnavailable, `{}`, errors.ErrCodePublicDataRequestFailed, "public-data-request-failed:503", OutcomeHTTP},
		{"fatal result code", http.StatusOK, `{"response":{"header":{"resultCode":"30","resultMsg":"SERVICE KEY IS NOT REGISTERED ERROR."}}}`,
			errors.ErrCodePublicDataAPIError, "public-data-api-error:30:SERVICE KEY IS NOT REGISTERED ERROR.", OutcomeAPI},
		{"fatal result code without message", http.StatusOK, `{"response":{"header":{"resultCode":"99"}}}`,
			errors.ErrCodePublicDataAPIError, "public-data-api-error:99:unknown", OutcomeAPI},
		{"xml body", http.StatusOK, `<OpenAPI_ServiceResponse/>`, errors.ErrCodePublicDataParseError, "not valid JSON", OutcomeDecode},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			rec := &fakeRecorder{}
			c := newTestClient(t, srv, nil, WithRecorder(rec))
			_, err := c.RequestJSON(context.Background(), srv.URL+"/op", nil)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tc.code))
			assert.Contains(t, err.Error(), tc.message)
			require.Len(t, rec.calls, 1)
			assert.Equal(t, tc.outcome, rec.calls[0].outcome)
		})
	}
}

func TestRequestJSON_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv, func(cfg *Config) { cfg.TimeoutMS = 50 })
	_, err := c.RequestJSON(context.Background(), srv.URL+"/op", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodePublicDataRequestFailed))
}

func TestRedactServiceKey(t *testing.T) {
	out := RedactServiceKey("https://apis.example.kr/op?serviceKey=secret&a=1")
	assert.NotContains(t, out, "secret")
	u, err := url.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "***", u.Query().Get("serviceKey"))
	assert.Equal(t, "1", u.Query().Get("a"))
}

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "getBrTitleInfo", endpointLabel("https://x/BldRgstHubService/getBrTitleInfo?x=1"))
	assert.Equal(t, "op", endpointLabel("https://x/op/"))
	assert.Equal(t, "unknown", endpointLabel(""))
}

//Personal.AI order the ending
