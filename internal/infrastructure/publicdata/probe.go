package publicdata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Probe modes accepted by Probe.
const (
	ProbeModeAll           = "all"
	ProbeModeTrade         = "trade"
	ProbeModeBuildingTitle = "building-title"
	ProbeModeBuildingRecap = "building-recap"
)

// ProbeModes lists the accepted modes in display order.
var ProbeModes = []string{ProbeModeAll, ProbeModeTrade, ProbeModeBuildingTitle, ProbeModeBuildingRecap}

const bodyPreviewRunes = 240

// ProbeInputs are the query values shared by every probe in one run.
type ProbeInputs struct {
	SigunguCd string  `json:"sigunguCd"`
	BjdongCd  *string `json:"bjdongCd"`
	Bun       *string `json:"bun"`
	Ji        *string `json:"ji"`
	LawdCd    string  `json:"lawdCd"`
	DealYmd   string  `json:"dealYmd"`
	NumOfRows string  `json:"numOfRows"`
	PageNo    string  `json:"pageNo"`
}

// ProbeResult is the diagnostic record of one raw upstream request.
type ProbeResult struct {
	Name           string   `json:"name"`
	Endpoint       string   `json:"endpoint"`
	RequestURL     string   `json:"requestUrl"`
	OK             bool     `json:"ok"`
	HTTPStatus     int      `json:"httpStatus,omitempty"`
	ContentType    string   `json:"contentType,omitempty"`
	BodyLength     *int     `json:"bodyLength,omitempty"`
	BodyPreview    *string  `json:"bodyPreview,omitempty"`
	ResultCode     string   `json:"resultCode,omitempty"`
	ResultMsg      string   `json:"resultMsg,omitempty"`
	TotalCount     *float64 `json:"totalCount,omitempty"`
	ParsedItems    *int     `json:"parsedItems,omitempty"`
	JSONParseError string   `json:"jsonParseError,omitempty"`
	Error          string   `json:"error,omitempty"`
	StartedAt      string   `json:"startedAt"`
	FinishedAt     string   `json:"finishedAt"`
}

type probeDefinition struct {
	name     string
	endpoint string
	params   [][2]string
}

// IsProbeMode reports whether mode is accepted by Probe.
func IsProbeMode(mode string) bool {
	for _, m := range ProbeModes {
		if m == mode {
			return true
		}
	}
	return false
}

// TitleEndpoint maps a recap-title endpoint back to the per-building
// title endpoint.
func TitleEndpoint(endpoint string) string {
	return strings.Replace(endpoint, "/getBrRecapTitleInfo", "/getBrTitleInfo", 1)
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// NewProbeInputs applies probe defaults to raw query values.
func (c *Client) NewProbeInputs(sigunguCd, bjdongCd, bun, ji, lawdCd, dealYmd, numOfRows, pageNo string) ProbeInputs {
	sigungu := orDefault(strings.TrimSpace(sigunguCd), "11680")
	return ProbeInputs{
		SigunguCd: sigungu,
		BjdongCd:  optionalString(strings.TrimSpace(bjdongCd)),
		Bun:       optionalString(strings.TrimSpace(bun)),
		Ji:        optionalString(strings.TrimSpace(ji)),
		LawdCd:    orDefault(strings.TrimSpace(lawdCd), sigungu),
		DealYmd:   orDefault(strings.TrimSpace(dealYmd), c.now().Format("200601")),
		NumOfRows: orDefault(strings.TrimSpace(numOfRows), "10"),
		PageNo:    orDefault(strings.TrimSpace(pageNo), "1"),
	}
}

func (c *Client) probeDefinitions(mode string, in ProbeInputs) []probeDefinition {
	key := c.cfg.ServiceKey
	building := [][2]string{
		{"serviceKey", key}, {"_type", "json"},
		{"sigunguCd", in.SigunguCd}, {"numOfRows", in.NumOfRows}, {"pageNo", in.PageNo},
	}
	for _, kv := range []struct {
		k string
		v *string
	}{{"bjdongCd", in.BjdongCd}, {"bun", in.Bun}, {"ji", in.Ji}} {
		if kv.v != nil {
			building = append(building, [2]string{kv.k, *kv.v})
		}
	}

	title := TitleEndpoint(c.cfg.BuildingEndpoint)
	var defs []probeDefinition
	if mode == ProbeModeAll || mode == ProbeModeTrade {
		defs = append(defs, probeDefinition{
			name:     "apartment-trade",
			endpoint: c.cfg.TradeEndpoint,
			params: [][2]string{
				{"serviceKey", key}, {"_type", "json"},
				{"LAWD_CD", in.LawdCd}, {"DEAL_YMD", in.DealYmd},
				{"numOfRows", in.NumOfRows}, {"pageNo", in.PageNo},
			},
		})
	}
	if mode == ProbeModeAll || mode == ProbeModeBuildingTitle {
		defs = append(defs, probeDefinition{name: "building-title", endpoint: title, params: building})
	}
	if mode == ProbeModeAll || mode == ProbeModeBuildingRecap {
		defs = append(defs, probeDefinition{name: "building-recap", endpoint: RecapEndpoint(title), params: building})
	}
	return defs
}

// Probe issues raw diagnostic requests for mode in parallel and reports
// what upstream returned.  Probe failures are captured in the results and
// never returned as errors.
func (c *Client) Probe(ctx context.Context, mode string, in ProbeInputs) []ProbeResult {
	defs := c.probeDefinitions(mode, in)
	results := make([]ProbeResult, len(defs))

	g, gctx := errgroup.WithContext(ctx)
	for i, def := range defs {
		i, def := i, def
		g.Go(func() error {
			results[i] = c.runProbe(gctx, def)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func isoNow() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

func (c *Client) runProbe(ctx context.Context, def probeDefinition) ProbeResult {
	res := ProbeResult{Name: def.name, Endpoint: def.endpoint, RequestURL: def.endpoint, StartedAt: isoNow()}
	fail := func(err error) ProbeResult {
		res.Error = err.Error()
		res.FinishedAt = isoNow()
		return res
	}

	u, err := url.Parse(strings.TrimSpace(def.endpoint))
	if err != nil {
		return fail(err)
	}
	q := u.Query()
	for _, kv := range def.params {
		if kv[1] != "" {
			q.Set(kv[0], kv[1])
		}
	}
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fail(err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(err)
	}

	res.RequestURL = RedactServiceKey(u.String())
	res.HTTPStatus = resp.StatusCode
	res.ContentType = resp.Header.Get("Content-Type")

	body := []rune(string(raw))
	length := len(body)
	res.BodyLength = &length
	preview := body
	if len(preview) > bodyPreviewRunes {
		preview = preview[:bodyPreviewRunes]
	}
	previewText := string(preview)
	res.BodyPreview = &previewText

	var payload interface{}
	if len(raw) == 0 {
		res.JSONParseError = "empty-body"
	} else if err := json.Unmarshal(raw, &payload); err != nil {
		res.JSONParseError = err.Error()
	}

	meta := ExtractMeta(payload)
	items := len(ExtractItems(payload))
	res.ResultCode = meta.ResultCode
	res.ResultMsg = meta.ResultMsg
	res.TotalCount = meta.TotalCount
	res.ParsedItems = &items

	nonFatal := meta.ResultCode == "" || nonFatalResultCodes[meta.ResultCode]
	res.OK = resp.StatusCode >= 200 && resp.StatusCode <= 299 && nonFatal && res.JSONParseError == ""
	res.FinishedAt = isoNow()
	return res
}

//Personal.AI order the ending
