package externalfacts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/urban-dds/internal/domain/region"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/urban-dds/internal/infrastructure/publicdata"
	"github.com/turtacn/urban-dds/pkg/errors"
)

type fakeGateway struct {
	mu       sync.Mutex
	results  map[string]publicdata.FetchResult
	fallback publicdata.FetchResult
	trade    *region.TradeFacts
	lookups  []string
	lawds    []string
	months   []int
}

func (f *fakeGateway) FetchBuildingFacts(_ context.Context, lookup *region.BuildingLookup) publicdata.FetchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	sig := lookup.Signature()
	f.lookups = append(f.lookups, sig)
	if res, ok := f.results[sig]; ok {
		return res
	}
	return f.fallback
}

func (f *fakeGateway) FetchTradeFacts(_ context.Context, lawdCode string, months int) *region.TradeFacts {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lawds = append(f.lawds, lawdCode)
	f.months = append(f.months, months)
	return f.trade
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mapCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "cache miss")
	}
	return json.Unmarshal(raw, dest)
}

func (m *mapCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	m.ttls[key] = ttl
	return nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	statuses []string
	cache    []string
}

func (r *fakeRecorder) ObserveFactsCollection(status string, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *fakeRecorder) ObserveFactsCache(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = append(r.cache, result)
}

func buildingFacts(year float64) *region.BuildingFacts {
	return &region.BuildingFacts{AvgCompletionYear: region.Float(year), SampleSize: 4, Source: region.BuildingFactsSource}
}

func TestToSigunguCd(t *testing.T) {
	assert.Equal(t, "11680", ToSigunguCd("11680"))
	assert.Equal(t, "11680", ToSigunguCd("1168010600"))
	assert.Equal(t, "11680", ToSigunguCd("11-680"))
	assert.Equal(t, "123", ToSigunguCd("a1b2c3"))
	assert.Empty(t, ToSigunguCd(""))
	assert.Empty(t, ToSigunguCd("seoul"))
}

func TestDeriveBuildingCandidates_GangnamGu(t *testing.T) {
	rec := &region.Region{Code: " Gangnam-Gu ", Level: region.LevelGu, LawdCode: "11680"}
	var sigs []string
	for _, l := range DeriveBuildingCandidates(rec) {
		sigs = append(sigs, l.Signature())
	}
	assert.Equal(t, []string{
		"11680|10300|||",
		"11680|10600|||",
		"11680|10100|||",
		"11680||||",
	}, sigs)
}

func TestDeriveBuildingCandidates_ExplicitLookupAndDedupe(t *testing.T) {
	rec := &region.Region{
		Code:           "unknown-gu",
		Level:          region.LevelGu,
		LawdCode:       "26350",
		BuildingLookup: &region.BuildingLookup{SigunguCd: "26350", BjdongCd: "10100"},
	}
	var sigs []string
	for _, l := range DeriveBuildingCandidates(rec) {
		sigs = append(sigs, l.Signature())
	}
	assert.Equal(t, []string{
		"26350|10100|||",
		"26350|10200|||",
		"26350|10300|||",
		"26350||||",
	}, sigs)
}

func TestDeriveBuildingCandidates_NonGuAndMissingLawd(t *testing.T) {
	dong := &region.Region{
		Code:           "gangnam-daechi",
		Level:          region.LevelDong,
		LawdCode:       "11680",
		BuildingLookup: &region.BuildingLookup{SigunguCd: "11680", BjdongCd: "10600", PlatGbCd: "0"},
	}
	cands := DeriveBuildingCandidates(dong)
	require.Len(t, cands, 2)
	assert.Equal(t, "10600", cands[0].BjdongCd)
	assert.Equal(t, "11680||||", cands[1].Signature())

	assert.Empty(t, DeriveBuildingCandidates(&region.Region{Code: "x", Level: region.LevelCity}))

	onlyLookup := DeriveBuildingCandidates(&region.Region{
		Code:           "y",
		Level:          region.LevelGu,
		BuildingLookup: &region.BuildingLookup{SigunguCd: "11110"},
	})
	require.Len(t, onlyLookup, 1)
}

func TestCollect_StopsAtFirstSuccess(t *testing.T) {
	gw := &fakeGateway{
		results: map[string]publicdata.FetchResult{
			"11680|10300|||": {Reason: region.FactsStatusNoData, Attempts: 4},
			"11680|10600|||": {Facts: buildingFacts(1995), Attempts: 2},
		},
		fallback: publicdata.FetchResult{Reason: region.FactsStatusNoData, Attempts: 4},
		trade:    &region.TradeFacts{AvgDealAmount: region.Float(90000), DealCount: 5, Source: region.TradeFactsSource},
	}
	rec := &fakeRecorder{}
	c := NewCollector(gw, logging.NewNopLogger(), WithRecorder(rec))

	facts := c.Collect(context.Background(), &region.Region{Code: "gangnam-gu", Level: region.LevelGu, LawdCode: "11680"})
	require.NotNil(t, facts.Building)
	assert.Equal(t, 1995.0, *facts.Building.AvgCompletionYear)
	assert.Equal(t, region.FactsStatusOK, facts.BuildingStatus)
	assert.Equal(t, 6, facts.BuildingAttempts)
	require.NotNil(t, facts.Trade)
	assert.Equal(t, []string{region.BuildingFactsSource, region.TradeFactsSource}, facts.DataSource)

	assert.Equal(t, []string{"11680|10300|||", "11680|10600|||"}, gw.lookups)
	assert.Equal(t, []string{"11680"}, gw.lawds)
	assert.Equal(t, []string{"ok"}, rec.statuses)
}

func TestCollect_RequestFailedIsSticky(t *testing.T) {
	gw := &fakeGateway{
		results: map[string]publicdata.FetchResult{
			"11680|10300|||": {Reason: region.FactsStatusRequestFailed, Attempts: 4},
		},
		fallback: publicdata.FetchResult{Reason: region.FactsStatusNoData, Attempts: 4},
	}
	c := NewCollector(gw, nil)

	facts := c.Collect(context.Background(), &region.Region{Code: "gangnam-gu", Level: region.LevelGu, LawdCode: "11680"})
	assert.Nil(t, facts.Building)
	assert.Nil(t, facts.Trade)
	assert.Equal(t, region.FactsStatusRequestFailed, facts.BuildingStatus)
	assert.Equal(t, 16, facts.BuildingAttempts)
	assert.Len(t, gw.lookups, 4)
	assert.Empty(t, facts.DataSource)
}

func TestCollect_NoData(t *testing.T) {
	gw := &fakeGateway{fallback: publicdata.FetchResult{Reason: region.FactsStatusNoData, Attempts: 2}}
	c := NewCollector(gw, nil)

	facts := c.Collect(context.Background(), &region.Region{Code: "suseong-gu", Level: region.LevelGu, LawdCode: "27260"})
	assert.Equal(t, region.FactsStatusNoData, facts.BuildingStatus)
	assert.Equal(t, 8, facts.BuildingAttempts)
}

func TestCollect_DisabledStopsImmediately(t *testing.T) {
	gw := &fakeGateway{fallback: publicdata.FetchResult{Reason: region.FactsStatusDisabled}}
	c := NewCollector(gw, nil)

	facts := c.Collect(context.Background(), &region.Region{Code: "mapo-gu", Level: region.LevelGu, LawdCode: "11440"})
	assert.Equal(t, region.FactsStatusDisabled, facts.BuildingStatus)
	assert.Zero(t, facts.BuildingAttempts)
	assert.Len(t, gw.lookups, 1)
}

func TestCollect_MissingLookup(t *testing.T) {
	gw := &fakeGateway{}
	c := NewCollector(gw, nil)

	facts := c.Collect(context.Background(), &region.Region{Code: "nowhere", Level: region.LevelCity})
	assert.Equal(t, region.FactsStatusMissingLookup, facts.BuildingStatus)
	assert.Zero(t, facts.BuildingAttempts)
	assert.Empty(t, gw.lookups)
	assert.NotNil(t, facts.DataSource)
}

func TestCollect_Cache(t *testing.T) {
	gw := &fakeGateway{
		fallback: publicdata.FetchResult{Facts: buildingFacts(2001), Attempts: 1},
	}
	cache := newMapCache()
	rec := &fakeRecorder{}
	clock := func() time.Time { return time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC) }
	c := NewCollector(gw, nil, WithCache(cache, time.Hour), WithRecorder(rec), WithClock(clock))
	target := &region.Region{Code: "Seoul-Jung-Gu", Level: region.LevelCity, LawdCode: "11140"}

	first := c.Collect(context.Background(), target)
	second := c.Collect(context.Background(), target)

	assert.Equal(t, first.BuildingStatus, second.BuildingStatus)
	assert.Equal(t, *first.Building.AvgCompletionYear, *second.Building.AvgCompletionYear)
	assert.Len(t, gw.lookups, 1)
	assert.Equal(t, []string{"miss", "hit"}, rec.cache)
	assert.Equal(t, time.Hour, cache.ttls["facts:seoul-jung-gu:202610"])
}

func TestCollect_FailuresAreNotCached(t *testing.T) {
	gw := &fakeGateway{fallback: publicdata.FetchResult{Reason: region.FactsStatusRequestFailed, Attempts: 4}}
	cache := newMapCache()
	c := NewCollector(gw, nil, WithCache(cache, time.Hour))
	target := &region.Region{Code: "x", Level: region.LevelCity, LawdCode: "11140"}

	c.Collect(context.Background(), target)
	c.Collect(context.Background(), target)
	assert.Len(t, gw.lookups, 2)
	assert.Empty(t, cache.data)
}

func TestCollect_TradeWindowDefaultsToGateway(t *testing.T) {
	gw := &fakeGateway{fallback: publicdata.FetchResult{Reason: region.FactsStatusNoData}}
	target := &region.Region{Code: "mapo-gu", Level: region.LevelCity, LawdCode: "11440"}

	NewCollector(gw, nil).Collect(context.Background(), target)
	NewCollector(gw, nil, WithTradeMonths(4)).Collect(context.Background(), target)
	assert.Equal(t, []int{0, 4}, gw.months)
}

func TestCollect_UsesConfiguredTradeMonths(t *testing.T) {
	var (
		mu     sync.Mutex
		months []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/trade") {
			mu.Lock()
			months = append(months, r.URL.Query().Get("DEAL_YMD"))
			mu.Unlock()
			w.Write([]byte(`{"response":{"body":{"items":{"item":[{"dealAmount":"90,000","excluUseAr":"84"}]}}}}`))
			return
		}
		w.Write([]byte(`{"response":{"header":{"resultCode":"00"},"body":{"items":"","totalCount":0}}}`))
	}))
	defer srv.Close()

	client := publicdata.NewClient(publicdata.Config{
		Enabled:          true,
		ServiceKey:       "test-key",
		BuildingEndpoint: srv.URL + "/building",
		TradeEndpoint:    srv.URL + "/trade",
		TradeMonths:      6,
	}, nil, publicdata.WithClock(func() time.Time { return time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC) }))

	facts := NewCollector(client, nil).Collect(context.Background(),
		&region.Region{Code: "mapo-gu", Level: region.LevelCity, LawdCode: "11440"})

	mu.Lock()
	defer mu.Unlock()
	sort.Strings(months)
	assert.Equal(t, []string{"202605", "202606", "202607", "202608", "202609", "202610"}, months)
	require.NotNil(t, facts.Trade)
	assert.Equal(t, "202605~202610", facts.Trade.Period)
}

// blockingGateway holds building lookups until released and fails them if
// the request context ends first.
type blockingGateway struct {
	started  chan struct{}
	release  chan struct{}
	once     sync.Once
	requests atomic.Int32
}

func (g *blockingGateway) FetchBuildingFacts(ctx context.Context, _ *region.BuildingLookup) publicdata.FetchResult {
	g.requests.Add(1)
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
		return publicdata.FetchResult{Facts: buildingFacts(1990), Attempts: 1}
	case <-ctx.Done():
		return publicdata.FetchResult{Reason: region.FactsStatusRequestFailed, Attempts: 1}
	}
}

func (g *blockingGateway) FetchTradeFacts(context.Context, string, int) *region.TradeFacts {
	return nil
}

func TestCollect_CancelledCallerDoesNotDegradeSharedResult(t *testing.T) {
	gw := &blockingGateway{started: make(chan struct{}), release: make(chan struct{})}
	cache := newMapCache()
	c := NewCollector(gw, nil, WithCache(cache, time.Hour), WithSharedTimeout(5*time.Second))
	target := &region.Region{Code: "jung-gu", Level: region.LevelCity, LawdCode: "11140"}

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderDone := make(chan region.ExternalFacts, 1)
	go func() { leaderDone <- c.Collect(leaderCtx, target) }()

	<-gw.started
	cancelLeader()
	leader := <-leaderDone
	assert.Equal(t, region.FactsStatusRequestFailed, leader.BuildingStatus)

	followerDone := make(chan region.ExternalFacts, 1)
	go func() { followerDone <- c.Collect(context.Background(), target) }()
	close(gw.release)

	select {
	case follower := <-followerDone:
		assert.Equal(t, region.FactsStatusOK, follower.BuildingStatus)
		require.NotNil(t, follower.Building)
		assert.Equal(t, 1990.0, *follower.Building.AvgCompletionYear)
	case <-time.After(5 * time.Second):
		t.Fatal("follower did not receive the shared result")
	}
	assert.Equal(t, int32(1), gw.requests.Load())
}

//Personal.AI order the ending
