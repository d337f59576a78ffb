// Package externalfacts gathers building-ledger and apartment-trade facts
// for a region, searching progressively coarser building lookups until one
// yields data.
package externalfacts

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/urban-dds/internal/domain/region"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/urban-dds/internal/infrastructure/publicdata"
)

// defaultSharedTimeout bounds a collection shared by concurrent callers.
// It covers the candidate walk and the trade month window.
const defaultSharedTimeout = 45 * time.Second

// Sub-area seeds tried for gu-level regions.  These are representative
// dong codes, not an exhaustive administrative table.
var (
	defaultGuBjdongSeeds = []string{"10100", "10200", "10300"}
	guBjdongSeedsByCode  = map[string][]string{
		"gangnam-gu":  {"10300", "10600", "10100"},
		"gangbuk-gu":  {"10300", "10100", "10200"},
		"mapo-gu":     {"10100", "10200", "10300"},
		"haeundae-gu": {"10100", "10200", "10300"},
		"yeonsu-gu":   {"10100", "10200", "10300"},
		"yuseong-gu":  {"10100", "10200", "10300"},
	}
)

// Gateway is the subset of the public-data client the collector needs.
type Gateway interface {
	FetchBuildingFacts(ctx context.Context, lookup *region.BuildingLookup) publicdata.FetchResult
	FetchTradeFacts(ctx context.Context, lawdCode string, months int) *region.TradeFacts
}

// Cache stores collected facts between requests.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Recorder receives collection observations.
type Recorder interface {
	ObserveFactsCollection(status string, attempts int)
	ObserveFactsCache(result string)
}

// Collector implements external facts collection.
type Collector struct {
	gateway  Gateway
	cache    Cache
	cacheTTL time.Duration
	recorder Recorder
	logger   logging.Logger
	now      func() time.Time
	group    singleflight.Group

	// 0 defers to the gateway's configured window
	tradeMonths   int
	sharedTimeout time.Duration
}

// Option customises a Collector.
type Option func(*Collector)

// WithCache enables caching of collected facts for ttl.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Collector) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithRecorder installs a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Collector) { c.recorder = r }
}

// WithClock overrides the time source used for cache keys.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

// WithTradeMonths overrides the gateway's trade month window.  Non-positive
// values keep the gateway's configured window.
func WithTradeMonths(months int) Option {
	return func(c *Collector) { c.tradeMonths = months }
}

// WithSharedTimeout bounds a cached collection that runs on behalf of all
// concurrent callers for the same key.
func WithSharedTimeout(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.sharedTimeout = d
		}
	}
}

// NewCollector creates a Collector.
func NewCollector(gw Gateway, log logging.Logger, opts ...Option) *Collector {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &Collector{
		gateway: gw,
		logger:        log.Named("externalfacts"),
		now:           time.Now,
		sharedTimeout: defaultSharedTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ToSigunguCd keeps the digits of a LAWD code and returns the first five.
func ToSigunguCd(lawdCode string) string {
	var b strings.Builder
	for _, r := range lawdCode {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == 5 {
				break
			}
		}
	}
	return b.String()
}

// DedupeLookups drops lookups whose signature was already seen, keeping
// first occurrences in order.
func DedupeLookups(lookups []region.BuildingLookup) []region.BuildingLookup {
	seen := make(map[string]bool, len(lookups))
	out := make([]region.BuildingLookup, 0, len(lookups))
	for _, l := range lookups {
		sig := l.Signature()
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, l)
	}
	return out
}

// DeriveBuildingCandidates lists building lookups for rec in priority
// order: an explicit lookup, then seeded sub-areas for gu-level regions,
// then the bare sigungu code.
func DeriveBuildingCandidates(rec *region.Region) []region.BuildingLookup {
	var out []region.BuildingLookup
	if rec.BuildingLookup != nil && rec.BuildingLookup.SigunguCd != "" {
		out = append(out, *rec.BuildingLookup)
	}

	sigungu := ToSigunguCd(rec.LawdCode)
	if sigungu == "" {
		return DedupeLookups(out)
	}

	if rec.Level == region.LevelGu {
		seeds, ok := guBjdongSeedsByCode[strings.ToLower(strings.TrimSpace(rec.Code))]
		if !ok {
			seeds = defaultGuBjdongSeeds
		}
		for _, bjdong := range seeds {
			out = append(out, region.BuildingLookup{SigunguCd: sigungu, BjdongCd: bjdong})
		}
	}

	out = append(out, region.BuildingLookup{SigunguCd: sigungu})
	return DedupeLookups(out)
}

type buildingOutcome struct {
	facts    *region.BuildingFacts
	reason   region.FactsStatus
	attempts int
}

// collectBuilding walks candidates in order.  A request failure is sticky
// but does not stop the walk; a disabled gateway stops it immediately.
func (c *Collector) collectBuilding(ctx context.Context, candidates []region.BuildingLookup) buildingOutcome {
	if len(candidates) == 0 {
		return buildingOutcome{reason: region.FactsStatusMissingLookup}
	}

	out := buildingOutcome{reason: region.FactsStatusMissingLookup}
	for i := range candidates {
		lookup := candidates[i]
		res := c.gateway.FetchBuildingFacts(ctx, &lookup)
		out.attempts += res.Attempts

		if res.Facts != nil {
			return buildingOutcome{facts: res.Facts, attempts: out.attempts}
		}
		switch res.Reason {
		case region.FactsStatusDisabled:
			out.reason = region.FactsStatusDisabled
			return out
		case region.FactsStatusRequestFailed:
			out.reason = region.FactsStatusRequestFailed
			c.logger.Warn("building candidate failed",
				logging.String("candidate", lookup.Signature()),
				logging.Int("attempts", res.Attempts))
			continue
		}
		if out.reason != region.FactsStatusRequestFailed && res.Reason != "" {
			out.reason = res.Reason
		}
	}
	return out
}

// Collect fetches building and trade facts for rec concurrently.  It never
// fails; missing data is reported through the status fields.
func (c *Collector) Collect(ctx context.Context, rec *region.Region) region.ExternalFacts {
	if c.cache == nil {
		return c.collect(ctx, rec)
	}

	key := c.cacheKey(rec)
	var cached region.ExternalFacts
	if err := c.cache.Get(ctx, key, &cached); err == nil {
		c.observeCache("hit")
		return cached
	}
	c.observeCache("miss")

	// The shared call outlives any single caller so that a cancelled
	// leader does not degrade the result handed to its followers.
	ch := c.group.DoChan(key, func() (interface{}, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.sharedTimeout)
		defer cancel()

		facts := c.collect(sctx, rec)
		if cacheable(facts) {
			if err := c.cache.Set(sctx, key, facts, c.cacheTTL); err != nil {
				c.logger.Warn("facts cache write failed", logging.String("key", key), logging.Err(err))
			}
		}
		return facts, nil
	})

	select {
	case res := <-ch:
		return res.Val.(region.ExternalFacts)
	case <-ctx.Done():
		c.logger.Debug("facts collection abandoned by caller",
			logging.String("key", key), logging.Err(ctx.Err()))
		return region.ExternalFacts{
			DataSource:     []string{},
			BuildingStatus: region.FactsStatusRequestFailed,
		}
	}
}

func (c *Collector) collect(ctx context.Context, rec *region.Region) region.ExternalFacts {
	candidates := DeriveBuildingCandidates(rec)

	var (
		building buildingOutcome
		trade    *region.TradeFacts
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		trade = c.gateway.FetchTradeFacts(gctx, rec.LawdCode, c.tradeMonths)
		return nil
	})
	g.Go(func() error {
		building = c.collectBuilding(gctx, candidates)
		return nil
	})
	_ = g.Wait()

	facts := region.ExternalFacts{
		Building:         building.facts,
		Trade:            trade,
		DataSource:       []string{},
		BuildingStatus:   building.reason,
		BuildingAttempts: building.attempts,
	}
	if building.facts != nil {
		facts.DataSource = append(facts.DataSource, building.facts.Source)
		facts.BuildingStatus = region.FactsStatusOK
	}
	if trade != nil {
		facts.DataSource = append(facts.DataSource, trade.Source)
	}

	if c.recorder != nil {
		c.recorder.ObserveFactsCollection(string(facts.BuildingStatus), facts.BuildingAttempts)
	}
	c.logger.Debug("external facts collected",
		logging.String("region_code", rec.Code),
		logging.String("building_status", string(facts.BuildingStatus)),
		logging.Int("building_attempts", facts.BuildingAttempts),
		logging.Bool("trade_facts", trade != nil))
	return facts
}

func (c *Collector) cacheKey(rec *region.Region) string {
	return "facts:" + region.CodeToken(rec.Code) + ":" + c.now().Format("200601")
}

// cacheable skips outcomes that a retry could improve.
func cacheable(f region.ExternalFacts) bool {
	switch f.BuildingStatus {
	case region.FactsStatusOK, region.FactsStatusNoData, region.FactsStatusMissingLookup:
		return true
	default:
		return false
	}
}

func (c *Collector) observeCache(result string) {
	if c.recorder != nil {
		c.recorder.ObserveFactsCache(result)
	}
}

//Personal.AI order the ending
