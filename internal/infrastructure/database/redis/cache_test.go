package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/urban-dds/internal/domain/region"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/urban-dds/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.cache = NewRedisCache(NewClientFromUniversal(db, nil), logging.NewNopLogger(), WithPrefix("test:"), WithoutJitter())
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func sampleFacts() region.ExternalFacts {
	return region.ExternalFacts{
		Building:         &region.BuildingFacts{AvgCompletionYear: region.Float(1991), SampleSize: 4, Source: region.BuildingFactsSource},
		DataSource:       []string{region.BuildingFactsSource},
		BuildingStatus:   region.FactsStatusOK,
		BuildingAttempts: 2,
	}
}

func (s *CacheTestSuite) TestGet_Hit() {
	val := sampleFacts()
	raw, _ := json.Marshal(val)
	s.mock.ExpectGet("test:facts:mapo-gu:202603").SetVal(string(raw))

	var dest region.ExternalFacts
	err := s.cache.Get(context.Background(), "facts:mapo-gu:202603", &dest)
	s.Require().NoError(err)
	s.Equal(val, dest)
}

func (s *CacheTestSuite) TestGet_Miss() {
	s.mock.ExpectGet("test:k").RedisNil()

	var dest region.ExternalFacts
	err := s.cache.Get(context.Background(), "k", &dest)
	s.Equal(ErrCacheMiss, err)
	s.True(pkgerrors.IsNotFound(err))
}

func (s *CacheTestSuite) TestGet_NullMarker() {
	s.mock.ExpectGet("test:k").SetVal(nullMarker)

	var dest region.ExternalFacts
	s.Equal(ErrCacheMiss, s.cache.Get(context.Background(), "k", &dest))
}

func (s *CacheTestSuite) TestGet_BackendError() {
	s.mock.ExpectGet("test:k").SetErr(stderrors.New("connection reset"))

	var dest region.ExternalFacts
	err := s.cache.Get(context.Background(), "k", &dest)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestGet_UndecodableValue() {
	s.mock.ExpectGet("test:k").SetVal("{not json")

	var dest region.ExternalFacts
	err := s.cache.Get(context.Background(), "k", &dest)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestSet_ExactTTL() {
	val := sampleFacts()
	raw, _ := json.Marshal(val)
	s.mock.ExpectSet("test:k", raw, time.Hour).SetVal("OK")

	s.NoError(s.cache.Set(context.Background(), "k", val, time.Hour))
}

func (s *CacheTestSuite) TestSet_Error() {
	raw, _ := json.Marshal("v")
	s.mock.ExpectSet("test:k", raw, 6*time.Hour).SetErr(stderrors.New("readonly"))

	err := s.cache.Set(context.Background(), "k", "v", 0)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestSet_Unserializable() {
	err := s.cache.Set(context.Background(), "k", make(chan int), time.Minute)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:a", "test:b").SetVal(2)
	s.NoError(s.cache.Delete(context.Background(), "a", "b"))
	s.NoError(s.cache.Delete(context.Background()))
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func TestCache_DeleteByPrefixAndJitter(t *testing.T) {
	mr, client := newMiniClient(t)
	cache := NewRedisCache(client, nil)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "facts:mapo-gu:202603", sampleFacts(), time.Hour))
	require.NoError(t, cache.Set(ctx, "facts:jongno-gu:202603", sampleFacts(), time.Hour))
	require.NoError(t, cache.Set(ctx, "other", 1, time.Hour))

	ttl := mr.TTL("urbandds:facts:mapo-gu:202603")
	assert.GreaterOrEqual(t, ttl, 54*time.Minute)
	assert.LessOrEqual(t, ttl, 66*time.Minute)

	n, err := cache.DeleteByPrefix(ctx, "facts:")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.True(t, mr.Exists("urbandds:other"))

	var dest region.ExternalFacts
	assert.Equal(t, ErrCacheMiss, cache.Get(ctx, "facts:mapo-gu:202603", &dest))
	assert.NoError(t, cache.Ping(ctx))
}

//Personal.AI order the ending
