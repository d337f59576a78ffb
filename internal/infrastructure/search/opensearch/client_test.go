package opensearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/urban-dds/internal/config"
	pkgerrors "github.com/turtacn/urban-dds/pkg/errors"
)

func newTestServer(statusCode int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
	}))
}

func newTestConfig(addr string) ClientConfig {
	return ClientConfig{
		Addresses:      []string{addr},
		RequestTimeout: time.Second,
		RetryBackoff:   time.Millisecond,
	}
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, ValidateConfig(ClientConfig{Addresses: []string{"http://localhost:9200"}, RequestTimeout: time.Second}))
	assert.Equal(t, ErrInvalidConfig, ValidateConfig(ClientConfig{RequestTimeout: time.Second}))

	err := ValidateConfig(ClientConfig{Addresses: []string{"http://localhost:9200"}, MaxRetries: -1, RequestTimeout: time.Second})
	assert.Contains(t, err.Error(), "MaxRetries must be >= 0")

	err = ValidateConfig(ClientConfig{Addresses: []string{"http://localhost:9200"}})
	assert.Contains(t, err.Error(), "RequestTimeout must be > 0")
}

func TestClientConfigFrom(t *testing.T) {
	cfg := ClientConfigFrom(config.OpenSearchConfig{
		Addresses:          []string{"https://search:9200"},
		User:               "admin",
		Password:           "secret",
		InsecureSkipVerify: true,
	})
	assert.Equal(t, []string{"https://search:9200"}, cfg.Addresses)
	assert.Equal(t, "admin", cfg.Username)
	assert.True(t, cfg.InsecureSkipVerify)
	assert.NoError(t, ValidateConfig(cfg))
}

func TestNewClient_Success(t *testing.T) {
	srv := newTestServer(http.StatusOK)
	defer srv.Close()

	c, err := NewClient(newTestConfig(srv.URL), nil)
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, c.IsHealthy())
	assert.NotNil(t, c.GetClient())
}

func TestNewClient_PingFails(t *testing.T) {
	srv := newTestServer(http.StatusInternalServerError)
	defer srv.Close()

	_, err := NewClient(newTestConfig(srv.URL), nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeServiceUnavailable))
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(ClientConfig{}, nil)
	assert.Equal(t, ErrInvalidConfig, err)
}

func TestPing_TracksHealth(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c, err := newClient(newTestConfig(srv.URL), nil)
	require.NoError(t, err)

	require.NoError(t, c.Ping(context.Background()))
	assert.True(t, c.IsHealthy())

	status = http.StatusInternalServerError
	assert.Error(t, c.Ping(context.Background()))
	assert.False(t, c.IsHealthy())
}

//Personal.AI order the ending
