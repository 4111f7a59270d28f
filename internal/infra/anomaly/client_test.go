package anomaly

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/detect-anomaly", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"anomaly_score": 10.46, "threshold": 11.5, "is_anomaly": false}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	res, err := c.Detect(context.Background(), "Failed password for admin")
	require.NoError(t, err)
	assert.InDelta(t, 10.46, res.Score, 0.001)
	assert.InDelta(t, 11.5, res.Threshold, 0.001)
	assert.False(t, res.IsAnomaly)
	assert.InDelta(t, 90.9, res.Confidence, 0.1)
}

func TestDetect_DerivesIsAnomalyWhenOmitted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"anomaly_score": 15.0, "threshold": 11.5}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	res, err := c.Detect(context.Background(), "log")
	require.NoError(t, err)
	assert.True(t, res.IsAnomaly, "is_anomaly derived as score > threshold")
	assert.Equal(t, 100.0, res.Confidence, "confidence capped at 100")
}

func TestDetect_DefaultThreshold(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"anomaly_score": 3.0}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	res, err := c.Detect(context.Background(), "log")
	require.NoError(t, err)
	assert.InDelta(t, defaultThreshold, res.Threshold, 0.001)
	assert.False(t, res.IsAnomaly)
}

func TestDetect_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	_, err := c.Detect(context.Background(), "log")
	assert.Error(t, err)
}

func TestDetect_Unreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := c.Detect(context.Background(), "log")
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	assert.NoError(t, c.Check(context.Background()))
}
