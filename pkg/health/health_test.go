package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveEndpoint_Healthy(t *testing.T) {
	h := New()
	h.AddLivenessCheck("noop", time.Second, func(_ context.Context) error { return nil })

	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReadyEndpoint_NotReadyUntilSet(t *testing.T) {
	h := New()

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	h.SetReady(true)

	w = httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadyEndpoint_DrainsOnUnset(t *testing.T) {
	h := New()
	h.SetReady(true)
	require.True(t, h.IsReady())

	h.SetReady(false)
	assert.False(t, h.IsReady())

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCheck_FlipsAfterConsecutiveFailures(t *testing.T) {
	failing := newCheck("db", time.Second, func(_ context.Context) error {
		return errors.New("connection refused")
	})

	ctx := context.Background()
	for i := range failureThreshold - 1 {
		failing.run(ctx)
		assert.True(t, failing.healthy.Load(), "check must stay healthy after %d failures", i+1)
	}

	failing.run(ctx)
	assert.False(t, failing.healthy.Load(), "check must flip after %d consecutive failures", failureThreshold)
}

func TestCheck_RecoversOnSuccess(t *testing.T) {
	var fail bool
	c := newCheck("db", time.Second, func(_ context.Context) error {
		if fail {
			return errors.New("down")
		}
		return nil
	})

	ctx := context.Background()
	fail = true
	for range failureThreshold {
		c.run(ctx)
	}
	require.False(t, c.healthy.Load())

	fail = false
	c.run(ctx)
	assert.True(t, c.healthy.Load(), "one success must restore health")
}

func TestIsReady_FailedCheckBlocksReadiness(t *testing.T) {
	h := New()
	h.AddReadinessCheck("db", time.Second, func(_ context.Context) error {
		return errors.New("down")
	})
	h.SetReady(true)

	// Drive the check to unhealthy directly instead of waiting for the
	// background ticker.
	for range failureThreshold {
		h.readiness[0].run(context.Background())
	}

	assert.False(t, h.IsReady())

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "down")
}

func TestStartStop(t *testing.T) {
	h := New()
	probed := make(chan struct{}, 1)
	h.AddLivenessCheck("probe", time.Second, func(_ context.Context) error {
		select {
		case probed <- struct{}{}:
		default:
		}
		return nil
	})

	h.Start(context.Background(), 10*time.Millisecond)
	defer h.Stop()

	select {
	case <-probed:
	case <-time.After(time.Second):
		t.Fatal("liveness check never ran")
	}

	h.Stop()
	h.Stop() // repeated Stop is safe
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(1)(context.Background()))
}
