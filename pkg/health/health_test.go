package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysPass(context.Context) error { return nil }

func alwaysFail(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func serveLive(t *testing.T, h *Health) (*httptest.ResponseRecorder, probeReport) {
	t.Helper()
	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	var report probeReport
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	return w, report
}

func serveReady(t *testing.T, h *Health) (*httptest.ResponseRecorder, probeReport) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	var report probeReport
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	return w, report
}

func TestLiveEndpoint_AllPassing(t *testing.T) {
	h := New()
	h.AddLivenessCheck("first", time.Second, alwaysPass)
	h.AddLivenessCheck("second", time.Second, alwaysPass)

	w, report := serveLive(t, h)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "up", report.Status)
	assert.Empty(t, report.Failures)
}

func TestLiveEndpoint_FailurePastThreshold(t *testing.T) {
	h := New()
	h.AddLivenessCheck("db", time.Second, alwaysFail("connection refused"))

	ctx := context.Background()
	p := h.liveness[0]
	for range defaultFailureThreshold {
		p.tick(ctx)
	}

	w, report := serveLive(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "down", report.Status)
	assert.Equal(t, "connection refused", report.Failures["db"])
}

func TestLiveEndpoint_FailureBelowThreshold(t *testing.T) {
	h := New()
	h.AddLivenessCheck("flaky", time.Second, alwaysFail("blip"))

	ctx := context.Background()
	p := h.liveness[0]
	for range defaultFailureThreshold - 1 {
		p.tick(ctx)
	}

	w, _ := serveLive(t, h)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProbeRecovers(t *testing.T) {
	broken := true
	h := New()
	h.AddLivenessCheck("flaky", time.Second, func(context.Context) error {
		if broken {
			return errors.New("down")
		}
		return nil
	})

	ctx := context.Background()
	p := h.liveness[0]
	for range defaultFailureThreshold {
		p.tick(ctx)
	}
	require.False(t, p.passing.Load())

	broken = false
	for range defaultSuccessThreshold {
		p.tick(ctx)
	}
	assert.True(t, p.passing.Load())
}

func TestReadyEndpoint_GateClosed(t *testing.T) {
	h := New()
	h.AddReadinessCheck("db", time.Second, alwaysPass)

	w, report := serveReady(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "down", report.Status)
	assert.Contains(t, report.Failures, "_gate")
}

func TestReadyEndpoint_GateToggles(t *testing.T) {
	h := New()
	h.AddReadinessCheck("db", time.Second, alwaysPass)

	h.SetReady(true)
	w, report := serveReady(t, h)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "up", report.Status)

	h.SetReady(false)
	w, _ = serveReady(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReadyEndpoint_OneProbeFailing(t *testing.T) {
	h := New()
	h.AddReadinessCheck("db", time.Second, alwaysPass)
	h.AddReadinessCheck("cache", time.Second, alwaysFail("cache down"))
	h.SetReady(true)

	ctx := context.Background()
	for range defaultFailureThreshold {
		h.readiness[1].tick(ctx)
	}

	w, report := serveReady(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, report.Failures, "cache")
	assert.NotContains(t, report.Failures, "db")
}

func TestIsReady(t *testing.T) {
	h := New()
	h.AddReadinessCheck("db", time.Second, alwaysPass)

	assert.False(t, h.IsReady())
	h.SetReady(true)
	assert.True(t, h.IsReady())
	h.SetReady(false)
	assert.False(t, h.IsReady())
}

func TestEndpointsWithoutProbes(t *testing.T) {
	h := New()
	h.SetReady(true)

	w, _ := serveLive(t, h)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = serveReady(t, h)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStopIsIdempotent(t *testing.T) {
	h := New()
	h.AddLivenessCheck("noop", time.Second, alwaysPass)
	h.Start(context.Background(), 50*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	h.Stop()
	h.Stop()
}

func TestConcurrentProbeAccess(t *testing.T) {
	h := New()
	h.AddLivenessCheck("a", time.Second, alwaysFail("err"))
	h.AddReadinessCheck("b", time.Second, alwaysPass)
	h.SetReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Start(ctx, 10*time.Millisecond)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				h.IsReady()
				h.LiveEndpoint(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/livez", nil))
				h.ReadyEndpoint(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/readyz", nil))
			}
		}()
	}
	wg.Wait()
	h.Stop()
}

func TestGoroutineCountCheck(t *testing.T) {
	require.NoError(t, GoroutineCountCheck(1<<20)(context.Background()))

	err := GoroutineCountCheck(0)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}

func TestGCMaxPauseCheck(t *testing.T) {
	assert.NoError(t, GCMaxPauseCheck(time.Hour)(context.Background()))
}
