package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	jobmetrics "github.com/fleetops/fleet-console/internal/jobs"
	"github.com/fleetops/fleet-console/internal/lov"
)

type stubLoader struct {
	mu       sync.Mutex
	calls    []string
	failFor  map[string]error
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (s *stubLoader) ListAll(ctx context.Context, orgID string) ([]lov.ListRecord, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	s.calls = append(s.calls, orgID)
	s.mu.Unlock()
	if err := s.failFor[orgID]; err != nil {
		return nil, err
	}
	return []lov.ListRecord{{ID: "1", ListCode: "FUEL"}, {ID: "2", ListCode: "TYRE"}}, nil
}

func newWarmupJob(loader ListLoader, defaults ...string) *LOVWarmupJob {
	return NewLOVWarmupJob(loader, defaults, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
}

func TestLOVWarmupUsesPayloadOrgs(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	loader := &stubLoader{}
	job := newWarmupJob(loader, "default-org")
	task, err := NewLOVCacheWarmupTask("42", " 42 ", "7")
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))

	assert.ElementsMatch(t, []string{"42", "7"}, loader.calls)
}

func TestLOVWarmupFallsBackToDefaults(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	loader := &stubLoader{}
	job := newWarmupJob(loader, "1", "2", "", "1")

	require.NoError(t, job.Run(context.Background()))

	assert.ElementsMatch(t, []string{"1", "2"}, loader.calls)
}

func TestLOVWarmupNoOrgs(t *testing.T) {
	loader := &stubLoader{}
	job := newWarmupJob(loader)

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, loader.calls)
}

func TestLOVWarmupAttemptsEveryOrg(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	boom := errors.New("api down")
	loader := &stubLoader{failFor: map[string]error{"2": boom}}
	job := newWarmupJob(loader)

	err := job.Run(context.Background(), "1", "2", "3")

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "org 2")
	assert.ElementsMatch(t, []string{"1", "2", "3"}, loader.calls)
}

func TestLOVWarmupBoundsParallelism(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	loader := &stubLoader{delay: 10 * time.Millisecond}
	job := newWarmupJob(loader)
	job.Parallelism = 2

	require.NoError(t, job.Run(context.Background(), "1", "2", "3", "4", "5", "6"))

	assert.Len(t, loader.calls, 6)
	assert.LessOrEqual(t, loader.peak.Load(), int32(2))
}

func TestLOVWarmupTimesOutSlowOrg(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	loader := &stubLoader{delay: time.Second}
	job := newWarmupJob(loader)
	job.Timeout = 5 * time.Millisecond

	err := job.Run(context.Background(), "1")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLOVWarmupBadPayloadSkipsRetry(t *testing.T) {
	job := newWarmupJob(&stubLoader{})

	err := job.Handle(context.Background(), asynq.NewTask(TaskLOVCacheWarmup, []byte("{")))

	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestLOVWarmupNotConfigured(t *testing.T) {
	var job *LOVWarmupJob
	task, err := NewLOVCacheWarmupTask()
	require.NoError(t, err)

	assert.Error(t, job.Handle(context.Background(), task))
}

func TestNewLOVCacheWarmupTaskPayload(t *testing.T) {
	task, err := NewLOVCacheWarmupTask("", "42", "42")
	require.NoError(t, err)

	assert.Equal(t, TaskLOVCacheWarmup, task.Type())
	var payload LOVCacheWarmupPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, []string{"42"}, payload.OrgIDs)
}
