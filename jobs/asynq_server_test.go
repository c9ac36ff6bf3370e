package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (r *recordingEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	r.tasks = append(r.tasks, task)
	r.opts = append(r.opts, opts)
	if r.err != nil {
		return nil, r.err
	}
	return &asynq.TaskInfo{Type: task.Type(), Queue: QueueDefault}, nil
}

func (r *recordingEnqueuer) Close() error { return nil }

func TestClientEnqueueLOVWarmup(t *testing.T) {
	rec := &recordingEnqueuer{}
	client := &Client{client: rec, uniqueFor: 0}

	require.NoError(t, client.EnqueueLOVWarmup(context.Background(), "42"))

	require.Len(t, rec.tasks, 1)
	assert.Equal(t, TaskLOVCacheWarmup, rec.tasks[0].Type())
	assert.JSONEq(t, `{"org_ids":["42"]}`, string(rec.tasks[0].Payload()))
	assert.Len(t, rec.opts[0], 2)
}

func TestClientEnqueueDuplicateIsNotAnError(t *testing.T) {
	rec := &recordingEnqueuer{err: asynq.ErrDuplicateTask}
	client := &Client{client: rec, uniqueFor: 0}

	assert.NoError(t, client.EnqueueLOVWarmup(context.Background(), "42"))
}

func TestClientEnqueueFailure(t *testing.T) {
	boom := errors.New("redis down")
	client := &Client{client: &recordingEnqueuer{err: boom}}

	assert.ErrorIs(t, client.EnqueueLOVWarmup(context.Background(), "42"), boom)

	var nilClient *Client
	assert.Error(t, nilClient.EnqueueLOVWarmup(context.Background(), "42"))
	assert.NoError(t, nilClient.Close())
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func serveHealth(inspector QueueInspector) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(inspector, nil).MountRoutes)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	return res
}

func TestHealthReportsQueueState(t *testing.T) {
	res := serveHealth(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3, Active: 1, Retry: 2}})

	require.Equal(t, http.StatusOK, res.Code)
	var body QueueHealth
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, QueueHealth{Queue: QueueDefault, Pending: 3, Active: 1, Retry: 2}, body)
}

func TestHealthWithoutInspector(t *testing.T) {
	res := serveHealth(nil)

	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"scheduled":0,"retry":0,"archived":0,"paused":false}`, res.Body.String())
}

func TestHealthInspectorFailure(t *testing.T) {
	res := serveHealth(stubInspector{err: errors.New("redis down")})

	assert.Equal(t, http.StatusServiceUnavailable, res.Code)
}

func TestNewWorkerRequiresHandlers(t *testing.T) {
	_, err := NewWorker(WorkerConfig{})
	assert.Error(t, err)
}
