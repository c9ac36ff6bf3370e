package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet-console/jobs"
)

type stubEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (s *stubEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type(), Queue: jobs.QueueDefault}, nil
}

func (s *stubEnqueuer) Close() error { return nil }

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func (s stubInspector) ListScheduledTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return []*asynq.TaskInfo{{ID: "s1", Queue: queue}}, s.err
}

func (s stubInspector) Close() error { return nil }

func TestTriggerCommandEnqueuesWarmup(t *testing.T) {
	enq := &stubEnqueuer{}
	jc := &JobsCLI{client: enq}
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	code := jc.TriggerCommand(context.Background(), TriggerOptions{
		Job:    jobs.TaskLOVCacheWarmup,
		OrgIDs: []string{"42", "7"},
		Stdout: stdout,
		Stderr: stderr,
	})

	require.Zero(t, code)
	require.Empty(t, stderr.String())
	require.Contains(t, stdout.String(), "enqueued lov:cache_warmup id=task-1")
	require.Len(t, enq.tasks, 1)
	require.JSONEq(t, `{"org_ids":["42","7"]}`, string(enq.tasks[0].Payload()))
}

func TestTriggerCommandRejectsUnknownJob(t *testing.T) {
	jc := &JobsCLI{client: &stubEnqueuer{}}
	stderr := new(bytes.Buffer)

	code := jc.TriggerCommand(context.Background(), TriggerOptions{Job: "mail:send", Stdout: new(bytes.Buffer), Stderr: stderr})

	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "unsupported job mail:send")
}

func TestTriggerCommandEnqueueFailure(t *testing.T) {
	jc := &JobsCLI{client: &stubEnqueuer{err: errors.New("redis down")}}
	stderr := new(bytes.Buffer)

	code := jc.TriggerCommand(context.Background(), TriggerOptions{Job: jobs.TaskLOVCacheWarmup, Stdout: new(bytes.Buffer), Stderr: stderr})

	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "redis down")
}

func TestStatsCommandJSON(t *testing.T) {
	jc := &JobsCLI{inspector: stubInspector{info: &asynq.QueueInfo{Queue: jobs.QueueDefault, Pending: 4, Retry: 1}}}
	stdout := new(bytes.Buffer)

	code := jc.StatsCommand(context.Background(), StatsOptions{JSONOutput: true, Stdout: stdout, Stderr: new(bytes.Buffer)})

	require.Zero(t, code)
	var stats QueueStats
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &stats))
	require.Equal(t, QueueStats{Queue: jobs.QueueDefault, Pending: 4, Retry: 1}, stats)
}

func TestStatsCommandHuman(t *testing.T) {
	jc := &JobsCLI{inspector: stubInspector{info: &asynq.QueueInfo{Pending: 2}}}
	stdout := new(bytes.Buffer)

	code := jc.StatsCommand(context.Background(), StatsOptions{Stdout: stdout, Stderr: new(bytes.Buffer)})

	require.Zero(t, code)
	require.Equal(t, "queue default: pending=2 active=0 scheduled=0 retry=0 archived=0\n", stdout.String())
}

func TestStatsCommandInspectorFailure(t *testing.T) {
	jc := &JobsCLI{inspector: stubInspector{err: errors.New("boom")}}
	stderr := new(bytes.Buffer)

	code := jc.StatsCommand(context.Background(), StatsOptions{Stdout: new(bytes.Buffer), Stderr: stderr})

	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "jobs stats: boom")
}

func TestListScheduledDefaultsSize(t *testing.T) {
	jc := &JobsCLI{inspector: stubInspector{}}

	tasks, err := jc.ListScheduled(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, tasks, 1)

	_, err = (&JobsCLI{}).ListScheduled(context.Background(), 5)
	require.Error(t, err)
}
