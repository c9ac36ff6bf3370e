package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/fleetops/fleet-console/internal/jobs"
	"github.com/fleetops/fleet-console/internal/lov"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const (
	defaultWarmupParallelism = 4
	defaultWarmupTimeout     = 20 * time.Second
)

// ListLoader loads every list of an organisation, filling the cache on the way.
type ListLoader interface {
	ListAll(ctx context.Context, orgID string) ([]lov.ListRecord, error)
}

// LOVWarmupJob pre-populates the list of values cache per organisation.
type LOVWarmupJob struct {
	Lists       ListLoader
	DefaultOrgs []string
	Parallelism int
	Timeout     time.Duration
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
}

// NewLOVWarmupJob wires dependencies for the warmup handler.
func NewLOVWarmupJob(lists ListLoader, defaultOrgs []string, logger *slog.Logger, metrics *jobmetrics.Metrics) *LOVWarmupJob {
	return &LOVWarmupJob{
		Lists:       lists,
		DefaultOrgs: normaliseOrgs(defaultOrgs),
		Logger:      logger,
		Metrics:     metrics,
	}
}

// Handle processes TaskLOVCacheWarmup tasks.
func (j *LOVWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Lists == nil {
		return errors.New("lov warmup: handler not configured")
	}
	var payload LOVCacheWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("lov warmup: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	return j.Run(ctx, payload.OrgIDs...)
}

// Run warms the given organisations, or the defaults when none are given.
// Every organisation is attempted; failures are joined into the result.
func (j *LOVWarmupJob) Run(ctx context.Context, orgIDs ...string) (resultErr error) {
	tracker := j.metrics().Track(TaskLOVCacheWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	orgs := normaliseOrgs(orgIDs)
	if len(orgs) == 0 {
		orgs = j.DefaultOrgs
	}
	logger := j.logger()
	if len(orgs) == 0 {
		logger.Info("no organisations configured for warmup")
		return nil
	}

	start := time.Now()
	logger.Info("starting lov warmup", slog.Int("orgs", len(orgs)))

	var (
		mu   sync.Mutex
		errs []error
	)
	g := new(errgroup.Group)
	g.SetLimit(j.parallelism())
	for _, orgID := range orgs {
		g.Go(func() error {
			lists, err := j.warmOrg(ctx, orgID)
			if err != nil {
				logger.Error("warm organisation", slog.String("org_id", orgID), slog.Any("error", err))
				mu.Lock()
				errs = append(errs, fmt.Errorf("org %s: %w", orgID, err))
				mu.Unlock()
				return nil
			}
			j.metrics().AddWarmed(orgID, lists)
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	logger.Info("completed lov warmup", slog.Int("orgs", len(orgs)), slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *LOVWarmupJob) warmOrg(ctx context.Context, orgID string) (int, error) {
	orgCtx, cancel := context.WithTimeout(ctx, j.timeout())
	defer cancel()
	records, err := j.Lists.ListAll(orgCtx, orgID)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (j *LOVWarmupJob) parallelism() int {
	if j.Parallelism > 0 {
		return j.Parallelism
	}
	return defaultWarmupParallelism
}

func (j *LOVWarmupJob) timeout() time.Duration {
	if j.Timeout > 0 {
		return j.Timeout
	}
	return defaultWarmupTimeout
}

func (j *LOVWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLOVCacheWarmup))
	}
	return slog.Default().With(slog.String("job", TaskLOVCacheWarmup))
}

func (j *LOVWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
