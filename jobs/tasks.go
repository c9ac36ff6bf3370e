package jobs

import (
	"encoding/json"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLOVCacheWarmup reloads the list of values cache for organisations.
	TaskLOVCacheWarmup = "lov:cache_warmup"
)

// LOVCacheWarmupPayload names the organisations to warm. An empty list means
// the worker's configured defaults.
type LOVCacheWarmupPayload struct {
	OrgIDs []string `json:"org_ids"`
}

// NewLOVCacheWarmupTask constructs the warmup task.
func NewLOVCacheWarmupTask(orgIDs ...string) (*asynq.Task, error) {
	payload := LOVCacheWarmupPayload{OrgIDs: normaliseOrgs(orgIDs)}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLOVCacheWarmup, data), nil
}

func normaliseOrgs(orgIDs []string) []string {
	out := make([]string, 0, len(orgIDs))
	seen := make(map[string]struct{}, len(orgIDs))
	for _, id := range orgIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
