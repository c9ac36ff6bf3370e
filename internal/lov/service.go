package lov

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/fleetops/fleet-console/internal/shared"
)

// WarmupEnqueuer schedules a background refresh of cached lists.
type WarmupEnqueuer interface {
	EnqueueLOVWarmup(ctx context.Context, orgIDs ...string) error
}

// ServiceConfig collects the optional collaborators of Service.
type ServiceConfig struct {
	Cache    *ListCache
	Guard    *SaveGuard
	Warmup   WarmupEnqueuer
	RowIDs   RowIDs
	PageSize int
	Logger   *slog.Logger
}

// Service orchestrates the list view and the master form on top of the
// reference-data API.
type Service struct {
	api      Collaborator
	cache    *ListCache
	guard    *SaveGuard
	warmup   WarmupEnqueuer
	ids      RowIDs
	pageSize int
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(api Collaborator, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	ids := cfg.RowIDs
	if ids == nil {
		ids = UUIDRowIDs{}
	}
	return &Service{
		api:      api,
		cache:    cfg.Cache,
		guard:    cfg.Guard,
		warmup:   cfg.Warmup,
		ids:      ids,
		pageSize: pageSize,
		logger:   logger.With(slog.String("component", "lov")),
	}
}

// ListAll loads every list of the organisation. On failure it returns an
// empty collection together with an error wrapping ErrFetchFailed.
func (s *Service) ListAll(ctx context.Context, orgID string) ([]ListRecord, error) {
	records, err := s.cache.Fetch(ctx, orgID, func(ctx context.Context) ([]ListRecord, error) {
		return s.api.ListAll(ctx, orgID)
	})
	if err != nil {
		s.logger.Warn("list all failed", slog.String("org_id", orgID), slog.Any("error", err))
		return []ListRecord{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if records == nil {
		records = []ListRecord{}
	}
	return records, nil
}

// ListPage is what the list view renders.
type ListPage struct {
	View
	Filter     FilterSpec
	Pagination shared.Pagination
	// Failed is set when the lists could not be loaded.
	Failed bool
}

// Browse fetches the organisation's lists and derives the requested page.
// A page past the end of the filtered set falls back to page 1.
func (s *Service) Browse(ctx context.Context, user shared.User, filter FilterSpec, page int) ListPage {
	records, err := s.ListAll(ctx, user.OrgID)
	view, shown := ResolveView(records, filter, page, s.pageSize)
	return ListPage{
		View:       view,
		Filter:     filter,
		Pagination: shared.NewPagination(shown, s.pageSize, view.TotalCount),
		Failed:     err != nil,
	}
}

// NewForm returns a blank create form for user.
func (s *Service) NewForm(user shared.User) *Form {
	f := NewForm(user, s.ids)
	f.Token = uuid.NewString()
	return f
}

// RestoreForm rebuilds a submitted form. Field values are replayed by the caller.
func (s *Service) RestoreForm(user shared.User, token, id, orgID, createdBy string, rowIDs []string) *Form {
	f := NewForm(user, s.ids)
	f.Restore(id, orgID, createdBy, rowIDs)
	f.Token = strings.TrimSpace(token)
	if f.Token == "" {
		f.Token = uuid.NewString()
	}
	return f
}

// LoadForEdit fetches a list and returns a form holding it. On failure no
// form is returned; callers fall back to a blank one.
func (s *Service) LoadForEdit(ctx context.Context, user shared.User, id string) (*Form, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, ErrNoRecord)
	}
	rec, err := s.api.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("get list failed", slog.String("id", id), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	f := s.NewForm(user)
	f.LoadRecord(rec)
	return f, nil
}

// SaveError describes a save that reached the API but did not succeed.
type SaveError struct {
	Kind    error
	Message string
	Cause   error
}

func (e *SaveError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return fmt.Sprintf("%v: %v", e.Kind, e.Cause)
	}
	return e.Kind.Error()
}

func (e *SaveError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// SaveOutcome reports a successful save.
type SaveOutcome struct {
	Mode    FormMode
	Message string
}

// Save validates the form and sends it to the API. Validation failures
// come back as ValidationErrors without any API call. Rejections and
// transport failures come back as *SaveError and leave the form untouched.
func (s *Service) Save(ctx context.Context, f *Form) (SaveOutcome, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return SaveOutcome{}, errs
	}

	release, err := s.guard.Acquire(ctx, f.Token)
	if err != nil {
		if errors.Is(err, ErrSaveInFlight) {
			return SaveOutcome{}, err
		}
		s.logger.Warn("save guard unavailable", slog.Any("error", err))
	}

	payload := f.BuildSavePayload()
	logger := s.logger.With(slog.String("org_id", payload.OrgID), slog.String("list_code", payload.ListCode))
	res, err := s.api.CreateOrUpdate(ctx, payload)
	if err != nil {
		release(context.WithoutCancel(ctx))
		logger.Error("save list failed", slog.Any("error", err))
		var apiErr *APIError
		msg := ""
		if errors.As(err, &apiErr) {
			msg = sanitizeMessage(apiErr.Message)
		}
		return SaveOutcome{}, &SaveError{Kind: ErrSaveFailed, Message: msg, Cause: err}
	}
	if !res.Status {
		release(context.WithoutCancel(ctx))
		logger.Warn("save list rejected", slog.String("message", res.Message))
		return SaveOutcome{}, &SaveError{Kind: ErrSaveRejected, Message: sanitizeMessage(res.Message)}
	}

	if err := s.cache.Bump(ctx, payload.OrgID); err != nil {
		logger.Warn("bump list cache", slog.Any("error", err))
	}
	if s.warmup != nil {
		if err := s.warmup.EnqueueLOVWarmup(ctx, payload.OrgID); err != nil {
			logger.Warn("enqueue list warmup", slog.Any("error", err))
		}
	}
	logger.Info("list saved", slog.Bool("update", payload.ID != ""))
	return SaveOutcome{Mode: f.Mode(), Message: sanitizeMessage(res.Message)}, nil
}
