package lov

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCollaborator struct {
	mu       sync.Mutex
	lists    []ListRecord
	listErr  error
	record   ListRecord
	getErr   error
	result   SaveResult
	saveErr  error
	payloads []SavePayload
	listHits int
}

func (s *stubCollaborator) ListAll(ctx context.Context, orgID string) ([]ListRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listHits++
	return s.lists, s.listErr
}

func (s *stubCollaborator) GetByID(ctx context.Context, id string) (ListRecord, error) {
	return s.record, s.getErr
}

func (s *stubCollaborator) CreateOrUpdate(ctx context.Context, payload SavePayload) (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	return s.result, s.saveErr
}

type recordingWarmup struct {
	orgs []string
	err  error
}

func (r *recordingWarmup) EnqueueLOVWarmup(ctx context.Context, orgIDs ...string) error {
	r.orgs = append(r.orgs, orgIDs...)
	return r.err
}

func newTestService(api Collaborator, cfg ServiceConfig) *Service {
	if cfg.RowIDs == nil {
		cfg.RowIDs = &SequenceRowIDs{}
	}
	return NewService(api, cfg)
}

func TestServiceBrowse(t *testing.T) {
	api := &stubCollaborator{lists: sampleRecords(12, 7)}
	svc := newTestService(api, ServiceConfig{})

	page := svc.Browse(context.Background(), testUser, FilterSpec{Status: StatusActive}, 1)

	assert.False(t, page.Failed)
	assert.Len(t, page.PageItems, 7)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.Pagination.Page)
}

func TestServiceBrowseResetsPage(t *testing.T) {
	api := &stubCollaborator{lists: sampleRecords(25, 25)}
	svc := newTestService(api, ServiceConfig{})

	page := svc.Browse(context.Background(), testUser, FilterSpec{Search: "code2"}, 3)

	assert.Equal(t, 1, page.Pagination.Page)
	assert.Len(t, page.PageItems, 6)
}

func TestServiceBrowseFailureDegrades(t *testing.T) {
	api := &stubCollaborator{listErr: errors.New("connection refused")}
	svc := newTestService(api, ServiceConfig{})

	page := svc.Browse(context.Background(), testUser, FilterSpec{}, 1)

	assert.True(t, page.Failed)
	assert.NotNil(t, page.PageItems)
	assert.Empty(t, page.PageItems)
	assert.Zero(t, page.TotalCount)
}

func TestServiceListAllUsesCache(t *testing.T) {
	_, client := newTestRedis(t)
	api := &stubCollaborator{lists: sampleRecords(3, 3)}
	svc := newTestService(api, ServiceConfig{Cache: NewListCache(client, time.Minute, nil)})

	_, err := svc.ListAll(context.Background(), "42")
	require.NoError(t, err)
	records, err := svc.ListAll(context.Background(), "42")
	require.NoError(t, err)

	assert.Len(t, records, 3)
	assert.Equal(t, 1, api.listHits)
}

func TestServiceListAllWrapsFailure(t *testing.T) {
	svc := newTestService(&stubCollaborator{listErr: errors.New("boom")}, ServiceConfig{})

	records, err := svc.ListAll(context.Background(), "42")

	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Equal(t, []ListRecord{}, records)
}

func TestServiceLoadForEdit(t *testing.T) {
	api := &stubCollaborator{record: ListRecord{ID: "17", ListCode: "FUEL", Values: []ValueEntry{{ID: "1", ValueCode: "D"}}}}
	svc := newTestService(api, ServiceConfig{})

	form, err := svc.LoadForEdit(context.Background(), testUser, "17")

	require.NoError(t, err)
	assert.Equal(t, ModeEdit, form.Mode())
	assert.NotEmpty(t, form.Token)
	assert.Equal(t, "FUEL", form.Header.ListCode)
}

func TestServiceLoadForEditFailure(t *testing.T) {
	svc := newTestService(&stubCollaborator{getErr: ErrNoRecord}, ServiceConfig{})

	form, err := svc.LoadForEdit(context.Background(), testUser, "17")

	assert.Nil(t, form)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestServiceSaveValidationSkipsAPI(t *testing.T) {
	api := &stubCollaborator{result: SaveResult{Status: true}}
	svc := newTestService(api, ServiceConfig{})
	form := svc.NewForm(testUser)

	_, err := svc.Save(context.Background(), form)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Len(t, verrs, 4)
	assert.Empty(t, api.payloads)
	assert.NotEmpty(t, form.Errors)
}

func TestServiceSaveSuccess(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewListCache(client, time.Minute, nil)
	api := &stubCollaborator{result: SaveResult{Status: true, Message: "<b>Saved</b>"}}
	warmup := &recordingWarmup{}
	svc := newTestService(api, ServiceConfig{Cache: cache, Warmup: warmup, Guard: NewSaveGuard(client, time.Minute)})
	form := filledForm(t)
	form.Token = "tok"

	outcome, err := svc.Save(context.Background(), form)

	require.NoError(t, err)
	assert.Equal(t, ModeCreate, outcome.Mode)
	assert.Equal(t, "Saved", outcome.Message)
	require.Len(t, api.payloads, 1)
	assert.Equal(t, []int{1, 2}, []int{api.payloads[0].Values[0].Sno, api.payloads[0].Values[1].Sno})
	assert.Equal(t, []string{"42"}, warmup.orgs)
	ver, err := cache.Version(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, int64(1), ver)
}

func TestServiceSaveRejected(t *testing.T) {
	_, client := newTestRedis(t)
	api := &stubCollaborator{result: SaveResult{Status: false, Message: "Duplicate <script>x</script>code"}}
	warmup := &recordingWarmup{}
	svc := newTestService(api, ServiceConfig{Warmup: warmup, Guard: NewSaveGuard(client, time.Minute)})
	form := filledForm(t)
	form.Token = "tok"
	before := *form

	_, err := svc.Save(context.Background(), form)

	var saveErr *SaveError
	require.ErrorAs(t, err, &saveErr)
	assert.ErrorIs(t, err, ErrSaveRejected)
	assert.Equal(t, "Duplicate code", saveErr.Message)
	assert.Equal(t, before.Header, form.Header)
	assert.Equal(t, before.Rows, form.Rows)
	assert.Empty(t, warmup.orgs)

	// The guard is released so the user can retry the same form.
	api.result = SaveResult{Status: true}
	_, err = svc.Save(context.Background(), form)
	assert.NoError(t, err)
}

func TestServiceSaveTransportFailure(t *testing.T) {
	api := &stubCollaborator{saveErr: &APIError{Status: 503, Message: "maintenance"}}
	svc := newTestService(api, ServiceConfig{})

	_, err := svc.Save(context.Background(), filledForm(t))

	assert.ErrorIs(t, err, ErrSaveFailed)
	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.EqualError(t, err, "maintenance")
}

func TestServiceSaveInFlight(t *testing.T) {
	_, client := newTestRedis(t)
	guard := NewSaveGuard(client, time.Minute)
	api := &stubCollaborator{result: SaveResult{Status: true}}
	svc := newTestService(api, ServiceConfig{Guard: guard})
	form := filledForm(t)
	form.Token = "tok"
	_, err := guard.Acquire(context.Background(), "tok")
	require.NoError(t, err)

	_, err = svc.Save(context.Background(), form)

	assert.ErrorIs(t, err, ErrSaveInFlight)
	assert.Empty(t, api.payloads)
}

func TestServiceSaveWarmupFailureIsNotFatal(t *testing.T) {
	api := &stubCollaborator{result: SaveResult{Status: true}}
	svc := newTestService(api, ServiceConfig{Warmup: &recordingWarmup{err: errors.New("queue down")}})

	_, err := svc.Save(context.Background(), filledForm(t))

	assert.NoError(t, err)
}

func TestServiceRestoreForm(t *testing.T) {
	svc := newTestService(&stubCollaborator{}, ServiceConfig{})

	form := svc.RestoreForm(testUser, "", "17", "", "", []string{"a"})

	assert.NotEmpty(t, form.Token)
	assert.Equal(t, "17", form.Header.ID)
	assert.Equal(t, "dispatcher", form.Header.CreatedBy)
	assert.Equal(t, testUser.OrgID, form.Header.OrgID)
}
