package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/stream/internal/core"
	"github.com/edvin/stream/internal/model"
)

func editorUser() *model.User {
	return &model.User{ID: "user-1", Login: "editor", Roles: []string{"editor"}}
}

func newFeedHandler(keys *mockKeys, records *mockRecords) *Feed {
	cfg := testConfig()
	return NewFeed(keys, core.NewAccessPolicy(cfg.RoleAccess), records, cfg)
}

func TestFeedServe_UnresolvableKeyDenied(t *testing.T) {
	keys := &mockKeys{}
	keys.On("FindUserByKey", mock.Anything, "bad-key").Return(nil, core.ErrNoUser)
	h := newFeedHandler(keys, &mockRecords{})

	rec := httptest.NewRecorder()
	h.Serve(rec, newRequest(http.MethodGet, "/feed/stream/?key=bad-key", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access Denied")
}

func TestFeedServe_MissingKeyDenied(t *testing.T) {
	keys := &mockKeys{}
	keys.On("FindUserByKey", mock.Anything, "").Return(nil, core.ErrNoUser)
	h := newFeedHandler(keys, &mockRecords{})

	rec := httptest.NewRecorder()
	h.Serve(rec, newRequest(http.MethodGet, "/feed/stream/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFeedServe_UnauthorizedRoleDenied(t *testing.T) {
	keys := &mockKeys{}
	keys.On("FindUserByKey", mock.Anything, "valid-key").
		Return(&model.User{ID: "user-2", Roles: []string{"subscriber"}}, nil)
	records := &mockRecords{}
	h := newFeedHandler(keys, records)

	rec := httptest.NewRecorder()
	h.Serve(rec, newRequest(http.MethodGet, "/feed/stream/?key=valid-key", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	records.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
}

// Denial responses must not reveal whether the key resolved at all.
func TestFeedServe_DenialIsUniform(t *testing.T) {
	badKeys := &mockKeys{}
	badKeys.On("FindUserByKey", mock.Anything, mock.Anything).Return(nil, core.ErrNoUser)

	deniedKeys := &mockKeys{}
	deniedKeys.On("FindUserByKey", mock.Anything, mock.Anything).
		Return(&model.User{ID: "user-2", Roles: []string{"subscriber"}}, nil)

	recBad := httptest.NewRecorder()
	newFeedHandler(badKeys, &mockRecords{}).Serve(recBad, newRequest(http.MethodGet, "/feed/stream/?key=nope", nil))

	recDenied := httptest.NewRecorder()
	newFeedHandler(deniedKeys, &mockRecords{}).Serve(recDenied, newRequest(http.MethodGet, "/feed/stream/?key=real-but-denied", nil))

	assert.Equal(t, recBad.Code, recDenied.Code)
	assert.Equal(t, recBad.Body.Bytes(), recDenied.Body.Bytes())
	assert.Equal(t, recBad.Header().Get("Content-Type"), recDenied.Header().Get("Content-Type"))
}

func TestFeedServe_SuperAdminBypassesRoles(t *testing.T) {
	keys := &mockKeys{}
	keys.On("FindUserByKey", mock.Anything, "admin-key").
		Return(&model.User{ID: "user-3", Roles: []string{"subscriber"}, SuperAdmin: true}, nil)
	records := &mockRecords{}
	records.On("Query", mock.Anything, mock.Anything).Return([]model.Record{}, nil)
	h := newFeedHandler(keys, records)

	rec := httptest.NewRecorder()
	h.Serve(rec, newRequest(http.MethodGet, "/feed/stream/?key=admin-key", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFeedServe_FiltersPassThrough(t *testing.T) {
	keys := &mockKeys{}
	keys.On("FindUserByKey", mock.Anything, "valid-key").Return(editorUser(), nil)
	records := &mockRecords{}

	var got core.RecordQueryArgs
	records.On("Query", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			got = args.Get(1).(core.RecordQueryArgs)
		}).
		Return([]model.Record{}, nil)

	h := newFeedHandler(keys, records)
	rec := httptest.NewRecorder()
	h.Serve(rec, newRequest(http.MethodGet, "/feed/stream/?key=valid-key&type=json&records_per_page=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, got.RecordsPerPage)
	assert.Empty(t, got.Search)
	assert.Empty(t, got.Properties)
	assert.Empty(t, got.RecordIn)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Stream Records", body["title"])
}

func TestFeedServe_PropertyFiltersPassThrough(t *testing.T) {
	keys := &mockKeys{}
	keys.On("FindUserByKey", mock.Anything, "valid-key").Return(editorUser(), nil)
	records := &mockRecords{}

	var got core.RecordQueryArgs
	records.On("Query", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			got = args.Get(1).(core.RecordQueryArgs)
		}).
		Return([]model.Record{}, nil)

	h := newFeedHandler(keys, records)
	rec := httptest.NewRecorder()
	target := "/feed/stream/?key=valid-key&connector=posts&action__in=created,updated&ip__not_in=127.0.0.1&search=hello"
	h.Serve(rec, newRequest(http.MethodGet, target, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", got.Search)
	assert.Equal(t, "posts", got.Properties["connector"].Equals)
	assert.Equal(t, []string{"created", "updated"}, got.Properties["action"].In)
	assert.Equal(t, []string{"127.0.0.1"}, got.Properties["ip"].NotIn)
}

func TestFeedServe_DefaultsToRSS(t *testing.T) {
	keys := &mockKeys{}
	keys.On("FindUserByKey", mock.Anything, "valid-key").Return(editorUser(), nil)
	records := &mockRecords{}
	records.On("Query", mock.Anything, mock.Anything).Return([]model.Record{}, nil)
	h := newFeedHandler(keys, records)

	for _, target := range []string{
		"/feed/stream/?key=valid-key",
		"/feed/stream/?key=valid-key&type=rss",
		"/feed/stream/?key=valid-key&type=bogus",
	} {
		rec := httptest.NewRecorder()
		h.Serve(rec, newRequest(http.MethodGet, target, nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/rss+xml; charset=utf-8", rec.Header().Get("Content-Type"))
	}
}

func TestFeedServe_ViewMoreLinkFromNewestRecord(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	keys := &mockKeys{}
	keys.On("FindUserByKey", mock.Anything, "valid-key").Return(editorUser(), nil)
	records := &mockRecords{}
	records.On("Query", mock.Anything, mock.Anything).Return([]model.Record{
		{ID: "rec-9", Summary: "Newest", Created: now},
		{ID: "rec-8", Summary: "Older", Created: now.Add(-time.Hour)},
	}, nil)
	h := newFeedHandler(keys, records)

	rec := httptest.NewRecorder()
	h.Serve(rec, newRequest(http.MethodGet, "/feed/stream/?key=valid-key&type=json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["link"], "record__in=rec-9")
	assert.Equal(t, "2024-03-01T12:00:00Z", body["updated"])
}

func TestFeedServe_QuerierFailure(t *testing.T) {
	keys := &mockKeys{}
	keys.On("FindUserByKey", mock.Anything, "valid-key").Return(editorUser(), nil)
	records := &mockRecords{}
	records.On("Query", mock.Anything, mock.Anything).Return(nil, assert.AnError)
	h := newFeedHandler(keys, records)

	rec := httptest.NewRecorder()
	h.Serve(rec, newRequest(http.MethodGet, "/feed/stream/?key=valid-key", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
