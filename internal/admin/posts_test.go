package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nrerrs "github.com/mchasew/newsroom/internal/errors"
	"github.com/mchasew/newsroom/internal/newsroom"
)

// Attaches an operator session cookie to the request.
func asOperator(t *testing.T, s Server, req *http.Request, operatorID string) *http.Request {
	t.Helper()

	rec := httptest.NewRecorder()
	setSession(rec, s.secureCookie, false, sessionState{OperatorID: operatorID})
	req.Header.Set("Cookie", rec.Header().Get("Set-Cookie"))
	return req
}

func TestRevalidate_LogsOutcome(t *testing.T) {
	repo := newFakeRepo()
	src := "https://example.com/story"
	post := repo.seedPost(newsroom.Post{Slug: "sourced", SourceURL: &src})
	s, validator, _ := newTestServer(t, repo)
	validator.ok = false
	validator.reason = "Unreachable (status 404)"

	req := mux.SetURLVars(
		httptest.NewRequest(http.MethodPost, "/api/posts/"+post.ID+"/revalidate", nil),
		map[string]string{"postID": post.ID},
	)
	req = asOperator(t, s, req, "maya")
	rec := httptest.NewRecorder()

	require.NoError(t, s.postRevalidate(rec, req))

	var resp ValidationLogResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.OK)
	assert.Equal(t, "Unreachable (status 404)", resp.Reason)
	assert.Equal(t, "maya", resp.CheckedBy)
	assert.Equal(t, []string{src}, validator.urls)

	// And it landed in the audit trail.
	logs, _ := repo.ValidationLogs(req.Context(), post.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, "maya", logs[0].CheckedBy)
}

func TestRevalidate_NoSourceURL(t *testing.T) {
	repo := newFakeRepo()
	post := repo.seedPost(newsroom.Post{Slug: "no-source"})
	s, _, _ := newTestServer(t, repo)

	req := mux.SetURLVars(
		httptest.NewRequest(http.MethodPost, "/api/posts/"+post.ID+"/revalidate", nil),
		map[string]string{"postID": post.ID},
	)
	err := s.postRevalidate(httptest.NewRecorder(), req)
	require.Error(t, err)

	var nrerr *nrerrs.Error
	require.ErrorAs(t, err, &nrerr)
	assert.Equal(t, http.StatusUnprocessableEntity, nrerr.Status)
}

func TestRevalidate_PostNotFound(t *testing.T) {
	s, _, _ := newTestServer(t, newFakeRepo())

	req := mux.SetURLVars(
		httptest.NewRequest(http.MethodPost, "/api/posts/nope/revalidate", nil),
		map[string]string{"postID": "nope"},
	)
	err := s.postRevalidate(httptest.NewRecorder(), req)
	require.Error(t, err)

	var nrerr *nrerrs.Error
	require.ErrorAs(t, err, &nrerr)
	assert.Equal(t, http.StatusNotFound, nrerr.Status)
}

func TestForcePublish_OverridesFailedCheck(t *testing.T) {
	repo := newFakeRepo()
	src := "https://example.com/gone"
	post := repo.seedPost(newsroom.Post{Slug: "pulled", SourceURL: &src, Published: false})
	s, validator, _ := newTestServer(t, repo)
	validator.ok = false
	validator.reason = "Unreachable (status 410)"

	req := mux.SetURLVars(
		httptest.NewRequest(http.MethodPost, "/api/posts/"+post.ID+"/force-publish", nil),
		map[string]string{"postID": post.ID},
	)
	req = asOperator(t, s, req, "maya")
	rec := httptest.NewRecorder()

	require.NoError(t, s.postForcePublish(rec, req))

	var resp ForcePublishResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Published)
	require.NotNil(t, resp.Check)
	assert.False(t, resp.Check.OK)

	// The post went live despite the failed check, and the override is on
	// record.
	got, _ := repo.Post(req.Context(), post.ID)
	assert.True(t, got.Published)
	logs, _ := repo.ValidationLogs(req.Context(), post.ID)
	require.Len(t, logs, 1)
}

func TestForcePublish_NoSourceSkipsCheck(t *testing.T) {
	repo := newFakeRepo()
	post := repo.seedPost(newsroom.Post{Slug: "no-source"})
	s, validator, _ := newTestServer(t, repo)

	req := mux.SetURLVars(
		httptest.NewRequest(http.MethodPost, "/api/posts/"+post.ID+"/force-publish", nil),
		map[string]string{"postID": post.ID},
	)
	rec := httptest.NewRecorder()

	require.NoError(t, s.postForcePublish(rec, req))

	var resp ForcePublishResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Published)
	assert.Nil(t, resp.Check)
	assert.Empty(t, validator.urls)
}

func TestGetValidationLogs(t *testing.T) {
	repo := newFakeRepo()
	post := repo.seedPost(newsroom.Post{Slug: "audited"})
	other := repo.seedPost(newsroom.Post{Slug: "other"})
	require.NoError(t, repo.InsertValidationLog(t.Context(), newsroom.SourceValidationLog{PostID: post.ID, OK: true, CheckedBy: "maya"}))
	require.NoError(t, repo.InsertValidationLog(t.Context(), newsroom.SourceValidationLog{PostID: other.ID, OK: false, CheckedBy: "sam"}))
	s, _, _ := newTestServer(t, repo)

	req := mux.SetURLVars(
		httptest.NewRequest(http.MethodGet, "/api/posts/"+post.ID+"/validation-logs", nil),
		map[string]string{"postID": post.ID},
	)
	rec := httptest.NewRecorder()

	require.NoError(t, s.getValidationLogs(rec, req))

	var resp ValidationLogListResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Logs, 1)
	assert.Equal(t, "maya", resp.Logs[0].CheckedBy)
}
