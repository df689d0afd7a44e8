package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	nrerrs "github.com/mchasew/newsroom/internal/errors"
	"github.com/mchasew/newsroom/internal/newsroom"
	"github.com/mchasew/newsroom/internal/serverutil"
)

type ValidationLogResp struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	OK        bool      `json:"ok"`
	Reason    string    `json:"reason"`
	CheckedAt time.Time `json:"checked_at"`
	CheckedBy string    `json:"checked_by"`
}

func apiValidationLog(log newsroom.SourceValidationLog) ValidationLogResp {
	var reason string
	if log.Reason != nil {
		reason = *log.Reason
	}

	return ValidationLogResp{
		ID:        log.ID,
		PostID:    log.PostID,
		OK:        log.OK,
		Reason:    reason,
		CheckedAt: log.CheckedAt,
		CheckedBy: log.CheckedBy,
	}
}

// checkSource runs the validator against the post's source and appends the
// outcome to the post's audit trail, attributed to the operator.
func (s Server) checkSource(r *http.Request, post newsroom.Post) (newsroom.SourceValidationLog, error) {
	ctx := r.Context()
	ok, reason := s.validator.Validate(ctx, *post.SourceURL)

	log := newsroom.SourceValidationLog{
		PostID:    post.ID,
		OK:        ok,
		CheckedAt: time.Now(),
		CheckedBy: session(r, s.secureCookie).OperatorID,
	}
	if !ok {
		log.Reason = &reason
	}
	if err := s.repo.InsertValidationLog(ctx, log); err != nil {
		return newsroom.SourceValidationLog{}, err
	}

	return log, nil
}

func (s Server) postRevalidate(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx    = r.Context()
		postID = mux.Vars(r)["postID"]
	)

	post, err := s.repo.Post(ctx, postID)
	if errors.Is(err, newsroom.ErrNotFound) {
		return nrerrs.E("post not found", http.StatusNotFound)
	}
	if err != nil {
		return err
	}
	if post.SourceURL == nil {
		return nrerrs.E("post has no source url", http.StatusUnprocessableEntity)
	}

	log, err := s.checkSource(r, post)
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, apiValidationLog(log))
}

type ForcePublishResp struct {
	PostID    string             `json:"post_id"`
	Published bool               `json:"published"`
	Check     *ValidationLogResp `json:"check,omitempty"`
}

// Force-publish flips the post live regardless of what the source check
// says. The check still runs and is logged so the override leaves a trace.
func (s Server) postForcePublish(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx    = r.Context()
		postID = mux.Vars(r)["postID"]
	)

	post, err := s.repo.Post(ctx, postID)
	if errors.Is(err, newsroom.ErrNotFound) {
		return nrerrs.E("post not found", http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	resp := ForcePublishResp{
		PostID:    post.ID,
		Published: true,
	}
	if post.SourceURL != nil {
		log, err := s.checkSource(r, post)
		if err != nil {
			return err
		}
		check := apiValidationLog(log)
		resp.Check = &check
	}

	if err := s.repo.SetPostPublished(ctx, post.ID, true); err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, resp)
}

type ValidationLogListResp struct {
	Logs []ValidationLogResp `json:"logs"`
}

func (s Server) getValidationLogs(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx    = r.Context()
		postID = mux.Vars(r)["postID"]
	)

	if _, err := s.repo.Post(ctx, postID); errors.Is(err, newsroom.ErrNotFound) {
		return nrerrs.E("post not found", http.StatusNotFound)
	} else if err != nil {
		return err
	}

	logs, err := s.repo.ValidationLogs(ctx, postID)
	if err != nil {
		return err
	}

	resp := ValidationLogListResp{
		Logs: []ValidationLogResp{},
	}
	for _, log := range logs {
		resp.Logs = append(resp.Logs, apiValidationLog(log))
	}

	return serverutil.WriteJSON(w, http.StatusOK, resp)
}
