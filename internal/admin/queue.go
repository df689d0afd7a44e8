package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	nrerrs "github.com/mchasew/newsroom/internal/errors"
	"github.com/mchasew/newsroom/internal/newsroom"
	"github.com/mchasew/newsroom/internal/serverutil"
)

type QueueItemResp struct {
	ID               string     `json:"id"`
	Slug             string     `json:"slug"`
	Title            string     `json:"title"`
	Excerpt          string     `json:"excerpt"`
	Tags             []string   `json:"tags"`
	FeaturedImageURL string     `json:"featured_image_url"`
	SourceURL        string     `json:"source_url"`
	CategoryID       string     `json:"category_id"`
	Topic            string     `json:"topic"`
	AutoPublish      bool       `json:"auto_publish"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	ProcessedAt      *time.Time `json:"processed_at"`
}

func apiQueueItem(item newsroom.QueueItem) QueueItemResp {
	var imageURL, sourceURL, categoryID string
	if item.FeaturedImageURL != nil {
		imageURL = *item.FeaturedImageURL
	}
	if item.SourceURL != nil {
		sourceURL = *item.SourceURL
	}
	if item.CategoryID != nil {
		categoryID = *item.CategoryID
	}

	return QueueItemResp{
		ID:               item.ID,
		Slug:             item.Slug,
		Title:            item.Title,
		Excerpt:          item.Excerpt,
		Tags:             item.Tags,
		FeaturedImageURL: imageURL,
		SourceURL:        sourceURL,
		CategoryID:       categoryID,
		Topic:            item.Topic,
		AutoPublish:      item.AutoPublish,
		Status:           string(item.Status),
		CreatedAt:        item.CreatedAt,
		ProcessedAt:      item.ProcessedAt,
	}
}

type QueueListResp struct {
	Items []QueueItemResp `json:"items"`
}

var knownStatuses = map[newsroom.QueueItemStatus]bool{
	newsroom.QueueStatusQueued:     true,
	newsroom.QueueStatusProcessing: true,
	newsroom.QueueStatusReviewed:   true,
	newsroom.QueueStatusPublished:  true,
	newsroom.QueueStatusFailed:     true,
	newsroom.QueueStatusDeclined:   true,
}

func (s Server) getQueue(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx  = r.Context()
		q    = r.URL.Query()
		args = newsroom.QueueItemsArgs{
			// Pending items are the default view
			Status: newsroom.QueueStatusQueued,
		}
	)
	if status := q.Get("status"); status != "" {
		if !knownStatuses[newsroom.QueueItemStatus(status)] {
			return nrerrs.E("unknown status: "+status, http.StatusBadRequest)
		}
		args.Status = newsroom.QueueItemStatus(status)
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.ParseUint(limit, 10, 64)
		if err != nil {
			return nrerrs.E("limit must be a number", http.StatusBadRequest)
		}
		args.Limit = n
	}

	items, err := s.repo.QueueItems(ctx, args)
	if err != nil {
		return err
	}

	resp := QueueListResp{
		Items: []QueueItemResp{},
	}
	for _, item := range items {
		resp.Items = append(resp.Items, apiQueueItem(item))
	}

	return serverutil.WriteJSON(w, http.StatusOK, resp)
}

type PublishResp struct {
	PostID string `json:"post_id"`
	Slug   string `json:"slug"`
}

func (s Server) postPublishItem(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx = r.Context()
		id  = mux.Vars(r)["queueItemID"]
	)

	post, err := s.publisher.Publish(ctx, id)
	if errors.Is(err, newsroom.ErrNotFound) {
		return nrerrs.E("queue item not found", http.StatusNotFound)
	}
	if errors.Is(err, newsroom.ErrConflict) {
		return nrerrs.E(err, http.StatusConflict)
	}
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, PublishResp{
		PostID: post.ID,
		Slug:   post.Slug,
	})
}

type (
	BulkReq struct {
		IDs []string `json:"ids"`
	}

	// BulkResult is the per-item outcome of a bulk action. The action never
	// aborts mid-batch: one item failing leaves the others' results intact.
	BulkResult struct {
		ID     string  `json:"id"`
		OK     bool    `json:"ok"`
		PostID *string `json:"post_id,omitempty"`
		Error  *string `json:"error,omitempty"`
	}

	BulkResp struct {
		Results []BulkResult `json:"results"`
	}
)

func (b BulkReq) Validate() error {
	if len(b.IDs) == 0 {
		return errors.New("ids is required")
	}

	return nil
}

func decodeBulkReq(r *http.Request) (BulkReq, error) {
	body, err := serverutil.DecodeValid[BulkReq](r.Body)
	if err != nil {
		return body, nrerrs.E(err, http.StatusBadRequest)
	}

	return body, nil
}

func (s Server) postBulkPublish(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	body, err := decodeBulkReq(r)
	if err != nil {
		return err
	}

	resp := BulkResp{
		Results: make([]BulkResult, 0, len(body.IDs)),
	}
	for _, id := range body.IDs {
		post, err := s.publisher.Publish(ctx, id)
		if err != nil {
			msg := err.Error()
			resp.Results = append(resp.Results, BulkResult{ID: id, Error: &msg})
			continue
		}
		resp.Results = append(resp.Results, BulkResult{ID: id, OK: true, PostID: &post.ID})
	}

	return serverutil.WriteJSON(w, http.StatusOK, resp)
}

func (s Server) postBulkDecline(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	body, err := decodeBulkReq(r)
	if err != nil {
		return err
	}

	resp := BulkResp{
		Results: make([]BulkResult, 0, len(body.IDs)),
	}
	for _, id := range body.IDs {
		if err := s.publisher.Decline(ctx, id); err != nil {
			msg := err.Error()
			resp.Results = append(resp.Results, BulkResult{ID: id, Error: &msg})
			continue
		}
		resp.Results = append(resp.Results, BulkResult{ID: id, OK: true})
	}

	return serverutil.WriteJSON(w, http.StatusOK, resp)
}
