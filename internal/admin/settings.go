package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	nrerrs "github.com/mchasew/newsroom/internal/errors"
	"github.com/mchasew/newsroom/internal/newsroom"
	"github.com/mchasew/newsroom/internal/serverutil"
)

// The settings the pipeline actually reads. Everything else is a typo.
var knownSettings = map[string]bool{
	newsroom.SettingPriorityModels:     true,
	newsroom.SettingAutoFallback:       true,
	newsroom.SettingPublishImmediately: true,
}

type SettingResp struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s Server) getSetting(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx = r.Context()
		key = mux.Vars(r)["key"]
	)
	if !knownSettings[key] {
		return nrerrs.E("unknown setting: "+key, http.StatusNotFound)
	}

	value, err := s.repo.Setting(ctx, key)
	if errors.Is(err, newsroom.ErrNotFound) {
		// Unset is not an error; the pipeline falls back to its env defaults.
		return serverutil.WriteJSON(w, http.StatusOK, SettingResp{Key: key})
	}
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, SettingResp{Key: key, Value: value})
}

type putSettingReq struct {
	Value string `json:"value"`
}

func (s Server) putSetting(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx = r.Context()
		key = mux.Vars(r)["key"]
	)
	if !knownSettings[key] {
		return nrerrs.E("unknown setting: "+key, http.StatusNotFound)
	}

	var body putSettingReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nrerrs.E(err, http.StatusBadRequest)
	}

	if err := s.repo.SetSetting(ctx, key, body.Value); err != nil {
		return err
	}

	// A new priority mapping invalidates the cached model pick so the next
	// cycle probes fresh.
	if key == newsroom.SettingPriorityModels {
		s.selector.Invalidate()
	}

	return serverutil.WriteJSON(w, http.StatusOK, SettingResp{Key: key, Value: body.Value})
}
