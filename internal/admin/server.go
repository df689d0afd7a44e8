// Package admin is the operator surface of the pipeline: reviewing the
// queue, publishing or declining items, re-checking sources, and flipping
// runtime settings.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/mchasew/newsroom/internal/newsroom"
	"github.com/mchasew/newsroom/internal/serverutil"
	"github.com/mchasew/newsroom/internal/worker"
)

type (
	// Server handles operator requests against the content queue and posts.
	Server struct {
		*http.Server

		repo      newsroom.Repository
		publisher *worker.Publisher
		validator worker.SourceValidator
		selector  ModelSelector

		fetchClient  *http.Client
		previewCache *lru.Cache[string, SourcePreviewResp]

		ghOauthConfig  oauth2.Config
		secureCookie   *securecookie.SecureCookie
		httpsCookies   bool   // Whether or not HTTPS should be used for cookies
		ssoRedirectURL string // URL to redirect to after successful SSO login
	}

	ServerConfig struct {
		Port               int
		CookieHashKey      []byte
		CookieBlockKey     []byte
		HttpsCookies       bool
		GithubClientID     string
		GithubClientSecret string
		CorsHeader         string
		SSORedirectURL     string

		DebugEndpoints bool
	}
)

// ModelSelector exposes the cached model choice so operators can see it and
// drop it when priorities change.
type ModelSelector interface {
	Default(ctx context.Context) string
	Invalidate()
}

func NewServer(config ServerConfig, repo newsroom.Repository, publisher *worker.Publisher, validator worker.SourceValidator, selector ModelSelector) *Server {
	var (
		r        = serverutil.ErrRouter{Router: mux.NewRouter()}
		cache, _ = lru.New[string, SourcePreviewResp](1024)
	)

	srvr := Server{
		repo:      repo,
		publisher: publisher,
		validator: validator,
		selector:  selector,
		fetchClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		previewCache:   cache,
		secureCookie:   securecookie.New(config.CookieHashKey, config.CookieBlockKey),
		httpsCookies:   config.HttpsCookies,
		ssoRedirectURL: config.SSORedirectURL,
		ghOauthConfig: oauth2.Config{
			ClientID:     config.GithubClientID,
			ClientSecret: config.GithubClientSecret,
			Scopes:       []string{},
			Endpoint:     github.Endpoint,
		},
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
			Handler: handlers.CORS(
				handlers.AllowedOrigins([]string{config.CorsHeader}),
				handlers.AllowCredentials(),
				handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
				handlers.AllowedHeaders([]string{"content-type"}),
			)(r),
		},
	}

	r.Use(serverutil.AccessLogMiddleware) // Log everything
	r.HandleFuncE("/api/viewer", srvr.handleViewer).Methods(http.MethodGet)
	r.HandleFuncE("/api/sso-login", srvr.handleSSORedirect).Methods(http.MethodGet)
	r.HandleFuncE("/api/sso-callback", srvr.handleSSOCallback).Methods(http.MethodGet)
	r.HandleFuncE("/api/logout", srvr.getLogout).Methods(http.MethodGet)

	if config.DebugEndpoints {
		// For local testing
		r.HandleFuncE("/api/login", srvr.handleDebugLogin).Methods(http.MethodPost)
	}

	authed := serverutil.ErrRouter{Router: r.NewRoute().Subrouter()}
	authed.Use(requireSessionMiddleware(srvr.secureCookie))

	// Queue review
	authed.HandleFuncE("/api/queue", srvr.getQueue).Methods(http.MethodGet)
	authed.HandleFuncE("/api/queue/{queueItemID}/publish", srvr.postPublishItem).Methods(http.MethodPost)
	authed.HandleFuncE("/api/queue:publish", srvr.postBulkPublish).Methods(http.MethodPost)
	authed.HandleFuncE("/api/queue:decline", srvr.postBulkDecline).Methods(http.MethodPost)

	// Post maintenance
	authed.HandleFuncE("/api/posts/{postID}/revalidate", srvr.postRevalidate).Methods(http.MethodPost)
	authed.HandleFuncE("/api/posts/{postID}/force-publish", srvr.postForcePublish).Methods(http.MethodPost)
	authed.HandleFuncE("/api/posts/{postID}/validation-logs", srvr.getValidationLogs).Methods(http.MethodGet)

	// Reader view of an item's source
	authed.HandleFuncE("/api/source-preview", srvr.getSourcePreview).Methods(http.MethodGet)

	// Runtime settings
	authed.HandleFuncE("/api/settings/{key}", srvr.getSetting).Methods(http.MethodGet)
	authed.HandleFuncE("/api/settings/{key}", srvr.putSetting).Methods(http.MethodPut)

	slog.Debug("configured admin server", "port", config.Port)

	return &srvr
}
