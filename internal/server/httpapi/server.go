// Package httpapi is the HTTP surface of the premium server: the public plate
// catalog, the submission endpoints and the admin ledger views.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/premiumkeeper/internal/common"
	"github.com/dmitrijs2005/premiumkeeper/internal/logging"
	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/auth"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/catalog"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/submissions"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

type SubmissionService interface {
	Submit(ctx context.Context, id auth.Identity, req submissions.Request) (premium.SubmissionRecord, error)
	ResolveCompany(ctx context.Context, plate string) (string, error)
	List(ctx context.Context) ([]premium.SubmissionRecord, error)
}

type Archiver interface {
	Archive(ctx context.Context, workbook []byte) (key string, url string, err error)
}

type Options struct {
	Catalog       catalog.Source
	Submissions   SubmissionService
	Archiver      Archiver
	Metrics       *metrics.Registry
	Logger        logging.Logger
	SecretKey     []byte
	AllowedOrigin string
}

type Server struct {
	catalog       catalog.Source
	submissions   SubmissionService
	archiver      Archiver
	metrics       *metrics.Registry
	logger        logging.Logger
	secret        []byte
	allowedOrigin string
}

func NewServer(o Options) *Server {
	origin := o.AllowedOrigin
	if origin == "" {
		origin = "*"
	}
	logger := o.Logger
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Server{
		catalog:       o.Catalog,
		submissions:   o.Submissions,
		archiver:      o.Archiver,
		metrics:       o.Metrics,
		logger:        logger,
		secret:        o.SecretKey,
		allowedOrigin: origin,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.cors)
	r.Use(s.observe)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/health", s.handleHealth)
	r.Get("/plates.json", s.handleCatalog)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Post("/", s.withRoles(s.handleForm, common.RoleBroker, common.RoleAdmin))
		r.Post("/api/premiums", s.withRoles(s.handleSubmit, common.RoleBroker, common.RoleAdmin))
		r.Get("/api/premiums", s.withRoles(s.handleList, common.RoleAdmin))
		r.Get("/api/premiums/export", s.withRoles(s.handleExport, common.RoleAdmin))
		r.Post("/api/catalog/{company}", s.withRoles(s.handleCatalogMerge, common.RoleAdmin))
	})

	return r
}
