// Package server exposes the project managers over a small HTTP API. It
// stands in for the browser editor: every endpoint drives the tree's CRUD
// contract and the export paths.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"siteforge/internal/archive"
	"siteforge/internal/data"
)

// Server wires the managers and exporter behind a chi router. Handlers run
// concurrently: every mutation goes through ProjectManager.ProjectMutate
// (clone, apply, swap) and exports read a ProjectSnapshot, so no request
// ever writes a project another request is reading.
type Server struct {
	pm       *data.ProjectManager
	fm       *data.FileManager
	exporter *archive.Exporter
	log      zerolog.Logger
}

func NewServer(pm *data.ProjectManager, fm *data.FileManager, exporter *archive.Exporter, logger zerolog.Logger) *Server {
	return &Server{
		pm:       pm,
		fm:       fm,
		exporter: exporter,
		log:      logger,
	}
}

// Router builds the API routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Route("/api/projects", func(r chi.Router) {
		r.Get("/", s.handleProjectList)
		r.Post("/", s.handleProjectCreate)

		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/", s.handleProjectGet)
			r.Delete("/", s.handleProjectDelete)
			r.Put("/name", s.handleProjectRename)
			r.Post("/duplicate", s.handleProjectDuplicate)

			r.Get("/export", s.handleExport)
			r.Get("/export/merged", s.handleExportMerged)

			r.Get("/files", s.handleFileList)
			r.Post("/files", s.handleFileCreate)
			r.Put("/files/{fileID}", s.handleFileUpdate)
			r.Delete("/files/{fileID}", s.handleFileDelete)
		})
	})

	return r
}

// Start blocks serving the API on addr.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("server starting")
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
