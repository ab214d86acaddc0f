// Package web serves the familytree browser UI.
//
// Each screen fetches from the family-tree service on load and renders one
// of three states: the content, a generic error page with a retry link, or
// a not-found page. Person forms are posted back to the server, forwarded to
// the service as multipart bodies, and answered with a 303 redirect to the
// person's detail page.
//
// Chart data for the browser widget is served as JSON from
// /tree/{id}/chart.json; /tree/{id}/tree.svg is a Graphviz rendering of the
// same tree.
package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/familytree/pkg/cache"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/integrations/familyapi"
	"github.com/matzehuels/familytree/pkg/pipeline"
)

// API is the part of the family-tree service the UI uses.
// *familyapi.Client implements it.
type API interface {
	pipeline.TreeSource

	ListPersons(ctx context.Context, q familyapi.PersonQuery) (*family.Page[family.Person], error)
	AllPersons(ctx context.Context, q familyapi.PersonQuery) ([]family.Person, error)
	GetPersonDetail(ctx context.Context, id string, refresh bool) (*family.PersonDetail, error)
	CreatePerson(ctx context.Context, body familyapi.Body) (*family.Person, error)
	UpdatePerson(ctx context.Context, id string, body familyapi.Body) (*family.Person, error)
	DeletePerson(ctx context.Context, id string) error
	ListRelationships(ctx context.Context, q familyapi.RelationshipQuery) ([]family.Relationship, error)
	CreateSpouseRelationship(ctx context.Context, req familyapi.SpouseRequest) (*family.Relationship, error)
	CreateParentChildRelationship(ctx context.Context, req familyapi.ParentChildRequest) (*family.Relationship, error)
}

var _ API = (*familyapi.Client)(nil)

// Options configures a Server.
type Options struct {
	API    API
	Logger *log.Logger
	// Cache stores rendered tree SVGs. Nil disables caching.
	Cache cache.Cache
	Keyer cache.Keyer
	// Gatherer backs /metrics. Nil serves the default registry.
	Gatherer prometheus.Gatherer
	// CORSOrigins may read the JSON chart endpoints cross-origin.
	CORSOrigins []string
	// ChartScripts are script URLs the tree page loads for the chart
	// widget. Empty shows the SVG rendering.
	ChartScripts []string
}

// Server is the web UI.
type Server struct {
	api      API
	runner   *pipeline.Runner
	logger   *log.Logger
	pages    map[string]*template.Template
	gatherer prometheus.Gatherer
	origins  []string
	scripts  []string
	now      func() time.Time
}

// New builds a Server.
func New(opts Options) (*Server, error) {
	if opts.API == nil {
		return nil, errors.New("web: API is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Server{
		api:      opts.API,
		runner:   pipeline.NewRunner(opts.API, opts.Cache, opts.Keyer, logger),
		logger:   logger,
		pages:    pages,
		gatherer: gatherer,
		origins:  opts.CORSOrigins,
		scripts:  opts.ChartScripts,
		now:      time.Now,
	}, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Get("/", s.home)
	r.Get("/people", s.people)
	r.Get("/search", s.search)

	r.Get("/people/new", s.newPerson)
	r.Post("/people/new", s.createPerson)

	r.Route("/person/{id}", func(r chi.Router) {
		r.Get("/", s.detail)
		r.Get("/edit", s.editPerson)
		r.Post("/edit", s.updatePerson)
		r.Post("/delete", s.deletePerson)
	})

	r.Route("/tree/{id}", func(r chi.Router) {
		r.Get("/", s.tree)
		r.Group(func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: s.origins,
				AllowedMethods: []string{http.MethodGet, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "X-Request-ID"},
				ExposedHeaders: []string{"X-Request-ID"},
				MaxAge:         300,
			}))
			r.Get("/chart.json", s.chartData)
			r.Get("/tree.svg", s.treeSVG)
			r.Get("/person/{nodeID}", s.treeNode)
		})
	})

	r.Get("/relationships", s.relationships)
	r.Get("/relationships/spouse", s.newSpouse)
	r.Post("/relationships/spouse", s.createSpouse)
	r.Get("/relationships/parent", s.newParentChild)
	r.Post("/relationships/parent", s.createParentChild)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.notFound(w, r, "Page not found")
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
