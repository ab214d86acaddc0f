package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/familytree/pkg/chart"
	ferrors "github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/observability"
	"github.com/matzehuels/familytree/pkg/pipeline"
)

type treeView struct {
	Root    family.Person
	Members int
	Scripts []string
}

func (s *Server) tree(w http.ResponseWriter, r *http.Request) {
	tree, ok := s.loadTree(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "tree", tree.FullName+" - Family Tree", treeView{
		Root:    tree.Person,
		Members: len(chart.Walk(tree)),
		Scripts: s.scripts,
	})
}

// chartData serves the widget data: the node list by default, or the
// relations shape with ?format=relations.
func (s *Server) chartData(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatNodes
	}
	if !pipeline.IsShape(format) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "format must be nodes, relations or graph"})
		return
	}

	tree, err := s.runner.Fetch(r.Context(), chi.URLParam(r, "id"), refresh(r))
	if err != nil {
		s.logger.Warn("chart data", "err", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not load family tree"})
		return
	}

	start := time.Now()
	members := chart.Walk(tree)
	data, err := pipeline.Shape(members, format)
	observability.Chart().OnChartBuilt(r.Context(), format, len(members), time.Since(start))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not build chart"})
		return
	}
	writeBytes(w, pipeline.ContentType(format), data)
}

func (s *Server) treeSVG(w http.ResponseWriter, r *http.Request) {
	opts := pipeline.Options{
		Formats:    []string{pipeline.FormatSVG},
		Direction:  r.URL.Query().Get("direction"),
		Detailed:   true,
		LinkPrefix: "/person/",
		Refresh:    refresh(r),
	}
	result, err := s.runner.Execute(r.Context(), chi.URLParam(r, "id"), opts)
	if err != nil {
		s.logger.Warn("render tree", "err", err)
		switch {
		case ferrors.Is(err, ferrors.ErrCodeInvalidInput):
			http.Error(w, "direction must be TB or LR", http.StatusBadRequest)
		case ferrors.Is(err, ferrors.ErrCodePersonNotFound):
			http.Error(w, "person not found", http.StatusNotFound)
		case ferrors.Is(err, ferrors.ErrCodeRender):
			http.Error(w, "could not render family tree", http.StatusInternalServerError)
		default:
			http.Error(w, "could not render family tree", http.StatusBadGateway)
		}
		return
	}
	writeBytes(w, pipeline.ContentType(pipeline.FormatSVG), result.Artifacts[pipeline.FormatSVG])
}

// treeNode resolves a clicked chart node to the person record within the
// tree.
func (s *Server) treeNode(w http.ResponseWriter, r *http.Request) {
	tree, err := s.runner.Fetch(r.Context(), chi.URLParam(r, "id"), false)
	if err != nil {
		s.logger.Warn("tree node", "err", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not load family tree"})
		return
	}
	p, ok := family.FindPerson(tree, chi.URLParam(r, "nodeID"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "person not found in tree"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// loadTree fetches the tree for the {id} URL parameter and renders the
// error or not-found screen itself when that fails.
func (s *Server) loadTree(w http.ResponseWriter, r *http.Request) (*family.FamilyTreePerson, bool) {
	tree, err := s.runner.Fetch(r.Context(), chi.URLParam(r, "id"), refresh(r))
	switch {
	case ferrors.Is(err, ferrors.ErrCodePersonNotFound):
		s.notFound(w, r, "Person not found")
		return nil, false
	case err != nil:
		s.fail(w, r, "Could not load family tree", err)
		return nil, false
	}
	return tree, true
}
