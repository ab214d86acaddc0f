package web

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	ferrors "github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/forms"
	"github.com/matzehuels/familytree/pkg/integrations/familyapi"
)

type relationshipsView struct {
	Type          string
	Person        string
	Relationships []family.Relationship
}

func (s *Server) relationships(w http.ResponseWriter, r *http.Request) {
	q := familyapi.RelationshipQuery{
		Type:   family.RelationshipType(r.URL.Query().Get("type")),
		Person: strings.TrimSpace(r.URL.Query().Get("person")),
	}
	if q.Type != "" && !q.Type.Valid() {
		q.Type = ""
	}
	rels, err := s.api.ListRelationships(r.Context(), q)
	if err != nil {
		s.fail(w, r, "Could not load relationships", err)
		return
	}
	s.render(w, r, http.StatusOK, "relationships", "Relationships", relationshipsView{
		Type:          string(q.Type),
		Person:        q.Person,
		Relationships: rels,
	})
}

type relationshipFormView struct {
	Kind    string
	Action  string
	People  []family.Person
	Spouse  forms.SpouseForm
	Parent  forms.ParentChildForm
	Errors  forms.Errors
	Message string
}

func (s *Server) newSpouse(w http.ResponseWriter, r *http.Request) {
	view := relationshipFormView{
		Kind:   "spouse",
		Spouse: forms.SpouseForm{Person1: r.URL.Query().Get("person")},
	}
	s.renderRelationshipForm(w, r, http.StatusOK, view)
}

func (s *Server) createSpouse(w http.ResponseWriter, r *http.Request) {
	view := relationshipFormView{Kind: "spouse"}
	f, err := forms.SpouseFormFromRequest(r)
	view.Spouse = f
	if !s.checkRelationshipForm(w, r, &view, err, f.Validate) {
		return
	}
	if _, err := s.api.CreateSpouseRelationship(r.Context(), f.Request()); err != nil {
		s.logger.Warn("create spouse relationship", "err", err)
		view.Message = "Could not save. Please try again."
		s.renderRelationshipForm(w, r, http.StatusBadGateway, view)
		return
	}
	seeOther(w, r, "/person/"+f.Person1)
}

func (s *Server) newParentChild(w http.ResponseWriter, r *http.Request) {
	view := relationshipFormView{
		Kind:   "parent",
		Parent: forms.ParentChildForm{Parent: r.URL.Query().Get("parent"), Child: r.URL.Query().Get("child")},
	}
	s.renderRelationshipForm(w, r, http.StatusOK, view)
}

func (s *Server) createParentChild(w http.ResponseWriter, r *http.Request) {
	view := relationshipFormView{Kind: "parent"}
	f, err := forms.ParentChildFormFromRequest(r)
	view.Parent = f
	if !s.checkRelationshipForm(w, r, &view, err, f.Validate) {
		return
	}
	if _, err := s.api.CreateParentChildRelationship(r.Context(), f.Request()); err != nil {
		s.logger.Warn("create parent relationship", "err", err)
		view.Message = "Could not save. Please try again."
		s.renderRelationshipForm(w, r, http.StatusBadGateway, view)
		return
	}
	seeOther(w, r, "/person/"+f.Parent)
}

func (s *Server) checkRelationshipForm(w http.ResponseWriter, r *http.Request, view *relationshipFormView, parseErr error, validate func() error) bool {
	if parseErr != nil {
		view.Message = ferrors.UserMessage(parseErr)
		s.renderRelationshipForm(w, r, http.StatusBadRequest, *view)
		return false
	}
	if err := validate(); err != nil {
		var errs forms.Errors
		if errors.As(err, &errs) {
			view.Errors = errs
		} else {
			view.Message = err.Error()
		}
		s.renderRelationshipForm(w, r, http.StatusUnprocessableEntity, *view)
		return false
	}
	return true
}

// renderRelationshipForm fills the person pickers. If the people list cannot
// be loaded the whole screen becomes the error screen.
func (s *Server) renderRelationshipForm(w http.ResponseWriter, r *http.Request, status int, view relationshipFormView) {
	people, err := s.api.AllPersons(r.Context(), familyapi.PersonQuery{})
	if err != nil {
		s.fail(w, r, "Could not load family members", err)
		return
	}
	slices.SortFunc(people, func(a, b family.Person) int {
		return strings.Compare(strings.ToLower(a.FullName), strings.ToLower(b.FullName))
	})
	view.People = people

	view.Action = "/relationships/" + view.Kind
	title := "Add Marriage"
	if view.Kind == "parent" {
		title = "Add Parent and Child"
	}
	s.render(w, r, status, "relationship_form", title, view)
}
