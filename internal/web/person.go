package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	ferrors "github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/forms"
	"github.com/matzehuels/familytree/pkg/integrations/familyapi"
)

type homeView struct {
	Count int
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	page, err := s.api.ListPersons(r.Context(), familyapi.PersonQuery{})
	if err != nil {
		s.fail(w, r, "Could not load family members", err)
		return
	}
	s.render(w, r, http.StatusOK, "home", "Family Tree", homeView{Count: page.Count})
}

type peopleView struct {
	Filter  family.Filter
	Genders []family.Gender
	People  []family.Person
	Total   int
}

// people lists everyone. The name and gender filters are applied here to the
// full list; they are never sent to the service.
func (s *Server) people(w http.ResponseWriter, r *http.Request) {
	all, err := s.api.AllPersons(r.Context(), familyapi.PersonQuery{})
	if err != nil {
		s.fail(w, r, "Could not load family members", err)
		return
	}
	f := family.Filter{
		Name:   r.URL.Query().Get("name"),
		Gender: r.URL.Query().Get("gender"),
	}
	if f.Gender == "" {
		f.Gender = family.GenderAll
	}
	s.render(w, r, http.StatusOK, "people", "Family Members", peopleView{
		Filter:  f,
		Genders: family.Genders,
		People:  family.FilterPersons(all, f),
		Total:   len(all),
	})
}

type searchView struct {
	Query    string
	Searched bool
	Results  []family.Person
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("name"))
	view := searchView{Query: q}
	if q == "" {
		s.render(w, r, http.StatusOK, "search", "Search", view)
		return
	}

	page, err := s.api.ListPersons(r.Context(), familyapi.PersonQuery{Name: q})
	if err != nil {
		s.fail(w, r, "Search failed", err)
		return
	}
	view.Searched = true
	view.Results = page.Results
	s.render(w, r, http.StatusOK, "search", "Search", view)
}

type detailView struct {
	Person family.PersonDetail
	Age    string
}

func (s *Server) detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.api.GetPersonDetail(r.Context(), id, refresh(r))
	if err != nil {
		s.fail(w, r, "Could not load this person", err)
		return
	}
	if p == nil || p.ID == "" {
		s.notFound(w, r, "Person not found")
		return
	}
	s.render(w, r, http.StatusOK, "person", p.FullName, detailView{Person: *p, Age: ageOf(p.Person, s.now())})
}

type formView struct {
	Action  string
	Cancel  string
	Form    forms.PersonForm
	Errors  forms.Errors
	Message string
	Genders []family.Gender
	Editing bool
}

func (s *Server) newPerson(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, r, http.StatusOK, formView{
		Action: "/people/new",
		Cancel: "/people",
		Form:   forms.NewPersonForm(),
	})
}

func (s *Server) createPerson(w http.ResponseWriter, r *http.Request) {
	view := formView{Action: "/people/new", Cancel: "/people"}
	f, ok := s.readForm(w, r, &view)
	if !ok {
		return
	}

	p, err := s.api.CreatePerson(r.Context(), f)
	if err != nil {
		s.logger.Warn("create person", "err", err)
		view.Message = "Could not save. Please try again."
		s.renderForm(w, r, http.StatusBadGateway, view)
		return
	}
	s.logger.Info("created person", "id", p.ID, "name", p.FullName)
	seeOther(w, r, "/person/"+p.ID)
}

func (s *Server) editPerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.api.GetPersonDetail(r.Context(), id, refresh(r))
	if err != nil {
		s.fail(w, r, "Could not load this person", err)
		return
	}
	if p == nil || p.ID == "" {
		s.notFound(w, r, "Person not found")
		return
	}
	s.renderForm(w, r, http.StatusOK, formView{
		Action:  "/person/" + id + "/edit",
		Cancel:  "/person/" + id,
		Form:    forms.FromPerson(p.Person),
		Editing: true,
	})
}

func (s *Server) updatePerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view := formView{Action: "/person/" + id + "/edit", Cancel: "/person/" + id, Editing: true}
	f, ok := s.readForm(w, r, &view)
	if !ok {
		return
	}

	p, err := s.api.UpdatePerson(r.Context(), id, f)
	if err != nil {
		s.logger.Warn("update person", "id", id, "err", err)
		view.Message = "Could not save. Please try again."
		s.renderForm(w, r, http.StatusBadGateway, view)
		return
	}
	target := id
	if p != nil && p.ID != "" {
		target = p.ID
	}
	seeOther(w, r, "/person/"+target)
}

func (s *Server) deletePerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.api.DeletePerson(r.Context(), id); err != nil {
		s.fail(w, r, "Could not delete this person", err)
		return
	}
	s.logger.Info("deleted person", "id", id)
	seeOther(w, r, "/people")
}

// readForm parses and validates a submitted person form. On failure it
// re-renders the form and returns ok=false.
func (s *Server) readForm(w http.ResponseWriter, r *http.Request, view *formView) (forms.PersonForm, bool) {
	f, err := forms.FromRequest(r)
	view.Form = f
	if err != nil {
		view.Message = ferrors.UserMessage(err)
		s.renderForm(w, r, http.StatusBadRequest, *view)
		return f, false
	}
	if err := f.Validate(); err != nil {
		var errs forms.Errors
		if errors.As(err, &errs) {
			view.Errors = errs
		} else {
			view.Message = err.Error()
		}
		s.renderForm(w, r, http.StatusUnprocessableEntity, *view)
		return f, false
	}
	return f, true
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, view formView) {
	view.Genders = family.Genders
	title := "Add Family Member"
	if view.Editing {
		title = "Edit Family Member"
	}
	s.render(w, r, status, "person_form", title, view)
}
