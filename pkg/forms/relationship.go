package forms

import (
	"net/http"
	"strings"

	"github.com/matzehuels/familytree/pkg/integrations/familyapi"
)

// SpouseForm records a marriage between two people.
type SpouseForm struct {
	Person1      string `form:"person1" validate:"required,uuid"`
	Person2      string `form:"person2" validate:"required,uuid,nefield=Person1"`
	MarriageDate string `form:"marriage_date" validate:"isodate"`
}

// Validate checks the form. The error, if any, is [Errors].
func (f SpouseForm) Validate() error { return check(f) }

// Request converts the form to an API request.
func (f SpouseForm) Request() familyapi.SpouseRequest {
	return familyapi.SpouseRequest{
		Person1:      f.Person1,
		Person2:      f.Person2,
		MarriageDate: strings.TrimSpace(f.MarriageDate),
	}
}

// SpouseFormFromRequest reads a submitted spouse form.
func SpouseFormFromRequest(r *http.Request) (SpouseForm, error) {
	if err := r.ParseForm(); err != nil {
		return SpouseForm{}, err
	}
	return SpouseForm{
		Person1:      strings.TrimSpace(r.PostFormValue("person1")),
		Person2:      strings.TrimSpace(r.PostFormValue("person2")),
		MarriageDate: r.PostFormValue("marriage_date"),
	}, nil
}

// ParentChildForm records that Parent is a parent of Child.
type ParentChildForm struct {
	Parent string `form:"parent" validate:"required,uuid"`
	Child  string `form:"child" validate:"required,uuid,nefield=Parent"`
}

// Validate checks the form. The error, if any, is [Errors].
func (f ParentChildForm) Validate() error { return check(f) }

// Request converts the form to an API request.
func (f ParentChildForm) Request() familyapi.ParentChildRequest {
	return familyapi.ParentChildRequest{Parent: f.Parent, Child: f.Child}
}

// ParentChildFormFromRequest reads a submitted parent/child form.
func ParentChildFormFromRequest(r *http.Request) (ParentChildForm, error) {
	if err := r.ParseForm(); err != nil {
		return ParentChildForm{}, err
	}
	return ParentChildForm{
		Parent: strings.TrimSpace(r.PostFormValue("parent")),
		Child:  strings.TrimSpace(r.PostFormValue("child")),
	}, nil
}
