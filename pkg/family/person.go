package family

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Gender is the recorded gender of a person.
type Gender string

// Genders accepted by the service.
const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "O"
)

// GenderAll is the filter value that matches every gender.
const GenderAll = "all"

// Genders lists valid genders in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// Valid reports whether g is one of M, F or O.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Label returns the human readable name of g.
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	case GenderOther:
		return "Other"
	default:
		return "Unknown"
	}
}

// ParseGender accepts the wire codes (M, F, O) or their labels, case-insensitively.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return GenderMale, nil
	case "f", "female":
		return GenderFemale, nil
	case "o", "other":
		return GenderOther, nil
	}
	return "", fmt.Errorf("invalid gender %q: want M, F or O", s)
}

// Person is a family member record.
//
// Age and IsAlive are derived by the service and may be absent; use
// [Person.AgeAt] and [Person.Alive], which fall back to local computation.
type Person struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Gender       Gender    `json:"gender"`
	DateOfBirth  Date      `json:"date_of_birth,omitzero"`
	DateOfDeath  Date      `json:"date_of_death,omitzero"`
	ProfilePhoto string    `json:"profile_photo,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Age          *int      `json:"age,omitempty"`
	IsAlive      *bool     `json:"is_alive,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
}

// Alive reports whether the person is living. The service value wins when
// present; otherwise a person is alive unless a death date is recorded.
func (p Person) Alive() bool {
	if p.IsAlive != nil {
		return *p.IsAlive
	}
	return p.DateOfDeath.IsZero()
}

// AgeAt returns the person's age, preferring the service value.
// ok is false when no birth date is known.
func (p Person) AgeAt(now time.Time) (age int, ok bool) {
	if p.Age != nil {
		return *p.Age, true
	}
	return ComputeAge(p.DateOfBirth, p.DateOfDeath, now)
}

// ComputeAge returns whole years from birth until death, or until now for
// the living. The count drops by one while the anniversary has not been
// reached in the final year.
func ComputeAge(birth, death Date, now time.Time) (int, bool) {
	if birth.IsZero() {
		return 0, false
	}
	end := now
	if !death.IsZero() {
		end = death.Time
	}
	age := end.Year() - birth.Year()
	if end.Month() < birth.Month() || (end.Month() == birth.Month() && end.Day() < birth.Day()) {
		age--
	}
	return age, true
}

// Status returns "Living" or "Deceased".
func (p Person) Status() string {
	if p.Alive() {
		return "Living"
	}
	return "Deceased"
}

// Spouse is a person married to the root of a detail or tree view.
type Spouse struct {
	Person
	MarriageDate   Date     `json:"marriage_date,omitzero"`
	DivorceDate    Date     `json:"divorce_date,omitzero"`
	ActiveMarriage bool     `json:"active_marriage_status"`
	Children       []Person `json:"children,omitempty"`
}

// UnmarshalJSON also accepts the older "is_active_marriage" key.
func (s *Spouse) UnmarshalJSON(data []byte) error {
	type spouse Spouse
	aux := struct {
		*spouse
		Legacy *bool `json:"is_active_marriage"`
	}{spouse: (*spouse)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Legacy != nil && !s.ActiveMarriage {
		s.ActiveMarriage = *aux.Legacy
	}
	return nil
}

// PersonDetail is a person with one level of resolved relatives.
type PersonDetail struct {
	Person
	Spouses  []Spouse `json:"spouses"`
	Parents  []Person `json:"parents"`
	Children []Person `json:"children"`
}

// FamilyTreePerson is the root of a family tree view.
//
// Each spouse carries the children the root shares with that spouse; Children
// holds all of the root's children and therefore overlaps with them. Parents
// is filled only by services that include the generation above the root.
type FamilyTreePerson struct {
	Person
	Spouses  []Spouse `json:"spouses"`
	Children []Person `json:"children"`
	Parents  []Person `json:"parents,omitempty"`
}

// Page is one page of a paginated list response.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasNext reports whether another page follows.
func (p Page[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}
