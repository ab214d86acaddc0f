package family

import (
	"encoding/json"
	"time"
)

// RelationshipType distinguishes marriages from parent/child links.
type RelationshipType string

// Relationship types.
const (
	RelationshipSpouse      RelationshipType = "spouse"
	RelationshipParentChild RelationshipType = "parent_child"
)

// Valid reports whether t is a known relationship type.
func (t RelationshipType) Valid() bool {
	return t == RelationshipSpouse || t == RelationshipParentChild
}

// Label returns the human readable name of t.
func (t RelationshipType) Label() string {
	switch t {
	case RelationshipSpouse:
		return "Spouse"
	case RelationshipParentChild:
		return "Parent-Child"
	default:
		return string(t)
	}
}

// Relationship is a typed edge between two people. For parent_child
// relationships Person1 is the parent and Person2 the child; spouse
// relationships are undirected.
type Relationship struct {
	ID                   string           `json:"id"`
	Type                 RelationshipType `json:"relationship_type"`
	Person1              string           `json:"person1"`
	Person2              string           `json:"person2"`
	Person1Name          string           `json:"person1_name"`
	Person2Name          string           `json:"person2_name"`
	MarriageDate         Date             `json:"marriage_date,omitzero"`
	DivorceDate          Date             `json:"divorce_date,omitzero"`
	ActiveMarriageStatus bool             `json:"active_marriage_status"`
	CreatedAt            time.Time        `json:"created_at,omitzero"`
	UpdatedAt            time.Time        `json:"updated_at,omitzero"`
}

// ActiveMarriage reports whether r is a spouse relationship without a
// divorce date.
func (r Relationship) ActiveMarriage() bool {
	return r.Type == RelationshipSpouse && r.DivorceDate.IsZero()
}

// Involves reports whether personID is either side of r.
func (r Relationship) Involves(personID string) bool {
	return r.Person1 == personID || r.Person2 == personID
}

// UnmarshalJSON also accepts the older "is_active_marriage" key.
func (r *Relationship) UnmarshalJSON(data []byte) error {
	type relationship Relationship
	aux := struct {
		*relationship
		Legacy *bool `json:"is_active_marriage"`
	}{relationship: (*relationship)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Legacy != nil && !r.ActiveMarriageStatus {
		r.ActiveMarriageStatus = *aux.Legacy
	}
	return nil
}
