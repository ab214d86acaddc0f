package familyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	ferrors "github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/integrations"
)

// ListRelationships lists relationships, optionally filtered by type and by
// a person on either side. The service may answer with a bare array or a
// paginated envelope; both are accepted and every page is followed.
func (c *Client) ListRelationships(ctx context.Context, q RelationshipQuery) ([]family.Relationship, error) {
	v := url.Values{}
	if q.Type != "" {
		v.Set("type", string(q.Type))
	}
	if q.Person != "" {
		if err := ferrors.ValidatePersonID(q.Person); err != nil {
			return nil, err
		}
		v.Set("person", q.Person)
	}

	var rels []family.Relationship
	next := c.url("/relationships/", v)
	for pages := 0; next != "" && pages < maxPages; pages++ {
		pageURL := next
		next = ""
		var raw json.RawMessage
		if err := c.Get(ctx, pageURL, &raw); err != nil {
			return nil, err
		}

		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
			var list []family.Relationship
			if err := json.Unmarshal(trimmed, &list); err != nil {
				return nil, &integrations.APIError{Method: http.MethodGet, URL: pageURL, Err: err}
			}
			return append(rels, list...), nil
		}

		var page family.Page[family.Relationship]
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, &integrations.APIError{Method: http.MethodGet, URL: pageURL, Err: err}
		}
		rels = append(rels, page.Results...)
		if page.HasNext() {
			next = *page.Next
		}
	}
	return rels, nil
}

// CreateSpouseRelationship records a marriage between two people.
func (c *Client) CreateSpouseRelationship(ctx context.Context, req SpouseRequest) (*family.Relationship, error) {
	if err := validatePair(req.Person1, req.Person2); err != nil {
		return nil, err
	}
	if req.MarriageDate != "" {
		if _, err := family.ParseDate(req.MarriageDate); err != nil {
			return nil, ferrors.Wrap(ferrors.ErrCodeInvalidDate, err, "invalid marriage date %q", req.MarriageDate)
		}
	}
	var rel family.Relationship
	if err := c.SendJSON(ctx, http.MethodPost, c.url("/relationships/create_spouse_relationship/", nil), req, &rel); err != nil {
		return nil, err
	}
	c.invalidate(ctx, req.Person1, req.Person2)
	return &rel, nil
}

// CreateParentChildRelationship records that parent is a parent of child.
func (c *Client) CreateParentChildRelationship(ctx context.Context, req ParentChildRequest) (*family.Relationship, error) {
	if err := validatePair(req.Parent, req.Child); err != nil {
		return nil, err
	}
	var rel family.Relationship
	if err := c.SendJSON(ctx, http.MethodPost, c.url("/relationships/create_parent_child_relationship/", nil), req, &rel); err != nil {
		return nil, err
	}
	c.invalidate(ctx, req.Parent, req.Child)
	return &rel, nil
}

func validatePair(a, b string) error {
	if err := ferrors.ValidatePersonID(a); err != nil {
		return err
	}
	if err := ferrors.ValidatePersonID(b); err != nil {
		return err
	}
	if a == b {
		return ferrors.New(ferrors.ErrCodeInvalidInput, "a person cannot be related to themselves")
	}
	return nil
}
