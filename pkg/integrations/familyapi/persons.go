package familyapi

import (
	"context"
	"net/http"

	ferrors "github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
)

// ListPersons fetches one page of people.
func (c *Client) ListPersons(ctx context.Context, q PersonQuery) (*family.Page[family.Person], error) {
	var page family.Page[family.Person]
	if err := c.Get(ctx, c.url("/persons/", q.values()), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AllPersons fetches every page of people matching q by following next links.
func (c *Client) AllPersons(ctx context.Context, q PersonQuery) ([]family.Person, error) {
	q.Page = 0
	next := c.url("/persons/", q.values())
	seen := make(map[string]bool)

	var people []family.Person
	for pages := 0; next != "" && pages < maxPages; pages++ {
		if seen[next] {
			break
		}
		seen[next] = true

		var page family.Page[family.Person]
		if err := c.Get(ctx, next, &page); err != nil {
			return nil, err
		}
		if people == nil {
			people = make([]family.Person, 0, page.Count)
		}
		people = append(people, page.Results...)

		next = ""
		if page.HasNext() {
			next = *page.Next
		}
	}
	return people, nil
}

// GetPerson fetches a single person.
func (c *Client) GetPerson(ctx context.Context, id string, refresh bool) (*family.Person, error) {
	if err := ferrors.ValidatePersonID(id); err != nil {
		return nil, err
	}
	var p family.Person
	err := c.Cached(ctx, personKey(id), refresh, &p, func() error {
		return c.Get(ctx, c.url(personPath(id, ""), nil), &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPersonDetail fetches a person with one level of spouses, parents and
// children.
func (c *Client) GetPersonDetail(ctx context.Context, id string, refresh bool) (*family.PersonDetail, error) {
	if err := ferrors.ValidatePersonID(id); err != nil {
		return nil, err
	}
	var d family.PersonDetail
	err := c.Cached(ctx, personDetailKey(id), refresh, &d, func() error {
		return c.Get(ctx, c.url(personPath(id, ""), nil), &d)
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetFamilyTree fetches the two-generation tree rooted at id.
func (c *Client) GetFamilyTree(ctx context.Context, id string, refresh bool) (*family.FamilyTreePerson, error) {
	if err := ferrors.ValidatePersonID(id); err != nil {
		return nil, err
	}
	var tree family.FamilyTreePerson
	err := c.Cached(ctx, treeKey(id), refresh, &tree, func() error {
		return c.Get(ctx, c.url(personPath(id, "family_tree/"), nil), &tree)
	})
	if err != nil {
		return nil, err
	}
	return &tree, nil
}

// Descendants lists children, grandchildren and so on, depth first. The
// service stops after five generations.
func (c *Client) Descendants(ctx context.Context, id string) ([]family.Person, error) {
	return c.lineage(ctx, id, "descendants/")
}

// Ancestors lists parents, grandparents and so on, depth first. The service
// stops after five generations.
func (c *Client) Ancestors(ctx context.Context, id string) ([]family.Person, error) {
	return c.lineage(ctx, id, "ancestors/")
}

func (c *Client) lineage(ctx context.Context, id, suffix string) ([]family.Person, error) {
	if err := ferrors.ValidatePersonID(id); err != nil {
		return nil, err
	}
	var people []family.Person
	if err := c.Get(ctx, c.url(personPath(id, suffix), nil), &people); err != nil {
		return nil, err
	}
	return people, nil
}

// CreatePerson submits a new person.
func (c *Client) CreatePerson(ctx context.Context, body Body) (*family.Person, error) {
	r, contentType, err := body.Encode()
	if err != nil {
		return nil, err
	}
	var p family.Person
	if err := c.Send(ctx, http.MethodPost, c.url("/persons/", nil), contentType, r, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePerson replaces a person's fields.
func (c *Client) UpdatePerson(ctx context.Context, id string, body Body) (*family.Person, error) {
	if err := ferrors.ValidatePersonID(id); err != nil {
		return nil, err
	}
	r, contentType, err := body.Encode()
	if err != nil {
		return nil, err
	}
	var p family.Person
	if err := c.Send(ctx, http.MethodPut, c.url(personPath(id, ""), nil), contentType, r, &p); err != nil {
		return nil, err
	}
	c.invalidate(ctx, id)
	return &p, nil
}

// DeletePerson removes a person.
func (c *Client) DeletePerson(ctx context.Context, id string) error {
	if err := ferrors.ValidatePersonID(id); err != nil {
		return err
	}
	if err := c.Delete(ctx, c.url(personPath(id, ""), nil)); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}
