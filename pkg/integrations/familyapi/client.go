package familyapi

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/familytree/pkg/cache"
	ferrors "github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/integrations"
)

// DefaultBaseURL is the service location used when none is configured.
const DefaultBaseURL = "http://localhost:8000/api"

// maxPages bounds AllPersons against a service that never stops paging.
const maxPages = 1000

// Body is a request body that knows its own encoding. forms.PersonForm
// implements it with a multipart encoding.
type Body interface {
	Encode() (body io.Reader, contentType string, err error)
}

// PersonQuery filters ListPersons. Empty fields are not sent.
type PersonQuery struct {
	Name   string
	Gender string
	Page   int
}

func (q PersonQuery) values() url.Values {
	v := url.Values{}
	if q.Name != "" {
		v.Set("name", q.Name)
	}
	if q.Gender != "" && q.Gender != family.GenderAll {
		v.Set("gender", q.Gender)
	}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	return v
}

// RelationshipQuery filters ListRelationships. Empty fields are not sent.
type RelationshipQuery struct {
	Type   family.RelationshipType
	Person string
}

// SpouseRequest is the body of CreateSpouseRelationship.
type SpouseRequest struct {
	Person1      string `json:"person1"`
	Person2      string `json:"person2"`
	MarriageDate string `json:"marriage_date,omitempty"`
}

// ParentChildRequest is the body of CreateParentChildRelationship.
type ParentChildRequest struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// Client talks to the family-tree REST service.
// It is safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// Options configures [NewClient].
type Options struct {
	// BaseURL defaults to [DefaultBaseURL]. A trailing slash is ignored.
	BaseURL string
	// Cache stores single-person and family-tree reads. nil disables caching.
	Cache    cache.Cache
	CacheTTL time.Duration
	// Retries is how many times a failed GET is retried.
	Retries int
	// Headers are sent with every request.
	Headers    map[string]string
	HTTPClient *http.Client
}

// NewClient creates a client for the service at opts.BaseURL. Cache keys are
// scoped by the base URL so two services never share entries.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if err := ferrors.ValidateURL(base); err != nil {
		return nil, err
	}

	keyer := cache.NewScopedKeyer(nil, cache.Hash([]byte(base))[:12]+":")
	inner := integrations.NewClient(opts.Cache, "familyapi", opts.CacheTTL, opts.Headers).
		WithKeyer(keyer).
		WithRetries(opts.Retries).
		WithHTTPClient(opts.HTTPClient)

	return &Client{Client: inner, baseURL: base}, nil
}

// BaseURL returns the service base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) url(path string, q url.Values) string {
	u := c.baseURL + path
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

func personPath(id, suffix string) string {
	return "/persons/" + url.PathEscape(id) + "/" + suffix
}

func personKey(id string) string       { return "person/" + id }
func personDetailKey(id string) string { return "person-detail/" + id }
func treeKey(id string) string         { return "family-tree/" + id }

// invalidate drops every cached view of the given persons and of the
// relatives their cached detail or tree names, since those views embed the
// persons too.
func (c *Client) invalidate(ctx context.Context, ids ...string) {
	seen := make(map[string]bool)
	var keys []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		keys = append(keys, personKey(id), personDetailKey(id), treeKey(id))
	}
	for _, id := range ids {
		add(id)
		for _, rel := range c.cachedRelatives(ctx, id) {
			add(rel)
		}
	}
	c.Invalidate(ctx, keys...)
}

// cachedRelatives lists the spouses, parents and children of id found in
// its cached detail and tree. Nothing is fetched.
func (c *Client) cachedRelatives(ctx context.Context, id string) []string {
	if id == "" {
		return nil
	}
	var ids []string
	people := func(ps []family.Person) {
		for _, p := range ps {
			ids = append(ids, p.ID)
		}
	}
	spouses := func(ss []family.Spouse) {
		for _, s := range ss {
			ids = append(ids, s.ID)
			people(s.Children)
		}
	}

	var d family.PersonDetail
	if c.Peek(ctx, personDetailKey(id), &d) {
		spouses(d.Spouses)
		people(d.Parents)
		people(d.Children)
	}
	var t family.FamilyTreePerson
	if c.Peek(ctx, treeKey(id), &t) {
		spouses(t.Spouses)
		people(t.Parents)
		people(t.Children)
	}
	return ids
}
