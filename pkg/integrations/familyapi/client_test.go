package familyapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/familytree/pkg/cache"
	ferrors "github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/integrations"
)

const (
	annaID  = "0b5c2a52-6f0e-4c1b-9a51-3f6f0a1d2e01"
	karlID  = "0b5c2a52-6f0e-4c1b-9a51-3f6f0a1d2e02"
	childID = "0b5c2a52-6f0e-4c1b-9a51-3f6f0a1d2e03"
)

func testClient(t *testing.T, baseURL string, c cache.Cache) *Client {
	t.Helper()
	client, err := NewClient(Options{BaseURL: baseURL + "/api/", Cache: c, CacheTTL: time.Hour})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

type rawBody struct {
	data        string
	contentType string
}

func (b rawBody) Encode() (io.Reader, string, error) {
	return strings.NewReader(b.data), b.contentType, nil
}

func TestNewClient(t *testing.T) {
	c, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), DefaultBaseURL)
	}

	c, _ = NewClient(Options{BaseURL: "https://family.example.com/api///"})
	if c.BaseURL() != "https://family.example.com/api" {
		t.Errorf("trailing slashes not trimmed: %q", c.BaseURL())
	}

	if _, err := NewClient(Options{BaseURL: "ftp://x"}); err == nil {
		t.Error("expected error for non-http base URL")
	}
}

func TestListPersonsQuery(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/persons/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		fmt.Fprintf(w, `{"count":1,"next":null,"previous":null,"results":[{"id":%q,"full_name":"Anna Schmidt","gender":"F"}]}`, annaID)
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)

	tests := []struct {
		q    PersonQuery
		want string
	}{
		{PersonQuery{}, ""},
		{PersonQuery{Name: "anna"}, "name=anna"},
		{PersonQuery{Name: "anna", Gender: "F"}, "gender=F&name=anna"},
		{PersonQuery{Gender: family.GenderAll}, ""},
		{PersonQuery{Page: 2}, "page=2"},
	}
	for _, tt := range tests {
		page, err := c.ListPersons(context.Background(), tt.q)
		if err != nil {
			t.Fatalf("ListPersons(%+v): %v", tt.q, err)
		}
		if gotQuery != tt.want {
			t.Errorf("ListPersons(%+v) query = %q, want %q", tt.q, gotQuery, tt.want)
		}
		if page.Count != 1 || page.Results[0].FullName != "Anna Schmidt" || page.HasNext() {
			t.Errorf("unexpected page %+v", page)
		}
	}
}

func TestAllPersonsFollowsNext(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			fmt.Fprintf(w, `{"count":3,"next":"%s/api/persons/?page=2","previous":null,"results":[{"id":"1","full_name":"A","gender":"F"}]}`, server.URL)
		case "2":
			fmt.Fprintf(w, `{"count":3,"next":"%s/api/persons/?page=3","previous":null,"results":[{"id":"2","full_name":"B","gender":"M"}]}`, server.URL)
		case "3":
			io.WriteString(w, `{"count":3,"next":null,"previous":null,"results":[{"id":"3","full_name":"C","gender":"O"}]}`)
		}
	}))
	defer server.Close()

	people, err := testClient(t, server.URL, nil).AllPersons(context.Background(), PersonQuery{})
	if err != nil {
		t.Fatalf("AllPersons: %v", err)
	}
	if len(people) != 3 || people[0].ID != "1" || people[2].ID != "3" {
		t.Errorf("AllPersons = %+v", people)
	}
}

func TestAllPersonsStopsOnRepeatedNext(t *testing.T) {
	var calls atomic.Int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprintf(w, `{"count":1,"next":"%s/api/persons/","results":[{"id":"1","full_name":"A","gender":"F"}]}`, server.URL)
	}))
	defer server.Close()

	people, err := testClient(t, server.URL, nil).AllPersons(context.Background(), PersonQuery{})
	if err != nil {
		t.Fatalf("AllPersons: %v", err)
	}
	if calls.Load() != 1 || len(people) != 1 {
		t.Errorf("calls = %d, people = %d; a self-referencing next must not loop", calls.Load(), len(people))
	}
}

func TestGetFamilyTree(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/persons/"+annaID+"/family_tree/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `{"id":%q,"full_name":"Anna","gender":"F","date_of_birth":"1950-04-01",
			"spouses":[{"id":%q,"full_name":"Karl","gender":"M","is_active_marriage":true,
				"children":[{"id":%q,"full_name":"Kind","gender":"O"}]}],
			"children":[{"id":%q,"full_name":"Kind","gender":"O"}]}`, annaID, karlID, childID, childID)
	}))
	defer server.Close()

	tree, err := testClient(t, server.URL, nil).GetFamilyTree(context.Background(), annaID, false)
	if err != nil {
		t.Fatalf("GetFamilyTree: %v", err)
	}
	if tree.FullName != "Anna" || len(tree.Spouses) != 1 || len(tree.Children) != 1 {
		t.Fatalf("unexpected tree %+v", tree)
	}
	if !tree.Spouses[0].ActiveMarriage {
		t.Error("legacy is_active_marriage should decode")
	}
	if tree.DateOfBirth.YearString() != "1950" {
		t.Errorf("birth year = %q", tree.DateOfBirth.YearString())
	}
}

func TestInvalidIDNeverSent(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)
	ctx := context.Background()

	if _, err := c.GetPerson(ctx, "../admin", false); !ferrors.Is(err, ferrors.ErrCodeInvalidID) {
		t.Errorf("GetPerson error = %v, want INVALID_ID", err)
	}
	if err := c.DeletePerson(ctx, ""); !ferrors.Is(err, ferrors.ErrCodeInvalidID) {
		t.Errorf("DeletePerson error = %v, want INVALID_ID", err)
	}
	if _, err := c.CreateSpouseRelationship(ctx, SpouseRequest{Person1: annaID, Person2: annaID}); !ferrors.Is(err, ferrors.ErrCodeInvalidInput) {
		t.Errorf("self-marriage error = %v, want INVALID_INPUT", err)
	}
	if calls.Load() != 0 {
		t.Errorf("server called %d times for invalid input", calls.Load())
	}
}

func TestNotFoundIsGenericFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := testClient(t, server.URL, nil).GetPersonDetail(context.Background(), annaID, false)
	if !errors.Is(err, integrations.ErrRequestFailed) {
		t.Errorf("404 should be ErrRequestFailed, got %v", err)
	}
}

func TestCreateAndUpdatePerson(t *testing.T) {
	var gotMethod, gotPath, gotType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"id":%q,"full_name":"Anna","gender":"F"}`, annaID)
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)
	body := rawBody{data: "payload", contentType: "multipart/form-data; boundary=x"}

	p, err := c.CreatePerson(context.Background(), body)
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/persons/" || gotType != body.contentType || gotBody != "payload" {
		t.Errorf("create request: %s %s %s %q", gotMethod, gotPath, gotType, gotBody)
	}
	if p.ID != annaID {
		t.Errorf("created id = %s", p.ID)
	}

	if _, err := c.UpdatePerson(context.Background(), annaID, body); err != nil {
		t.Fatalf("UpdatePerson: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/persons/"+annaID+"/" {
		t.Errorf("update request: %s %s", gotMethod, gotPath)
	}
}

func TestWritesInvalidateCachedReads(t *testing.T) {
	var reads atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			reads.Add(1)
			fmt.Fprintf(w, `{"id":%q,"full_name":"Anna v%d","gender":"F"}`, annaID, reads.Load())
		case http.MethodPut:
			fmt.Fprintf(w, `{"id":%q,"full_name":"Anna","gender":"F"}`, annaID)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer server.Close()

	fc, _ := cache.NewFileCache(t.TempDir())
	c := testClient(t, server.URL, fc)
	ctx := context.Background()

	first, _ := c.GetPerson(ctx, annaID, false)
	second, _ := c.GetPerson(ctx, annaID, false)
	if reads.Load() != 1 || first.FullName != second.FullName {
		t.Fatalf("second read should be cached: reads=%d", reads.Load())
	}

	if _, err := c.UpdatePerson(ctx, annaID, rawBody{contentType: "multipart/form-data; boundary=x"}); err != nil {
		t.Fatalf("UpdatePerson: %v", err)
	}
	third, _ := c.GetPerson(ctx, annaID, false)
	if reads.Load() != 2 || third.FullName != "Anna v2" {
		t.Errorf("update should invalidate cache: reads=%d name=%q", reads.Load(), third.FullName)
	}

	if err := c.DeletePerson(ctx, annaID); err != nil {
		t.Fatalf("DeletePerson: %v", err)
	}
	_, _ = c.GetPerson(ctx, annaID, false)
	if reads.Load() != 3 {
		t.Errorf("delete should invalidate cache: reads=%d", reads.Load())
	}
}

func TestWritesInvalidateCachedRelatives(t *testing.T) {
	var reads sync.Map
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			n, _ := reads.LoadOrStore(r.URL.Path, new(atomic.Int32))
			n.(*atomic.Int32).Add(1)
			switch r.URL.Path {
			case "/api/persons/" + annaID + "/":
				fmt.Fprintf(w, `{"id":%q,"full_name":"Anna","gender":"F","spouses":[{"id":%q,"full_name":"Karl","gender":"M"}],"parents":[],"children":[]}`, annaID, karlID)
			case "/api/persons/" + karlID + "/family_tree/":
				fmt.Fprintf(w, `{"id":%q,"full_name":"Karl","gender":"M","spouses":[{"id":%q,"full_name":"Anna","gender":"F","children":[{"id":%q,"full_name":"Clara","gender":"F"}]}],"children":[]}`, karlID, annaID, childID)
			case "/api/persons/" + childID + "/":
				fmt.Fprintf(w, `{"id":%q,"full_name":"Clara","gender":"F","spouses":[],"parents":[],"children":[]}`, childID)
			default:
				http.NotFound(w, r)
			}
		case http.MethodPut:
			fmt.Fprintf(w, `{"id":%q,"full_name":"Anna","gender":"F"}`, annaID)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer server.Close()

	count := func(path string) int32 {
		n, ok := reads.Load(path)
		if !ok {
			return 0
		}
		return n.(*atomic.Int32).Load()
	}
	karlTree := "/api/persons/" + karlID + "/family_tree/"
	childDetail := "/api/persons/" + childID + "/"

	fc, _ := cache.NewFileCache(t.TempDir())
	c := testClient(t, server.URL, fc)
	ctx := context.Background()

	warm := func() {
		t.Helper()
		if _, err := c.GetPersonDetail(ctx, annaID, false); err != nil {
			t.Fatal(err)
		}
		if _, err := c.GetFamilyTree(ctx, karlID, false); err != nil {
			t.Fatal(err)
		}
		if _, err := c.GetPersonDetail(ctx, childID, false); err != nil {
			t.Fatal(err)
		}
	}

	warm()
	warm()
	if count(karlTree) != 1 || count(childDetail) != 1 {
		t.Fatalf("reads should be cached: tree=%d child=%d", count(karlTree), count(childDetail))
	}

	if _, err := c.UpdatePerson(ctx, annaID, rawBody{contentType: "multipart/form-data; boundary=x"}); err != nil {
		t.Fatalf("UpdatePerson: %v", err)
	}
	warm()
	if count(karlTree) != 2 {
		t.Errorf("spouse's tree should be refetched after update: reads=%d", count(karlTree))
	}
	if count(childDetail) != 1 {
		t.Errorf("unrelated cached person refetched: reads=%d", count(childDetail))
	}

	if err := c.DeletePerson(ctx, karlID); err != nil {
		t.Fatalf("DeletePerson: %v", err)
	}
	warm()
	if count(childDetail) != 2 {
		t.Errorf("child in deleted person's tree should be refetched: reads=%d", count(childDetail))
	}
}

func TestListRelationships(t *testing.T) {
	arrayBody := fmt.Sprintf(`[{"id":"r1","relationship_type":"spouse","person1":%q,"person2":%q,"is_active_marriage":true}]`, annaID, karlID)
	pageBody := fmt.Sprintf(`{"count":1,"next":null,"previous":null,"results":[{"id":"r2","relationship_type":"parent_child","person1":%q,"person2":%q}]}`, annaID, childID)

	for name, body := range map[string]string{"array": arrayBody, "page": pageBody} {
		t.Run(name, func(t *testing.T) {
			var gotQuery string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.RawQuery
				io.WriteString(w, body)
			}))
			defer server.Close()

			rels, err := testClient(t, server.URL, nil).ListRelationships(context.Background(),
				RelationshipQuery{Type: family.RelationshipSpouse, Person: annaID})
			if err != nil {
				t.Fatalf("ListRelationships: %v", err)
			}
			if gotQuery != "person="+annaID+"&type=spouse" {
				t.Errorf("query = %q", gotQuery)
			}
			if len(rels) != 1 || !rels[0].Involves(annaID) {
				t.Errorf("rels = %+v", rels)
			}
		})
	}
}

func TestListRelationshipsDecodeErrorNamesPage(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			io.WriteString(w, `{"count":2,"next":null,"previous":null,"results":"unavailable"}`)
			return
		}
		fmt.Fprintf(w, `{"count":2,"next":"%s/api/relationships/?page=2","previous":null,"results":[{"id":"r1","relationship_type":"spouse","person1":%q,"person2":%q}]}`,
			server.URL, annaID, karlID)
	}))
	defer server.Close()

	_, err := testClient(t, server.URL, nil).ListRelationships(context.Background(), RelationshipQuery{})
	var apiErr *integrations.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ListRelationships() = %v, want *APIError", err)
	}
	if want := server.URL + "/api/relationships/?page=2"; apiErr.URL != want {
		t.Errorf("APIError.URL = %q, want %q", apiErr.URL, want)
	}
}

func TestCreateRelationships(t *testing.T) {
	var got map[string]string
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		got = nil
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"r1","relationship_type":"spouse"}`)
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)
	ctx := context.Background()

	if _, err := c.CreateSpouseRelationship(ctx, SpouseRequest{Person1: annaID, Person2: karlID}); err != nil {
		t.Fatalf("CreateSpouseRelationship: %v", err)
	}
	if gotPath != "/api/relationships/create_spouse_relationship/" {
		t.Errorf("path = %s", gotPath)
	}
	if _, present := got["marriage_date"]; present {
		t.Error("blank marriage_date should be omitted")
	}

	if _, err := c.CreateSpouseRelationship(ctx, SpouseRequest{Person1: annaID, Person2: karlID, MarriageDate: "1975-06-21"}); err != nil {
		t.Fatalf("CreateSpouseRelationship: %v", err)
	}
	if got["marriage_date"] != "1975-06-21" {
		t.Errorf("marriage_date = %q", got["marriage_date"])
	}

	if _, err := c.CreateParentChildRelationship(ctx, ParentChildRequest{Parent: annaID, Child: childID}); err != nil {
		t.Fatalf("CreateParentChildRelationship: %v", err)
	}
	if gotPath != "/api/relationships/create_parent_child_relationship/" || got["parent"] != annaID || got["child"] != childID {
		t.Errorf("parent_child request: %s %v", gotPath, got)
	}

	if _, err := c.CreateSpouseRelationship(ctx, SpouseRequest{Person1: annaID, Person2: karlID, MarriageDate: "21.06.1975"}); !ferrors.Is(err, ferrors.ErrCodeInvalidDate) {
		t.Errorf("bad marriage date error = %v", err)
	}
}

func TestDescendantsAndAncestors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/descendants/"):
			fmt.Fprintf(w, `[{"id":%q,"full_name":"Kind","gender":"O"}]`, childID)
		case strings.HasSuffix(r.URL.Path, "/ancestors/"):
			io.WriteString(w, `[]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)
	d, err := c.Descendants(context.Background(), annaID)
	if err != nil || len(d) != 1 || d[0].ID != childID {
		t.Errorf("Descendants = %+v, %v", d, err)
	}
	a, err := c.Ancestors(context.Background(), annaID)
	if err != nil || len(a) != 0 {
		t.Errorf("Ancestors = %+v, %v", a, err)
	}
}
