package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const (
	annaID   = "0b8e9f6a-3c1d-4e2f-9a7b-1c2d3e4f5a6b"
	johannID = "7d6c5b4a-3e2f-4a1b-8c9d-0e1f2a3b4c5d"
)

// fakeService is a minimal family-tree service.
type fakeService struct {
	mu       sync.Mutex
	queries  []string
	created  map[string]string
	relation map[string]any
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/persons/":
		f.queries = append(f.queries, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"count":2,"next":null,"previous":null,"results":[
			{"id":"` + annaID + `","full_name":"Anna Schmidt","gender":"F","date_of_birth":"1921-04-02"},
			{"id":"` + johannID + `","full_name":"Johann Becker","gender":"M"}]}`))
	case r.Method == http.MethodPost && r.URL.Path == "/persons/":
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.created = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			f.created[k] = v[0]
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"` + annaID + `","full_name":"` + r.FormValue("full_name") + `","gender":"` + r.FormValue("gender") + `"}`))
	case r.Method == http.MethodPost && r.URL.Path == "/relationships/create_parent_child_relationship/":
		_ = json.NewDecoder(r.Body).Decode(&f.relation)
		_, _ = w.Write([]byte(`{"id":"r1","relationship_type":"parent_child","person1":"` + annaID + `","person2":"` + johannID + `","person1_name":"Anna Schmidt","person2_name":"Johann Becker"}`))
	default:
		http.NotFound(w, r)
	}
}

func newFakeService(t *testing.T) (*fakeService, []string) {
	t.Helper()
	svc := &fakeService{}
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)
	cfg := filepath.Join(t.TempDir(), "missing.toml")
	return svc, []string{"--config", cfg, "--api-url", srv.URL, "--no-cache"}
}

func TestPeopleCommandFiltersLocally(t *testing.T) {
	svc, global := newFakeService(t)

	out := runCLI(t, append(global, "people", "--name", "SCHMIDT")...)
	if !strings.Contains(out, "Anna Schmidt") {
		t.Errorf("output missing match:\n%s", out)
	}
	if strings.Contains(out, "Johann Becker") {
		t.Errorf("output should not contain filtered person:\n%s", out)
	}
	for _, q := range svc.queries {
		if strings.Contains(q, "name=") {
			t.Errorf("people filter was sent to the service: %q", q)
		}
	}
}

func TestSearchCommandQueriesService(t *testing.T) {
	svc, global := newFakeService(t)

	runCLI(t, append(global, "search", "becker")...)
	if len(svc.queries) != 1 || svc.queries[0] != "name=becker" {
		t.Errorf("queries = %v, want [name=becker]", svc.queries)
	}
}

func TestPeopleCommandJSON(t *testing.T) {
	_, global := newFakeService(t)

	out := runCLI(t, append(global, "people", "--gender", "M", "--json")...)
	var people []map[string]any
	if err := json.Unmarshal([]byte(out), &people); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(people) != 1 || people[0]["id"] != johannID {
		t.Errorf("people = %v", people)
	}
}

func TestAddCommandSendsOnlySetFields(t *testing.T) {
	svc, global := newFakeService(t)

	out := runCLI(t, append(global, "add", "--name", "  Anna Schmidt ", "--gender", "female")...)
	if !strings.Contains(out, "Created") {
		t.Errorf("output = %q", out)
	}
	want := map[string]string{"full_name": "Anna Schmidt", "gender": "F"}
	if len(svc.created) != len(want) {
		t.Fatalf("sent fields = %v, want %v", svc.created, want)
	}
	for k, v := range want {
		if svc.created[k] != v {
			t.Errorf("%s = %q, want %q", k, svc.created[k], v)
		}
	}
}

func TestAddCommandRejectsInvalidForm(t *testing.T) {
	svc, global := newFakeService(t)

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs(append(global, "add", "--name", "Anna", "--born", "02/04/1921"))
	root.SetErr(&strings.Builder{})
	if _, err := captureStdout(t, root.Execute); err == nil {
		t.Fatal("expected validation error")
	}
	if svc.created != nil {
		t.Error("invalid form should not reach the service")
	}
}

func TestRelateParentCommand(t *testing.T) {
	svc, global := newFakeService(t)

	out := runCLI(t, append(global, "relate", "parent", "--parent", annaID, "--child", johannID)...)
	if !strings.Contains(out, "Parent-Child") {
		t.Errorf("output = %q", out)
	}
	if svc.relation["parent"] != annaID || svc.relation["child"] != johannID {
		t.Errorf("request = %v", svc.relation)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "familytree", "config.toml")

	runCLI(t, "--config", path, "config", "init")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	out := runCLI(t, "--config", path, "config", "show")
	if !strings.Contains(out, "[api]") || !strings.Contains(out, "[cache]") {
		t.Errorf("config show output:\n%s", out)
	}

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", path, "config", "init"})
	root.SetErr(&strings.Builder{})
	if _, err := captureStdout(t, root.Execute); err == nil {
		t.Error("init should refuse to overwrite without --force")
	}
}
