package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/forms"
)

var testNow = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

func TestPeopleTable(t *testing.T) {
	out := peopleTable([]family.Person{
		{ID: "a1", FullName: "Anna Schmidt", Gender: family.GenderFemale, DateOfBirth: family.NewDate(1990, time.March, 1)},
		{ID: "b2", FullName: "Johann Becker", Gender: family.GenderMale},
	}, testNow)

	for _, want := range []string{"Name", "Anna Schmidt", "Female", "1990-03-01", "34", "Johann Becker", "b2"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestRelationshipsTable(t *testing.T) {
	out := relationshipsTable([]family.Relationship{
		{Type: family.RelationshipSpouse, Person1Name: "Anna", Person2Name: "Johann", MarriageDate: family.NewDate(1948, time.June, 12)},
		{Type: family.RelationshipParentChild, Person1Name: "Anna", Person2Name: "Karl"},
	})
	for _, want := range []string{"Spouse", "Parent-Child", "1948-06-12", "yes", "Karl"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestPersonCard(t *testing.T) {
	p := family.PersonDetail{
		Person: family.Person{ID: "a1", FullName: "Anna Schmidt", Gender: family.GenderFemale, Notes: "emigrated 1950"},
	}
	p.Children = []family.Person{{ID: "c1", FullName: "Karl Schmidt"}}

	out := personCard(p, testNow)
	for _, want := range []string{"Anna Schmidt", "emigrated 1950", "Spouses", "none recorded", "Karl Schmidt"} {
		if !strings.Contains(out, want) {
			t.Errorf("card missing %q:\n%s", want, out)
		}
	}
}

func TestPersonFlagsApplyOnlyChanged(t *testing.T) {
	var flags personFlags
	cmd := &cobra.Command{Use: "edit"}
	flags.register(cmd.Flags())
	if err := cmd.Flags().Parse([]string{"--gender", "other", "--died", "2001-02-03"}); err != nil {
		t.Fatal(err)
	}

	form := forms.PersonForm{FullName: "Anna", Gender: "F", DateOfBirth: "1921-04-02", Notes: "kept"}
	if err := flags.apply(cmd.Flags(), &form); err != nil {
		t.Fatal(err)
	}

	want := forms.PersonForm{FullName: "Anna", Gender: "O", DateOfBirth: "1921-04-02", DateOfDeath: "2001-02-03", Notes: "kept"}
	if form != want {
		t.Errorf("form = %+v, want %+v", form, want)
	}
}

func TestNormalizeGender(t *testing.T) {
	for in, want := range map[string]string{"M": "M", "female": "F", "x": "x"} {
		if got := normalizeGender(in); got != want {
			t.Errorf("normalizeGender(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadPhoto(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anna.png")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		t.Fatal(err)
	}

	photo, err := loadPhoto(path)
	if err != nil {
		t.Fatalf("loadPhoto: %v", err)
	}
	if photo.Filename != "anna.png" || photo.ContentType != "image/png" {
		t.Errorf("photo = %q %q", photo.Filename, photo.ContentType)
	}

	if _, err := loadPhoto(filepath.Join(dir, "missing.jpg")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := loadPhoto(dir); err == nil {
		t.Error("expected error for directory")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		format, output string
		multi          bool
		want           string
	}{
		{"svg", "", false, ""},
		{"nodes", "", false, ""},
		{"png", "", false, "id.png"},
		{"svg", "", true, "id.svg"},
		{"nodes", "", true, "id.nodes.json"},
		{"svg", "out/tree.svg", false, "out/tree.svg"},
		{"png", "out/tree.svg", true, "out/tree.png"},
	}
	for _, tt := range tests {
		if got := outputPath("id", tt.format, tt.output, tt.multi); got != tt.want {
			t.Errorf("outputPath(%q, %q, %v) = %q, want %q", tt.format, tt.output, tt.multi, got, tt.want)
		}
	}
}
