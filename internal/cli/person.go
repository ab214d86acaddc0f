package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	ferrors "github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/forms"
)

// personFlags are the editable person fields shared by add and edit.
type personFlags struct {
	name   string
	gender string
	born   string
	died   string
	notes  string
	photo  string
}

func (f *personFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.name, "name", "n", "", "full name")
	fs.StringVarP(&f.gender, "gender", "g", "", "gender: M, F or O (male, female, other)")
	fs.StringVar(&f.born, "born", "", "date of birth (YYYY-MM-DD)")
	fs.StringVar(&f.died, "died", "", "date of death (YYYY-MM-DD)")
	fs.StringVar(&f.notes, "notes", "", "free-form notes")
	fs.StringVar(&f.photo, "photo", "", "path to a profile photo")
}

// apply copies the flags the user set onto form. Unset flags leave the
// form's value alone, so edit keeps the current record's fields.
func (f *personFlags) apply(fs *pflag.FlagSet, form *forms.PersonForm) error {
	if fs.Changed("name") {
		form.FullName = f.name
	}
	if fs.Changed("gender") {
		form.Gender = normalizeGender(f.gender)
	}
	if fs.Changed("born") {
		form.DateOfBirth = f.born
	}
	if fs.Changed("died") {
		form.DateOfDeath = f.died
	}
	if fs.Changed("notes") {
		form.Notes = f.notes
	}
	if f.photo != "" {
		photo, err := loadPhoto(f.photo)
		if err != nil {
			return err
		}
		form.Photo = photo
	}
	return nil
}

// normalizeGender accepts long names; anything unknown is passed through
// for the validator to reject.
func normalizeGender(s string) string {
	if g, err := family.ParseGender(s); err == nil {
		return string(g)
	}
	return s
}

// loadPhoto reads a local image for upload.
func loadPhoto(path string) (*forms.Photo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "photo")
	}
	if info.IsDir() {
		return nil, ferrors.New(ferrors.ErrCodeInvalidInput, "photo %s is a directory", path)
	}
	if info.Size() > forms.MaxUploadSize {
		return nil, ferrors.New(ferrors.ErrCodeInvalidInput, "photo %s is larger than %d MB", path, forms.MaxUploadSize>>20)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "read photo")
	}
	return &forms.Photo{
		Filename:    filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

// printFormErrors prints field errors one per line.
func printFormErrors(err error) {
	var fe forms.Errors
	if !errors.As(err, &fe) {
		return
	}
	for _, field := range slices.Sorted(maps.Keys(fe)) {
		printError("%s: %s", field, fe[field])
	}
}

func (c *CLI) addCommand() *cobra.Command {
	var flags personFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a family member",
		Example: `  familytree add --name "Anna Schmidt" --gender F --born 1921-04-02
  familytree add -n "Johann Schmidt" -g male --photo johann.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form := forms.NewPersonForm()
			if err := flags.apply(cmd.Flags(), &form); err != nil {
				return err
			}
			return c.savePerson(cmd.Context(), "", form)
		},
	}

	flags.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func (c *CLI) editCommand() *cobra.Command {
	var flags personFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update a family member",
		Long: `Update a family member. Only the fields given as flags change;
the rest are taken from the current record.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), args[0], func(form *forms.PersonForm) error {
				return flags.apply(cmd.Flags(), form)
			})
		},
	}

	flags.register(cmd.Flags())

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, id string, edit func(*forms.PersonForm) error) error {
	s, err := c.newSession(ctx)
	if err != nil {
		return err
	}
	p, err := s.api.GetPerson(ctx, id, true)
	s.Close()
	if err != nil {
		return fmt.Errorf("load %s: %w", id, err)
	}
	if p == nil {
		return ferrors.New(ferrors.ErrCodePersonNotFound, "person %s not found", id)
	}

	form := forms.FromPerson(*p)
	if err := edit(&form); err != nil {
		return err
	}
	return c.savePerson(ctx, id, form)
}

// savePerson validates form and creates (id == "") or updates a person.
func (c *CLI) savePerson(ctx context.Context, id string, form forms.PersonForm) error {
	if err := form.Validate(); err != nil {
		printFormErrors(err)
		return ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "invalid person")
	}

	s, err := c.newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	msg, verb := "Creating...", "Created"
	if id != "" {
		msg, verb = "Saving...", "Updated"
	}
	p, err := withSpinner(ctx, msg, func(ctx context.Context) (*family.Person, error) {
		if id == "" {
			return s.api.CreatePerson(ctx, form)
		}
		return s.api.UpdatePerson(ctx, id, form)
	})
	if err != nil {
		return err
	}

	printSuccess("%s %s", verb, StyleValue.Render(p.FullName))
	printDetail("ID: %s", p.ID)
	if id == "" {
		printNextStep("Link family", "familytree relate parent --parent <id> --child "+p.ID)
	}
	return nil
}

func (c *CLI) deleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a family member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDelete(cmd.Context(), cmd.InOrStdin(), args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func (c *CLI) runDelete(ctx context.Context, in io.Reader, id string, yes bool) error {
	s, err := c.newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	name := id
	if !yes {
		p, err := s.api.GetPerson(ctx, id, true)
		if err != nil {
			return fmt.Errorf("load %s: %w", id, err)
		}
		if p != nil {
			name = p.FullName
		}
		if !confirm(in, fmt.Sprintf("Delete %s and their relationships?", name)) {
			printInfo("Cancelled")
			return nil
		}
	}

	if _, err := withSpinner(ctx, "Deleting...", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.api.DeletePerson(ctx, id)
	}); err != nil {
		return err
	}
	printSuccess("Deleted %s", name)
	return nil
}

// confirm asks a yes/no question on stdout and reads the answer from in.
func confirm(in io.Reader, question string) bool {
	fmt.Print(question + " " + StyleDim.Render("[y/N]") + " ")
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
