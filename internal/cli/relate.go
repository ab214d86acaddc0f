package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	ferrors "github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/forms"
	"github.com/matzehuels/familytree/pkg/integrations/familyapi"
)

// relateCommand records relationships between two existing people.
func (c *CLI) relateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relate",
		Short: "Record a marriage or a parent/child link",
	}

	cmd.AddCommand(c.relateSpouseCommand())
	cmd.AddCommand(c.relateParentCommand())

	return cmd
}

func (c *CLI) relateSpouseCommand() *cobra.Command {
	var married string

	cmd := &cobra.Command{
		Use:     "spouse <person1-id> <person2-id>",
		Short:   "Record that two people are married",
		Example: `  familytree relate spouse 3f0c... 9a41... --married 1948-06-12`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			form := forms.SpouseForm{Person1: args[0], Person2: args[1], MarriageDate: married}
			if err := form.Validate(); err != nil {
				printFormErrors(err)
				return ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "invalid relationship")
			}
			return c.createRelationship(cmd.Context(), func(ctx context.Context, api *familyapi.Client) (*family.Relationship, error) {
				return api.CreateSpouseRelationship(ctx, form.Request())
			})
		},
	}

	cmd.Flags().StringVar(&married, "married", "", "marriage date (YYYY-MM-DD)")

	return cmd
}

func (c *CLI) relateParentCommand() *cobra.Command {
	var parent, child string

	cmd := &cobra.Command{
		Use:   "parent",
		Short: "Record that one person is a parent of another",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form := forms.ParentChildForm{Parent: parent, Child: child}
			if err := form.Validate(); err != nil {
				printFormErrors(err)
				return ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "invalid relationship")
			}
			return c.createRelationship(cmd.Context(), func(ctx context.Context, api *familyapi.Client) (*family.Relationship, error) {
				return api.CreateParentChildRelationship(ctx, form.Request())
			})
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "id of the parent")
	cmd.Flags().StringVar(&child, "child", "", "id of the child")
	_ = cmd.MarkFlagRequired("parent")
	_ = cmd.MarkFlagRequired("child")

	return cmd
}

func (c *CLI) createRelationship(ctx context.Context, create func(context.Context, *familyapi.Client) (*family.Relationship, error)) error {
	s, err := c.newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	rel, err := withSpinner(ctx, "Saving relationship...", func(ctx context.Context) (*family.Relationship, error) {
		return create(ctx, s.api)
	})
	if err != nil {
		return err
	}

	printSuccess("Recorded %s relationship", rel.Type.Label())
	if rel.Person1Name != "" || rel.Person2Name != "" {
		printDetail("%s %s %s", rel.Person1Name, iconArrow, rel.Person2Name)
	}
	printDetail("ID: %s", rel.ID)
	return nil
}

// relationshipsCommand lists relationships.
func (c *CLI) relationshipsCommand() *cobra.Command {
	var (
		relType string
		person  string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "relationships",
		Short: "List recorded relationships",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := familyapi.RelationshipQuery{Type: family.RelationshipType(relType), Person: person}
			if relType != "" && !q.Type.Valid() {
				return ferrors.New(ferrors.ErrCodeInvalidInput, "--type must be %q or %q", family.RelationshipSpouse, family.RelationshipParentChild)
			}
			return c.runRelationships(cmd.Context(), q, asJSON)
		},
	}

	cmd.Flags().StringVarP(&relType, "type", "t", "", "relationship type: spouse or parent_child")
	cmd.Flags().StringVarP(&person, "person", "p", "", "only relationships involving this person id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func (c *CLI) runRelationships(ctx context.Context, q familyapi.RelationshipQuery, asJSON bool) error {
	s, err := c.newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	rels, err := withSpinner(ctx, "Loading relationships...", func(ctx context.Context) ([]family.Relationship, error) {
		return s.api.ListRelationships(ctx, q)
	})
	if err != nil {
		return fmt.Errorf("list relationships: %w", err)
	}

	if asJSON {
		return printJSON(rels)
	}
	if len(rels) == 0 {
		printInfo("No relationships recorded")
		return nil
	}
	fmt.Println(relationshipsTable(rels))
	return nil
}
