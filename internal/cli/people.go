package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/integrations/familyapi"
)

// peopleCommand lists everyone, filtered locally.
func (c *CLI) peopleCommand() *cobra.Command {
	var (
		filter family.Filter
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "people",
		Short: "List family members",
		Long: `List every family member recorded by the service.

--name and --gender filter the fetched list locally: the name matches
anywhere in the full name ignoring case, and the gender must match exactly
(M, F or O) unless it is "all".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if filter.Gender != family.GenderAll && filter.Gender != "" && !family.Gender(filter.Gender).Valid() {
				return fmt.Errorf("--gender must be M, F, O or all, got %q", filter.Gender)
			}
			return c.runPeople(cmd.Context(), filter, asJSON)
		},
	}

	cmd.Flags().StringVarP(&filter.Name, "name", "n", "", "filter by name (case-insensitive substring)")
	cmd.Flags().StringVarP(&filter.Gender, "gender", "g", family.GenderAll, "filter by gender: M, F, O or all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

func (c *CLI) runPeople(ctx context.Context, filter family.Filter, asJSON bool) error {
	s, err := c.newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	prog := newProgress(c.Logger)
	all, err := withSpinner(ctx, "Loading family members...", func(ctx context.Context) ([]family.Person, error) {
		return s.api.AllPersons(ctx, familyapi.PersonQuery{})
	})
	if err != nil {
		return fmt.Errorf("list people: %w", err)
	}
	prog.done(fmt.Sprintf("Loaded %d people", len(all)))

	people := family.FilterPersons(all, filter)
	if asJSON {
		return printJSON(people)
	}
	if len(people) == 0 {
		if filter.Active() {
			printInfo("No family members match")
		} else {
			printInfo("No family members recorded")
			printNextStep("Add one with", "familytree add --name \"Full Name\" --gender F")
		}
		return nil
	}
	fmt.Println(peopleTable(people, time.Now()))
	printDetail("%d of %d", len(people), len(all))
	return nil
}

// searchCommand asks the service for people by name.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		gender string
		page   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <name>",
		Short: "Search family members by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := familyapi.PersonQuery{Name: args[0], Gender: gender, Page: page}
			return c.runSearch(cmd.Context(), q, asJSON)
		},
	}

	cmd.Flags().StringVarP(&gender, "gender", "g", family.GenderAll, "restrict to gender: M, F, O or all")
	cmd.Flags().IntVar(&page, "page", 1, "result page")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, q familyapi.PersonQuery, asJSON bool) error {
	s, err := c.newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := withSpinner(ctx, fmt.Sprintf("Searching for %q...", q.Name), func(ctx context.Context) (*family.Page[family.Person], error) {
		return s.api.ListPersons(ctx, q)
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if asJSON {
		return printJSON(res)
	}
	if len(res.Results) == 0 {
		printInfo("No results for %q", q.Name)
		return nil
	}
	fmt.Println(peopleTable(res.Results, time.Now()))
	printDetail("%d result(s)", res.Count)
	if res.HasNext() {
		printNextStep("More results", fmt.Sprintf("familytree search %q --page %d", q.Name, max(q.Page, 1)+1))
	}
	return nil
}

// showCommand prints one person with their relatives.
func (c *CLI) showCommand() *cobra.Command {
	var (
		refresh bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a family member with spouses, parents and children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShow(cmd.Context(), args[0], refresh, asJSON)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached responses")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func (c *CLI) runShow(ctx context.Context, id string, refresh, asJSON bool) error {
	s, err := c.newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := withSpinner(ctx, "Loading...", func(ctx context.Context) (*family.PersonDetail, error) {
		return s.api.GetPersonDetail(ctx, id, refresh)
	})
	if err != nil {
		return fmt.Errorf("show %s: %w", id, err)
	}
	if p == nil || p.ID == "" {
		printWarning("Person %s not found", id)
		return nil
	}

	if asJSON {
		return printJSON(p)
	}
	fmt.Println(personCard(*p, time.Now()))
	printNextStep("Family tree", "familytree tree "+p.ID)
	return nil
}

// lineageCommand builds "descendants" and "ancestors".
func (c *CLI) lineageCommand(use, short string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLineage(cmd.Context(), use, args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (c *CLI) runLineage(ctx context.Context, which, id string, asJSON bool) error {
	s, err := c.newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	fetch := s.api.Descendants
	if which == "ancestors" {
		fetch = s.api.Ancestors
	}
	people, err := withSpinner(ctx, "Loading "+which+"...", func(ctx context.Context) ([]family.Person, error) {
		return fetch(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("%s of %s: %w", which, id, err)
	}

	if asJSON {
		return printJSON(people)
	}
	if len(people) == 0 {
		printInfo("No %s recorded", which)
		return nil
	}
	fmt.Println(peopleTable(people, time.Now()))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
