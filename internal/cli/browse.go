package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/integrations/familyapi"
)

var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listFilterStyle = lipgloss.NewStyle().Foreground(colorCyan)
)

// browseCommand opens the interactive people browser.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse family members interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			people, err := withSpinner(ctx, "Loading family members...", func(ctx context.Context) ([]family.Person, error) {
				return s.api.AllPersons(ctx, familyapi.PersonQuery{})
			})
			if err != nil {
				return fmt.Errorf("list people: %w", err)
			}
			if len(people) == 0 {
				printInfo("No family members recorded")
				return nil
			}

			load := func(id string) tea.Cmd {
				return func() tea.Msg {
					d, err := s.api.GetPersonDetail(ctx, id, false)
					return detailMsg{detail: d, err: err}
				}
			}
			_, err = tea.NewProgram(newBrowseModel(people, load, time.Now())).Run()
			return err
		},
	}
}

// detailMsg carries a loaded person back into the browser.
type detailMsg struct {
	detail *family.PersonDetail
	err    error
}

// browseModel is the bubbletea model behind "familytree browse".
//
// The list view shows the filtered people with a cursor; "/" starts typing
// a name filter. Enter loads the selected person's detail view; esc goes
// back.
type browseModel struct {
	people  []family.Person
	visible []family.Person

	filter    string
	filtering bool

	cursor int
	offset int
	height int

	detail  *family.PersonDetail
	loading bool
	err     error

	load func(id string) tea.Cmd
	now  time.Time
}

func newBrowseModel(people []family.Person, load func(string) tea.Cmd, now time.Time) browseModel {
	return browseModel{
		people:  people,
		visible: people,
		height:  15,
		load:    load,
		now:     now,
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
		if m.cursor >= m.offset+m.height {
			m.offset = m.cursor - m.height + 1
		}
		return m, nil
	case detailMsg:
		m.loading = false
		m.detail, m.err = msg.detail, msg.err
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.filtering:
			return m.updateFilter(msg), nil
		case m.detail != nil || m.err != nil:
			return m.updateDetail(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m browseModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "/":
		m.filtering = true
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}
	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}
	case "enter":
		if len(m.visible) == 0 || m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.load(m.visible[m.cursor].ID)
	}
	return m, nil
}

func (m browseModel) updateFilter(msg tea.KeyMsg) browseModel {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
	case tea.KeyEsc:
		m.filtering = false
		m.filter = ""
	case tea.KeyBackspace:
		if r := []rune(m.filter); len(r) > 0 {
			m.filter = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.filter += string(msg.Runes)
	default:
		return m
	}
	m.visible = family.FilterPersons(m.people, family.Filter{Name: m.filter})
	m.cursor, m.offset = 0, 0
	return m
}

func (m browseModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace", "left", "h":
		m.detail, m.err = nil, nil
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	switch {
	case m.err != nil:
		b.WriteString(StyleTitle.Render("Something went wrong") + "\n\n")
		b.WriteString(StyleWarning.Render(m.err.Error()) + "\n\n")
		b.WriteString(listDimStyle.Render("esc back  q quit"))
		return b.String()
	case m.detail != nil:
		b.WriteString(personCard(*m.detail, m.now) + "\n")
		b.WriteString(listDimStyle.Render("esc back  q quit"))
		return b.String()
	}

	b.WriteString(StyleTitle.Render("Family Members") + "\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  / filter  q quit") + "\n")
	switch {
	case m.filtering:
		b.WriteString(listFilterStyle.Render("/"+m.filter+"▏") + "\n")
	case m.filter != "":
		b.WriteString(listDimStyle.Render("filter: "+m.filter) + "\n")
	default:
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.visible) == 0 {
		b.WriteString(listDimStyle.Render("  No family members match") + "\n")
		return b.String()
	}

	end := min(m.offset+m.height, len(m.visible))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		p := m.visible[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		lifespan := p.DateOfBirth.YearString()
		if !p.DateOfDeath.IsZero() {
			lifespan += "–" + p.DateOfDeath.YearString()
		}
		rows = append(rows, []string{cursor, p.FullName, p.Gender.Label(), orDash(lifespan)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Gender", "Lifespan").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			idx := m.offset + row
			if idx == m.cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 3 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render() + "\n\n")
	status := fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.visible))
	if m.loading {
		status += "  loading..."
	}
	b.WriteString(listDimStyle.Render(status))

	return b.String()
}
