package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/familytree/pkg/family"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
	colorPink   = lipgloss.Color("211") // Female
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	genderStyles = map[family.Gender]lipgloss.Style{
		family.GenderMale:   lipgloss.NewStyle().Foreground(colorBlue),
		family.GenderFemale: lipgloss.NewStyle().Foreground(colorPink),
		family.GenderOther:  lipgloss.NewStyle().Foreground(colorGreen),
	}
)

// headerRow is the row index lipgloss tables pass to StyleFunc for headers.
const headerRow = -1

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Records
// =============================================================================

func keyValue(key, value string) string {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	return keyStyle.Render(key) + " " + StyleValue.Render(value)
}

func genderText(g family.Gender) string {
	if st, ok := genderStyles[g]; ok {
		return st.Render(g.Label())
	}
	return StyleDim.Render(g.Label())
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// peopleTable renders people as a bordered table.
func peopleTable(people []family.Person, now time.Time) string {
	rows := make([][]string, 0, len(people))
	for _, p := range people {
		age := ""
		if a, ok := p.AgeAt(now); ok {
			age = fmt.Sprint(a)
		}
		rows = append(rows, []string{
			p.FullName,
			p.Gender.Label(),
			orDash(p.DateOfBirth.String()),
			orDash(p.DateOfDeath.String()),
			orDash(age),
			p.ID,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Gender", "Born", "Died", "Age", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return styleHeader
			case col == 5:
				return StyleDim
			default:
				return lipgloss.NewStyle()
			}
		}).
		Render()
}

// relationshipsTable renders relationships as a bordered table.
func relationshipsTable(rels []family.Relationship) string {
	rows := make([][]string, 0, len(rels))
	for _, r := range rels {
		active := ""
		if r.ActiveMarriage() {
			active = "yes"
		}
		rows = append(rows, []string{
			r.Type.Label(),
			r.Person1Name,
			r.Person2Name,
			orDash(r.MarriageDate.String()),
			orDash(r.DivorceDate.String()),
			active,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Type", "Person 1", "Person 2", "Married", "Divorced", "Active").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// personCard renders a person with one level of relatives.
func personCard(p family.PersonDetail, now time.Time) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(p.FullName) + "\n")
	b.WriteString(keyValue("ID", p.ID) + "\n")
	b.WriteString(keyValue("Gender", genderText(p.Gender)) + "\n")
	b.WriteString(keyValue("Born", orDash(p.DateOfBirth.String())) + "\n")
	if !p.DateOfDeath.IsZero() {
		b.WriteString(keyValue("Died", p.DateOfDeath.String()) + "\n")
	}
	if age, ok := p.AgeAt(now); ok {
		b.WriteString(keyValue("Age", fmt.Sprint(age)) + "\n")
	}
	b.WriteString(keyValue("Status", p.Status()) + "\n")
	if p.ProfilePhoto != "" {
		b.WriteString(keyValue("Photo", StyleLink.Render(p.ProfilePhoto)) + "\n")
	}
	if p.Notes != "" {
		b.WriteString(keyValue("Notes", p.Notes) + "\n")
	}

	section := func(title string, names []string) {
		b.WriteString("\n" + styleHeader.Render(title) + "\n")
		if len(names) == 0 {
			b.WriteString("  " + StyleDim.Render("none recorded") + "\n")
			return
		}
		for _, n := range names {
			b.WriteString("  " + n + "\n")
		}
	}

	spouses := make([]string, len(p.Spouses))
	for i, s := range p.Spouses {
		line := s.FullName + StyleDim.Render(" "+s.ID)
		if !s.MarriageDate.IsZero() {
			line += StyleDim.Render(" · married " + s.MarriageDate.String())
		}
		if !s.DivorceDate.IsZero() {
			line += StyleDim.Render(" · divorced " + s.DivorceDate.String())
		}
		spouses[i] = line
	}
	section("Spouses", spouses)
	section("Parents", names(p.Parents))
	section("Children", names(p.Children))
	return b.String()
}

func names(people []family.Person) []string {
	out := make([]string, len(people))
	for i, p := range people {
		out[i] = p.FullName + StyleDim.Render(" "+p.ID)
	}
	return out
}
