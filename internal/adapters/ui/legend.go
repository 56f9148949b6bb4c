// Package ui holds the presentation side of the locator: the color legend,
// the marker table, the detail-route selection sink and the status board.
package ui

import (
	"fmt"
	"saferoom-locator/internal/domain"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Pin colors match the marker icons.
var (
	PinBlue   = lipgloss.Color("#4285F4")
	PinRed    = lipgloss.Color("#EA4335")
	PinOrange = lipgloss.Color("#FB8C00")
	PinGreen  = lipgloss.Color("#34A853")
	Muted     = lipgloss.Color("#8a8f98")
)

var categoryColors = map[domain.MarkerCategory]lipgloss.Color{
	domain.CategorySelf:             PinBlue,
	domain.CategoryUnavailable:      PinRed,
	domain.CategoryPublicAvailable:  PinOrange,
	domain.CategoryPrivateAvailable: PinGreen,
}

var categoryLabels = map[domain.MarkerCategory]string{
	domain.CategorySelf:             "Your location",
	domain.CategoryUnavailable:      "Occupied / unavailable",
	domain.CategoryPublicAvailable:  "Public shelter, open",
	domain.CategoryPrivateAvailable: "Private safe room, open",
}

var legendOrder = []domain.MarkerCategory{
	domain.CategorySelf,
	domain.CategoryUnavailable,
	domain.CategoryPublicAvailable,
	domain.CategoryPrivateAvailable,
}

func Label(c domain.MarkerCategory) string { return categoryLabels[c] }

func pin(c domain.MarkerCategory) string {
	return lipgloss.NewStyle().Foreground(categoryColors[c]).Bold(true).Render("●")
}

// Legend renders the color key shown next to the map.
func Legend() string {
	title := lipgloss.NewStyle().Bold(true).MarginBottom(1).Render("Map legend")

	rows := make([]string, 0, len(legendOrder))
	for _, c := range legendOrder {
		label := lipgloss.NewStyle().Foreground(categoryColors[c]).Render(Label(c))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center, pin(c), " ", label))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(0, 1)

	return box.Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, rows...)...))
}

// MarkerTable renders one row per marker. shelters supplies titles and
// capacity; markers without a matching shelter show only their category.
func MarkerTable(markers []domain.Marker, shelters []domain.Shelter) string {
	if len(markers) == 0 {
		return lipgloss.NewStyle().Foreground(Muted).Render("no markers placed") + "\n"
	}

	byID := make(map[string]domain.Shelter, len(shelters))
	for _, s := range shelters {
		byID[s.ID] = s
	}

	headers := []string{"", "Shelter", "Kind", "Capacity", "Position"}
	rows := make([][]string, 0, len(markers))
	for _, m := range markers {
		title, capacity := "(you)", ""
		if m.Category != domain.CategorySelf {
			s := byID[m.ShelterID]
			title = s.Title
			if title == "" {
				title = m.ShelterID
			}
			capacity = fmt.Sprintf("%d", s.Capacity)
			if m.Accessible {
				title += " ♿"
			}
		}
		rows = append(rows, []string{pin(m.Category), title, Label(m.Category), capacity, m.Position.String()})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		widths[i] += 2
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	sep := lipgloss.NewStyle().Foreground(Muted)

	var sb strings.Builder
	writeRow := func(style lipgloss.Style, cells []string) {
		for i, c := range cells {
			sb.WriteString(style.Width(widths[i]).Render(c))
			if i < len(cells)-1 {
				sb.WriteString(sep.Render("|"))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(headerStyle, headers)
	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}
	sb.WriteString(sep.Render(strings.Repeat("-", total)) + "\n")
	for _, row := range rows {
		writeRow(cellStyle, row)
	}

	return sb.String()
}
