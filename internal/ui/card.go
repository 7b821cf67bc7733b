package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/scout/internal/highlight"
	"github.com/Aman-CERP/scout/internal/searchapi"
)

// Fields that may carry service highlights.
const (
	fieldName        = "name"
	fieldSector      = "sector"
	fieldDescription = "description"
	fieldLocation    = "location"
)

// styled renders matched runs with st.Mark and the rest with base.
func styled(r searchapi.Result, field string, base lipgloss.Style, st Styles) string {
	return highlight.Render(highlight.Field(r, field),
		func(s string) string { return base.Render(s) },
		func(s string) string { return st.Mark.Render(s) })
}

// cardLines lays out one result: name with badges, description, facts,
// website and the fields the query matched.
func cardLines(r searchapi.Result, st Styles) []string {
	s := r.Startup
	sep := st.Dim.Render(" · ")

	head := []string{styled(r, fieldName, st.Title, st)}
	if s.Sector != "" {
		head = append(head, styled(r, fieldSector, st.Badge, st))
	}
	if s.FundingStage != "" {
		head = append(head, st.Badge.Render(s.FundingStage))
	}
	if score := ScoreLabel(r.Score); score != "" {
		head = append(head, st.Score.Render("★ "+score))
	}
	lines := []string{strings.Join(head, sep)}

	if s.Description != "" || r.Highlights[fieldDescription] != "" {
		lines = append(lines, styled(r, fieldDescription, lipgloss.NewStyle(), st))
	}

	var facts []string
	if s.Location != "" {
		facts = append(facts, st.Label.Render("Location: ")+styled(r, fieldLocation, lipgloss.NewStyle(), st))
	}
	if s.FundingAmount != "" {
		facts = append(facts, st.Label.Render("Funding: ")+s.FundingAmount)
	}
	if s.Employees != "" {
		facts = append(facts, st.Label.Render("Employees: ")+s.Employees)
	}
	if s.Founded > 0 {
		facts = append(facts, st.Label.Render("Founded: ")+fmt.Sprint(s.Founded))
	}
	if len(facts) > 0 {
		lines = append(lines, strings.Join(facts, sep))
	}

	if s.Website != "" {
		lines = append(lines, st.Label.Render("Website: ")+websiteURL(s.Website))
	}
	if len(r.MatchedFields) > 0 {
		lines = append(lines, st.Dim.Render("Matched in: "+strings.Join(r.MatchedFields, ", ")))
	}
	return lines
}

// renderCard draws a result as a bordered card no wider than width.
func renderCard(r searchapi.Result, st Styles, width int) string {
	card := st.Card
	if width > 0 {
		card = card.Width(width - card.GetHorizontalBorderSize())
	}
	return card.Render(strings.Join(cardLines(r, st), "\n"))
}

// websiteURL adds a scheme to bare host names the directory stores.
func websiteURL(site string) string {
	if strings.Contains(site, "://") {
		return site
	}
	return "https://" + site
}
