package highlight

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/scout/internal/searchapi"
)

func TestSanitize_KeepsOnlyBareMark(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "class attribute dropped",
			in:   `<mark class="bg-yellow-200 px-1 rounded">AI</mark> diagnostics`,
			want: `<mark>AI</mark> diagnostics`,
		},
		{
			name: "script removed",
			in:   `safe<script>alert(1)</script>`,
			want: `safe`,
		},
		{
			name: "other tags unwrapped",
			in:   `<b>bold</b> and <a href="x">link</a>`,
			want: `bold and link`,
		},
		{
			name: "onclick on mark dropped",
			in:   `<mark onclick="x()">hit</mark>`,
			want: `<mark>hit</mark>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestParse_SplitsMatchedRuns(t *testing.T) {
	// Given: service markup with two matches
	in := `<mark class="bg-yellow-200 px-1 rounded">AI</mark> tutoring for <mark>AI</mark>-curious students`

	// When: parsing
	segs := Parse(in)

	// Then: matched and unmatched runs alternate
	assert.Equal(t, []Segment{
		{Text: "AI", Matched: true},
		{Text: " tutoring for ", Matched: false},
		{Text: "AI", Matched: true},
		{Text: "-curious students", Matched: false},
	}, segs)
	assert.Equal(t, "AI tutoring for AI-curious students", Plain(segs))
	assert.True(t, Matched(segs))
}

func TestParse_UnescapesEntities(t *testing.T) {
	segs := Parse(`Tom &amp; Jerry's <mark>R&D</mark>`)

	assert.Equal(t, "Tom & Jerry's R&D", Plain(segs))
	assert.Equal(t, Segment{Text: "R&D", Matched: true}, segs[len(segs)-1])
}

func TestParse_HandlesUnbalancedAndEmpty(t *testing.T) {
	assert.Nil(t, Parse(""))
	assert.Equal(t, []Segment{{Text: "plain"}}, Parse("plain"))
	assert.Equal(t, []Segment{{Text: "x"}, {Text: "open", Matched: true}}, Parse("x<mark>open"))
	assert.Equal(t, []Segment{{Text: "stray close"}}, Parse("stray</mark> close"))
	assert.Equal(t, []Segment{{Text: "ab", Matched: true}}, Parse("<mark>a</mark><mark>b</mark>"))
}

func TestField_PrefersHighlight(t *testing.T) {
	r := searchapi.Result{
		Startup: searchapi.Startup{Name: "NeuralMed", Sector: "HealthTech"},
		Highlights: map[string]string{
			"name": "<mark>Neural</mark>Med",
		},
	}

	assert.Equal(t, []Segment{{Text: "Neural", Matched: true}, {Text: "Med"}}, Field(r, "name"))
	assert.Equal(t, []Segment{{Text: "HealthTech"}}, Field(r, "sector"))
	assert.Nil(t, Field(r, "location"))
}

func TestField_RawTextIsNotParsed(t *testing.T) {
	r := searchapi.Result{Startup: searchapi.Startup{Description: "uses <mark> tags literally"}}

	assert.Equal(t, "uses <mark> tags literally", Plain(Field(r, "description")))
}

// assertNoControl fails when text holds a control character other than tab
// or newline.
func assertNoControl(t *testing.T, text string) {
	t.Helper()
	for _, r := range text {
		if r == '\t' || r == '\n' {
			continue
		}
		assert.False(t, unicode.IsControl(r), "control character %U in %q", r, text)
	}
}

func TestParse_StripsTerminalEscapes(t *testing.T) {
	// Given: highlight markup carrying a title-setting OSC and a screen clear
	markup := "\x1b]0;pwned\x07<mark>AI</mark>\x1b[2J rest\x9b1m"

	// When: parsing
	segs := Parse(markup)

	// Then: the match and the visible text survive without any escape
	for _, s := range segs {
		assertNoControl(t, s.Text)
	}
	assert.Contains(t, segs, Segment{Text: "AI", Matched: true})
	assert.Contains(t, Plain(segs), "rest")
	assert.NotContains(t, Plain(segs), "[2J")
}

func TestParse_StripsEscapesFromEntities(t *testing.T) {
	segs := Parse("<mark>AI</mark>&#27;[31m red&#7;")

	for _, s := range segs {
		assertNoControl(t, s.Text)
	}
	assert.Contains(t, Plain(segs), "red")
}

func TestField_RawTextIsStripped(t *testing.T) {
	// Given: a field with no highlight that carries escape sequences
	r := searchapi.Result{Startup: searchapi.Startup{
		Description: "\x1b[31mred\x1b[0m text\twith tab\r\x07",
		Location:    "\x1b[2J",
	}}

	// When: taking its segments
	segs := Field(r, "description")

	// Then: only the printable text and the tab remain
	assert.Equal(t, []Segment{{Text: "red text\twith tab"}}, segs)

	// And: a value that was nothing but escapes has no segments
	assert.Nil(t, Field(r, "location"))
}

func TestRender_AppliesStyles(t *testing.T) {
	segs := []Segment{{Text: "a"}, {Text: "b", Matched: true}}

	out := Render(segs, nil, func(s string) string { return "[" + s + "]" })

	assert.Equal(t, "a[b]", out)
}
