// Package highlight turns the service's highlight markup into styled text
// segments for the terminal.
//
// The search service returns fields with matched substrings wrapped in
// <mark> elements. That markup is treated as untrusted: it passes through a
// bluemonday policy that keeps only bare <mark> tags, and every segment,
// highlighted or raw, loses terminal escape sequences and control
// characters other than tab and newline before it is rendered.
package highlight

import (
	"html"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/microcosm-cc/bluemonday"

	"github.com/Aman-CERP/scout/internal/searchapi"
)

const (
	openTag  = "<mark>"
	closeTag = "</mark>"
)

var policy = newMarkPolicy()

func newMarkPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("mark")
	p.AllowNoAttrs().OnElements("mark")
	return p
}

// Segment is a run of text that is either inside a match or not.
type Segment struct {
	Text    string
	Matched bool
}

// Sanitize strips everything but bare <mark> elements from markup.
// Text content comes back HTML-escaped.
func Sanitize(markup string) string {
	return policy.Sanitize(markup)
}

// Parse sanitizes markup and splits it into segments. Adjacent segments
// with the same Matched value are merged and empty ones dropped.
func Parse(markup string) []Segment {
	clean := Sanitize(markup)

	var (
		segs  []Segment
		depth int
	)
	emit := func(raw string) {
		text := stripControl(html.UnescapeString(raw))
		if text == "" {
			return
		}
		matched := depth > 0
		if n := len(segs); n > 0 && segs[n-1].Matched == matched {
			segs[n-1].Text += text
			return
		}
		segs = append(segs, Segment{Text: text, Matched: matched})
	}

	for clean != "" {
		open := strings.Index(clean, openTag)
		closing := strings.Index(clean, closeTag)

		switch {
		case open < 0 && closing < 0:
			emit(clean)
			clean = ""
		case closing < 0 || (open >= 0 && open < closing):
			emit(clean[:open])
			depth++
			clean = clean[open+len(openTag):]
		default:
			emit(clean[:closing])
			if depth > 0 {
				depth--
			}
			clean = clean[closing+len(closeTag):]
		}
	}

	return segs
}

// Field returns the segments for one field of a result: the highlighted
// variant when the service produced one, otherwise the raw value unmatched.
func Field(r searchapi.Result, field string) []Segment {
	if h, ok := r.Highlight(field); ok {
		return Parse(h)
	}
	raw := stripControl(r.Startup.FieldValue(field))
	if raw == "" {
		return nil
	}
	return []Segment{{Text: raw}}
}

// stripControl removes escape sequences and any control character but
// tab and newline.
func stripControl(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, s)
}

// Plain joins segments back into unmarked text.
func Plain(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Render joins segments, passing matched runs through mark and the rest
// through normal. Either func may be nil to leave text unchanged.
func Render(segs []Segment, normal, mark func(string) string) string {
	var sb strings.Builder
	for _, s := range segs {
		fn := normal
		if s.Matched {
			fn = mark
		}
		if fn == nil {
			sb.WriteString(s.Text)
			continue
		}
		sb.WriteString(fn(s.Text))
	}
	return sb.String()
}

// Matched reports whether any segment is a match.
func Matched(segs []Segment) bool {
	for _, s := range segs {
		if s.Matched {
			return true
		}
	}
	return false
}
