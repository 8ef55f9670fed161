// Package present renders submission results in a terminal and holds the
// session-scoped unlock flag that reveals contact details.
package present

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gookit/color"

	"github.com/okian/eventmatch/internal/domain/model"
)

const (
	placeholder = "-"
	mask        = "••••••"
)

var columns = []string{"Name", "LinkedIn", "Twitter", "Instagram", "Warpcast", "Lead Score"}

// Renderer writes attendee tables.
type Renderer struct {
	out   io.Writer
	color bool

	heading color.Style
	accent  color.Style
	warn    color.Style
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		out:     out,
		color:   true,
		heading: color.New(color.FgCyan, color.OpBold),
		accent:  color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes the attendee table. Contact columns and the lead score are
// masked unless isUnlocked; the rationale section is shown only when unlocked.
func (r *Renderer) Render(attendees []model.Attendee, isUnlocked bool) error {
	if len(attendees) == 0 {
		_, err := fmt.Fprintln(r.out, "No attendees found.")
		return err
	}

	var b strings.Builder
	b.WriteString(r.paint(r.heading, fmt.Sprintf("Top attendees (%d)", len(attendees))))
	b.WriteByte('\n')

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, a := range attendees {
		fmt.Fprintln(tw, strings.Join(row(a, isUnlocked), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if isUnlocked {
		b.WriteString(r.paint(r.accent, "Insights unlocked"))
		b.WriteByte('\n')
		r.whyMeet(&b, attendees)
	} else {
		b.WriteString(r.paint(r.warn, "Contact details are hidden. Unlock insights to reveal them."))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(r.out, b.String())
	return err
}

// Note writes a non-fatal message such as a submission error.
func (r *Renderer) Note(msg string) error {
	_, err := fmt.Fprintln(r.out, r.paint(r.warn, "Note: ")+msg)
	return err
}

// Notice writes an informational status line.
func (r *Renderer) Notice(msg string) error {
	_, err := fmt.Fprintln(r.out, msg)
	return err
}

func (r *Renderer) whyMeet(b *strings.Builder, attendees []model.Attendee) {
	b.WriteByte('\n')
	b.WriteString(r.paint(r.heading, "Why Meet These People?"))
	b.WriteByte('\n')
	for _, a := range attendees {
		b.WriteString(a.Name)
		b.WriteByte('\n')
		if a.WhyMeet != "" {
			b.WriteString("  ")
			b.WriteString(a.WhyMeet)
			b.WriteByte('\n')
		}
	}
}

func (r *Renderer) paint(s color.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Sprint(text)
}

func row(a model.Attendee, unlocked bool) []string { //nolint:gocritic // hugeParam: attendees are values
	cells := []string{a.LinkedIn, a.Twitter, a.Instagram, a.Warpcast, string(a.LeadScore)}
	out := make([]string, 0, len(cells)+1)
	out = append(out, cell(a.Name))
	for _, c := range cells {
		if !unlocked {
			out = append(out, mask)
			continue
		}
		out = append(out, cell(c))
	}
	return out
}

func cell(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return placeholder
	}
	return strings.NewReplacer("\t", " ", "\n", " ").Replace(s)
}

// Render writes attendees to w without colour.
func Render(w io.Writer, attendees []model.Attendee, isUnlocked bool) error {
	return NewRenderer(w, WithColor(false)).Render(attendees, isUnlocked)
}
