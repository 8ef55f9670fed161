package present

import (
	"bytes"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/eventmatch/internal/domain/model"
)

func attendees() []model.Attendee {
	return []model.Attendee{
		{Name: "Ada Lovelace", LinkedIn: "https://linkedin.com/in/ada", LeadScore: "92", WhyMeet: "Designs engines."},
		{Name: "Grace Hopper", Twitter: "https://x.com/grace"},
	}
}

func TestRender(t *testing.T) {
	Convey("Given a renderer without colour", t, func() {
		var buf bytes.Buffer
		r := NewRenderer(&buf, WithColor(false))

		Convey("When rendering locked results", func() {
			So(r.Render(attendees(), false), ShouldBeNil)
			out := buf.String()

			Convey("Then names are visible and every other column is masked", func() {
				So(out, ShouldContainSubstring, "Top attendees (2)")
				So(out, ShouldContainSubstring, "Ada Lovelace")
				So(out, ShouldContainSubstring, "Grace Hopper")
				So(out, ShouldContainSubstring, mask)
				So(out, ShouldNotContainSubstring, "linkedin.com")
				So(out, ShouldNotContainSubstring, "92")
			})

			Convey("And the rationale section is hidden", func() {
				So(out, ShouldNotContainSubstring, "Why Meet These People?")
				So(out, ShouldNotContainSubstring, "Designs engines.")
			})
		})

		Convey("When rendering unlocked results", func() {
			So(r.Render(attendees(), true), ShouldBeNil)
			out := buf.String()

			Convey("Then links and scores are shown with placeholders for gaps", func() {
				So(out, ShouldContainSubstring, "https://linkedin.com/in/ada")
				So(out, ShouldContainSubstring, "https://x.com/grace")
				So(out, ShouldContainSubstring, "92")
				So(out, ShouldNotContainSubstring, mask)

				lines := strings.Split(out, "\n")
				var grace string
				for _, l := range lines {
					if strings.HasPrefix(l, "Grace Hopper") {
						grace = l
						break
					}
				}
				So(grace, ShouldNotBeEmpty)
				So(strings.Count(grace, placeholder), ShouldBeGreaterThanOrEqualTo, 4)
			})

			Convey("And the rationale section follows the table", func() {
				So(out, ShouldContainSubstring, "Why Meet These People?")
				So(strings.Index(out, "Why Meet"), ShouldBeGreaterThan, strings.Index(out, "Lead Score"))
				So(out, ShouldContainSubstring, "  Designs engines.")
			})
		})

		Convey("When there are no attendees", func() {
			So(r.Render(nil, true), ShouldBeNil)

			Convey("Then no table is printed", func() {
				So(buf.String(), ShouldEqual, "No attendees found.\n")
			})
		})

		Convey("When writing a note", func() {
			So(r.Note("Failed to send the event URL to the processor. Status: 502"), ShouldBeNil)
			So(buf.String(), ShouldEqual, "Note: Failed to send the event URL to the processor. Status: 502\n")
		})
	})

	Convey("Given a cell with embedded tabs", t, func() {
		So(cell("a\tb\nc"), ShouldEqual, "a b c")
		So(cell("   "), ShouldEqual, placeholder)
	})

	Convey("Given the package-level Render", t, func() {
		var buf bytes.Buffer
		So(Render(&buf, attendees(), false), ShouldBeNil)
		So(buf.String(), ShouldNotContainSubstring, "\x1b[")
	})
}
