package normalize_test

import (
	"testing"

	"github.com/talentradar/talentradar/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func TestName(t *testing.T) {
	Convey("Given the name normalizer", t, func() {
		Convey("It lowercases and trims", func() {
			So(normalize.Name("  Jane Doe  "), ShouldEqual, "jane doe")
			So(normalize.Name("JDOE"), ShouldEqual, "jdoe")
		})

		Convey("It collapses internal whitespace runs", func() {
			So(normalize.Name("jane\t\t doe"), ShouldEqual, "jane doe")
			So(normalize.Name("a  b   c"), ShouldEqual, "a b c")
		})

		Convey("It strips punctuation and symbols but keeps letters and digits", func() {
			So(normalize.Name("j.doe_42!"), ShouldEqual, "jdoe42")
			So(normalize.Name("O'Brien, Conor"), ShouldEqual, "obrien conor")
		})

		Convey("It keeps non-ASCII letters", func() {
			So(normalize.Name("Пётр Иванов"), ShouldEqual, "пётр иванов")
		})

		Convey("Empty and whitespace-only input normalize to empty", func() {
			So(normalize.Name(""), ShouldEqual, "")
			So(normalize.Name("   \t\n"), ShouldEqual, "")
			So(normalize.Name("!!!"), ShouldEqual, "")
		})

		Convey("It is idempotent", func() {
			inputs := []string{"Jane Doe", "  MIXED case  42 ", "tourist"}
			for _, in := range inputs {
				once := normalize.Name(in)
				So(normalize.Name(once), ShouldEqual, once)
			}
		})
	})
}

func TestTokens(t *testing.T) {
	Convey("Given the tokenizer", t, func() {
		Convey("It splits normalized text on whitespace", func() {
			So(normalize.Tokens("Doe, Jane"), ShouldResemble, []string{"doe", "jane"})
		})

		Convey("Empty input yields no tokens", func() {
			So(normalize.Tokens("  "), ShouldHaveLength, 0)
		})
	})
}
