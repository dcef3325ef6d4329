package kaggle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/talentradar/talentradar/internal/adapters/ingest"
	"github.com/talentradar/talentradar/internal/domain/model"
)

const usersCSV = `Id,UserName,DisplayName,RegisterDate,Country,Points,CurrentRanking
1,grandmaster_g,Grace Hopper,07/15/2012,US,98200,1
2,datadiver,Ada Lovelace,01/02/2018,GB,45100,2
3,,Nameless Person,01/01/2020,FR,100,3
4,plainuser,,03/04/2021,,ninety,notanumber
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Users.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestFetch(t *testing.T) {
	Convey("Given a Users.csv export", t, func() {
		client := New(WithPath(writeCSV(t, usersCSV)))

		Convey("When fetching all rows", func() {
			records, err := client.Fetch(context.Background(), 0)

			Convey("Then valid rows should be normalised", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 3)

				So(records[0].Handle, ShouldEqual, "grandmaster_g")
				So(records[0].Name, ShouldEqual, "Grace Hopper")
				So(records[0].Country, ShouldEqual, "US")
				So(records[0].Rating, ShouldEqual, 98200)
				So(records[0].Rank, ShouldEqual, 1)
				So(records[0].Platform, ShouldEqual, model.PlatformKaggle)
				So(records[0].FirstSeen.Year(), ShouldEqual, 2012)

				Convey("And a missing display name should fall back to the handle", func() {
					So(records[2].Name, ShouldEqual, "plainuser")
					So(records[2].Rating, ShouldEqual, 0)
					So(records[2].Rank, ShouldEqual, 0)
				})
			})
		})

		Convey("When fetching with a limit", func() {
			records, err := client.Fetch(context.Background(), 1)

			Convey("Then only that many rows should return", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 1)
				So(records[0].Handle, ShouldEqual, "grandmaster_g")
			})
		})
	})
}

func TestFetchErrors(t *testing.T) {
	Convey("Given invalid inputs", t, func() {
		Convey("When no path is configured", func() {
			_, err := New().Fetch(context.Background(), 10)

			So(errors.Is(err, ingest.ErrFetchFailed), ShouldBeTrue)
		})

		Convey("When the file does not exist", func() {
			client := New(WithPath("/nonexistent/Users.csv"))
			_, err := client.Fetch(context.Background(), 10)

			So(errors.Is(err, ingest.ErrFetchFailed), ShouldBeTrue)
		})

		Convey("When the UserName column is missing", func() {
			client := New(WithPath(writeCSV(t, "Id,DisplayName\n1,Someone\n")))
			_, err := client.Fetch(context.Background(), 10)

			So(errors.Is(err, ingest.ErrBadPayload), ShouldBeTrue)
		})
	})
}
