package leetcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/talentradar/talentradar/internal/adapters/ingest"
	"github.com/talentradar/talentradar/internal/domain/model"
)

func rankingServer(t *testing.T, totalUsers int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("pagination"))
		if page < 1 {
			page = 1
		}
		start := (page - 1) * ranksPerPage

		var users []map[string]any
		for i := start; i < start+ranksPerPage && i < totalUsers; i++ {
			users = append(users, map[string]any{
				"username":     fmt.Sprintf("coder%03d", i+1),
				"country_code": "US",
				"rating":       3000 - float64(i),
				"rank":         i + 1,
				"score":        18,
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user_num":   totalUsers,
			"total_rank": users,
		})
	}))
}

func TestFetch(t *testing.T) {
	Convey("Given a contest ranking server", t, func() {
		server := rankingServer(t, 60)
		defer server.Close()

		client := New(
			WithBaseURL(server.URL),
			WithContest("weekly-contest-400"),
			WithHTTPClient(server.Client()),
		)

		Convey("When fetching more records than one page holds", func() {
			records, err := client.Fetch(context.Background(), 40)

			Convey("Then pages should be combined in rank order", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 40)
				So(records[0].Handle, ShouldEqual, "coder001")
				So(records[0].Rank, ShouldEqual, 1)
				So(records[0].Country, ShouldEqual, "US")
				So(records[0].Rating, ShouldEqual, 3000)
				So(records[0].Platform, ShouldEqual, model.PlatformLeetCode)
				So(records[39].Rank, ShouldEqual, 40)
			})
		})

		Convey("When fetching past the contest size", func() {
			records, err := client.Fetch(context.Background(), 500)

			Convey("Then all participants should return", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 60)
			})
		})
	})
}

func TestFetchForbidden(t *testing.T) {
	Convey("Given a server that demands a session", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := r.Cookie("LEETCODE_SESSION"); err != nil {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"user_num": 1,
				"total_rank": []map[string]any{
					{"username": "authed", "rank": 1, "rating": 2500},
				},
			})
		}))
		defer server.Close()

		Convey("When fetching without a session", func() {
			client := New(
				WithBaseURL(server.URL),
				WithContest("weekly-contest-400"),
				WithHTTPClient(server.Client()),
				WithSession(""),
			)
			records, err := client.Fetch(context.Background(), 10)

			Convey("Then it should degrade to an empty result", func() {
				So(err, ShouldBeNil)
				So(records, ShouldBeEmpty)
			})
		})

		Convey("When fetching with a session cookie", func() {
			client := New(
				WithBaseURL(server.URL),
				WithContest("weekly-contest-400"),
				WithHTTPClient(server.Client()),
				WithSession("secret"),
			)
			records, err := client.Fetch(context.Background(), 10)

			Convey("Then the ranking should come back", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 1)
				So(records[0].Handle, ShouldEqual, "authed")
			})
		})
	})
}

func TestFetchMisconfigured(t *testing.T) {
	Convey("Given a client without a contest", t, func() {
		client := New()

		Convey("When fetching", func() {
			_, err := client.Fetch(context.Background(), 10)

			Convey("Then a fetch error should surface", func() {
				So(errors.Is(err, ingest.ErrFetchFailed), ShouldBeTrue)
			})
		})
	})
}
