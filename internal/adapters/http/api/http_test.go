package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/talentradar/talentradar/internal/adapters/http/api"
	"github.com/talentradar/talentradar/internal/adapters/repository"
	"github.com/talentradar/talentradar/internal/domain/model"
)

type fakeStats struct{}

func (fakeStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"profiles": 3, "last_run": "2026-08-30"}
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := repository.NewMemStore()
	profiles := []model.ScoredProfile{
		{
			Profile: model.CanonicalProfile{
				ID:          "id-1",
				PrimaryName: "Jane Doe",
				Country:     "US",
				Handles:     map[model.Platform]string{model.PlatformCodeforces: "jdoe"},
			},
			Breakdown: model.ScoreBreakdown{
				Total: 1800,
				Base:  900,
				Reasons: []model.Reason{
					{Kind: model.ReasonBase, Platform: model.PlatformCodeforces, Rating: 2100, Z: 1.2, Points: 900},
				},
			},
		},
		{
			Profile:   model.CanonicalProfile{ID: "id-2", PrimaryName: "Maria Santos", Country: "BR"},
			Breakdown: model.ScoreBreakdown{Total: 1500},
		},
		{
			Profile:   model.CanonicalProfile{ID: "id-3", PrimaryName: "Anonymous Ace"},
			Breakdown: model.ScoreBreakdown{Total: 1200},
		},
	}
	if err := store.ReplaceAll(context.Background(), profiles); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	mux := http.NewServeMux()
	server := api.NewServer(store, fakeStats{}, 100)
	server.Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func TestLeaderboardEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts := testServer(t)
		defer ts.Close()

		Convey("When requesting the leaderboard with a limit", func() {
			resp, err := http.Get(ts.URL + "/leaderboard?limit=2")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then ranked entries should return", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var entries []repository.Entry
				So(json.NewDecoder(resp.Body).Decode(&entries), ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[0].Profile.Profile.PrimaryName, ShouldEqual, "Jane Doe")
			})
		})

		Convey("When requesting without a limit", func() {
			resp, err := http.Get(ts.URL + "/leaderboard")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the default limit should apply", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var entries []repository.Entry
				So(json.NewDecoder(resp.Body).Decode(&entries), ShouldBeNil)
				So(len(entries), ShouldEqual, 3)
			})
		})

		Convey("When the limit is not a number", func() {
			resp, err := http.Get(ts.URL + "/leaderboard?limit=abc")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit exceeds the cap", func() {
			resp, err := http.Get(ts.URL + "/leaderboard?limit=10000")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestProfileEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts := testServer(t)
		defer ts.Close()

		Convey("When fetching an existing profile", func() {
			resp, err := http.Get(ts.URL + "/profile/id-1")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the breakdown should be included", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var entry repository.Entry
				So(json.NewDecoder(resp.Body).Decode(&entry), ShouldBeNil)
				So(entry.Rank, ShouldEqual, 1)
				So(entry.Profile.Breakdown.Total, ShouldEqual, 1800)
				So(len(entry.Profile.Breakdown.Reasons), ShouldEqual, 1)
				So(entry.Profile.Breakdown.Reasons[0].Kind, ShouldEqual, model.ReasonBase)
			})
		})

		Convey("When fetching a missing profile", func() {
			resp, err := http.Get(ts.URL + "/profile/nope")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the path is malformed", func() {
			resp, err := http.Get(ts.URL + "/profile/")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestCountriesEndpoints(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts := testServer(t)
		defer ts.Close()

		Convey("When listing countries", func() {
			resp, err := http.Get(ts.URL + "/countries")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then sorted countries and the unknown count should return", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var payload struct {
					Countries    []string `json:"countries"`
					UnknownCount int      `json:"unknown_count"`
				}
				So(json.NewDecoder(resp.Body).Decode(&payload), ShouldBeNil)
				So(payload.Countries, ShouldResemble, []string{"BR", "US"})
				So(payload.UnknownCount, ShouldEqual, 1)
			})
		})

		Convey("When fetching one country's leaderboard", func() {
			resp, err := http.Get(ts.URL + "/countries/BR")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then only that country's entries should return", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var entries []repository.Entry
				So(json.NewDecoder(resp.Body).Decode(&entries), ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
				So(entries[0].Profile.Profile.PrimaryName, ShouldEqual, "Maria Santos")
			})
		})

		Convey("When fetching a country with no entries", func() {
			resp, err := http.Get(ts.URL + "/countries/DE")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then an empty list should return", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var entries []repository.Entry
				So(json.NewDecoder(resp.Body).Decode(&entries), ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})
		})
	})
}

func TestStatsAndHealth(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts := testServer(t)
		defer ts.Close()

		Convey("When fetching stats", func() {
			resp, err := http.Get(ts.URL + "/stats")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the provider payload should return", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var stats map[string]interface{}
				So(json.NewDecoder(resp.Body).Decode(&stats), ShouldBeNil)
				So(stats["last_run"], ShouldEqual, "2026-08-30")
			})
		})

		Convey("When fetching health metrics", func() {
			resp, err := http.Get(ts.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("When using a wrong method", func() {
			resp, err := http.Post(ts.URL+"/leaderboard", "application/json", http.NoBody)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}
