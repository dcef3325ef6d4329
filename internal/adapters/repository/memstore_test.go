package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/talentradar/talentradar/internal/domain/model"
)

func scored(id, name, country string, total float64) model.ScoredProfile {
	return model.ScoredProfile{
		Profile: model.CanonicalProfile{
			ID:          id,
			PrimaryName: name,
			Country:     country,
		},
		Breakdown: model.ScoreBreakdown{Total: total},
	}
}

func seededStore(t *testing.T) *MemStore {
	t.Helper()
	store := NewMemStore()
	profiles := []model.ScoredProfile{
		scored("id-1", "Jane Doe", "US", 1800),
		scored("id-2", "Maria Santos", "BR", 1500),
		scored("id-3", "Ken Tanaka", "JP", 1200),
		scored("id-4", "Sam Smith", "", 900),
		scored("id-5", "Ana Souza", "BR", 700),
	}
	if err := store.ReplaceAll(context.Background(), profiles); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func TestReplaceAllAndTopN(t *testing.T) {
	Convey("Given a seeded store", t, func() {
		ctx := context.Background()
		store := seededStore(t)

		Convey("When asking for the top 3", func() {
			top, err := store.TopN(ctx, 3)

			Convey("Then ranks should follow position", func() {
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 3)
				So(top[0].Rank, ShouldEqual, 1)
				So(top[0].Profile.Profile.PrimaryName, ShouldEqual, "Jane Doe")
				So(top[2].Rank, ShouldEqual, 3)
			})
		})

		Convey("When asking for more than exists", func() {
			top, err := store.TopN(ctx, 50)

			So(err, ShouldBeNil)
			So(len(top), ShouldEqual, 5)
		})

		Convey("When asking with an invalid limit", func() {
			_, err := store.TopN(ctx, 0)

			So(errors.Is(err, ErrInvalidLimit), ShouldBeTrue)
		})

		Convey("When a new run replaces the board", func() {
			err := store.ReplaceAll(ctx, []model.ScoredProfile{
				scored("id-9", "New Leader", "DE", 2500),
			})

			Convey("Then old entries should vanish", func() {
				So(err, ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 1)
				_, err := store.Get(ctx, "id-1")
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestGetAndByCountry(t *testing.T) {
	Convey("Given a seeded store", t, func() {
		ctx := context.Background()
		store := seededStore(t)

		Convey("When fetching by ID", func() {
			entry, err := store.Get(ctx, "id-3")

			So(err, ShouldBeNil)
			So(entry.Rank, ShouldEqual, 3)
			So(entry.Profile.Profile.PrimaryName, ShouldEqual, "Ken Tanaka")
		})

		Convey("When fetching an unknown ID", func() {
			_, err := store.Get(ctx, "missing")

			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("When filtering by country", func() {
			entries, err := store.ByCountry(ctx, "BR")

			Convey("Then rank order should hold", func() {
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].Profile.Profile.PrimaryName, ShouldEqual, "Maria Santos")
				So(entries[1].Profile.Profile.PrimaryName, ShouldEqual, "Ana Souza")
			})
		})

		Convey("When listing countries", func() {
			countries, unknown := store.Countries(ctx)

			So(countries, ShouldResemble, []string{"BR", "JP", "US"})
			So(unknown, ShouldEqual, 1)
		})
	})
}

func TestConcurrentReads(t *testing.T) {
	Convey("Given concurrent readers during a swap", t, func() {
		ctx := context.Background()
		store := seededStore(t)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := range 100 {
				profiles := []model.ScoredProfile{
					scored(fmt.Sprintf("id-%d", i), "Writer", "US", float64(i)),
				}
				_ = store.ReplaceAll(ctx, profiles)
			}
		}()

		Convey("When reading while writes happen", func() {
			for range 100 {
				top, err := store.TopN(ctx, 10)
				So(err, ShouldBeNil)
				So(len(top), ShouldBeLessThanOrEqualTo, 10)
			}
			<-done

			Convey("Then the final swap should win", func() {
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})
	})
}
