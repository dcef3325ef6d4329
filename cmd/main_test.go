package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/talentradar/talentradar/internal/adapters/ingest"
	"github.com/talentradar/talentradar/internal/config"
	"github.com/talentradar/talentradar/pkg/logger"

	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func TestConfigurationLoading(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		_ = os.Setenv("RADAR_ADDR", ":8080")
		_ = os.Setenv("RADAR_SOURCES", "codeforces,atcoder")
		defer func() {
			_ = os.Unsetenv("RADAR_ADDR")
			_ = os.Unsetenv("RADAR_SOURCES")
		}()

		convey.Convey("Then configuration should be loadable from the environment", func() {
			ctx := context.Background()
			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg, convey.ShouldNotBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.Sources, convey.ShouldResemble, []string{"codeforces", "atcoder"})
		})
	})
}

func TestBuildSources(t *testing.T) {
	convey.Convey("Given a configuration with known source names", t, func() {
		cfg := config.New()
		cfg.Sources = []string{"codeforces", "atcoder", "leetcode", "kaggle", "file"}

		convey.Convey("When building the ingest sources", func() {
			sources, err := buildSources(cfg, nil, logger.Get())

			convey.Convey("Then one client per name should be created", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sources, convey.ShouldHaveLength, 5)
			})
		})
	})

	convey.Convey("Given a configuration with an unknown source name", t, func() {
		cfg := config.New()
		cfg.Sources = []string{"codeforces", "topcoder"}

		convey.Convey("When building the ingest sources", func() {
			sources, err := buildSources(cfg, nil, logger.Get())

			convey.Convey("Then it should fail with an unknown source error", func() {
				convey.So(sources, convey.ShouldBeNil)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, ingest.ErrUnknownSource.Error())
			})
		})
	})
}

func TestBuildService(t *testing.T) {
	convey.Convey("Given a valid configuration", t, func() {
		dir := t.TempDir()
		cfg := config.New()
		cfg.Sources = []string{"file"}
		cfg.RecordsFile = filepath.Join(dir, "records.json")
		cfg.SnapshotDir = filepath.Join(dir, "snapshots")
		cfg.CacheTTL = 0

		convey.Convey("When building the service", func() {
			svc, err := buildService(cfg, logger.Get())

			convey.Convey("Then the service and its store should be wired", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc, convey.ShouldNotBeNil)
				convey.So(svc.Store(), convey.ShouldNotBeNil)
			})

			convey.Convey("Then the snapshot directory should exist", func() {
				convey.So(err, convey.ShouldBeNil)
				info, statErr := os.Stat(cfg.SnapshotDir)
				convey.So(statErr, convey.ShouldBeNil)
				convey.So(info.IsDir(), convey.ShouldBeTrue)
			})
		})
	})
}
