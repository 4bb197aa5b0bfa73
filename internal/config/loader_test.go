package config_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/inshape/inshape/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*4)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.FrameWidth, convey.ShouldEqual, 400.0)
			convey.So(cfg.FrameHeight, convey.ShouldEqual, 400.0)
			convey.So(cfg.GradeTimeoutMS, convey.ShouldEqual, 10_000)
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
		})
	})
}

func TestLoad_Defaults(t *testing.T) {
	convey.Convey("Given no file and no env overrides", t, func() {
		cfg, err := config.Load(context.Background())

		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
		convey.So(cfg.QueueSize, convey.ShouldEqual, 100_000)
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	convey.Convey("Given env overrides", t, func() {
		t.Setenv("INSHAPE_ADDR", ":7070")
		t.Setenv("INSHAPE_QUEUE_SIZE", "64")
		t.Setenv("INSHAPE_LOG_LEVEL", "debug")
		t.Setenv("INSHAPE_FRAME_WIDTH", "800")

		cfg, err := config.Load(context.Background())

		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
		convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
		convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
		convey.So(cfg.FrameWidth, convey.ShouldEqual, 800.0)
	})
}

func TestLoad_File(t *testing.T) {
	convey.Convey("Given a YAML config file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		yaml := "addr: \":6060\"\nworker_count: 3\ngrade_timeout_ms: 2500\n"
		convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
		t.Setenv("INSHAPE_CONFIG", path)

		cfg, err := config.Load(context.Background())

		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
		convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
		convey.So(cfg.GradeTimeoutMS, convey.ShouldEqual, 2500)

		convey.Convey("And env still wins over the file", func() {
			t.Setenv("INSHAPE_ADDR", ":5050")
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":5050")
		})
	})
}

// The invalid cases live in separate test functions because t.Setenv scopes
// a variable to the whole test, not to a Convey leaf.

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("INSHAPE_CONFIG", "/does/not/exist.yaml")
	convey.Convey("A missing file errors", t, func() {
		_, err := config.Load(context.Background())
		convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
	})
}

func TestLoad_InvalidQueueSize(t *testing.T) {
	t.Setenv("INSHAPE_QUEUE_SIZE", "0")
	convey.Convey("A non-positive queue size errors", t, func() {
		_, err := config.Load(context.Background())
		convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
	})
}

func TestLoad_EmptyAddr(t *testing.T) {
	t.Setenv("INSHAPE_ADDR", "")
	convey.Convey("An empty addr errors", t, func() {
		_, err := config.Load(context.Background())
		convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
	})
}
