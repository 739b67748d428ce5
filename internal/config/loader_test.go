package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/birdie/internal/config"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given no overrides", t, func() {
		cfg, err := config.Load(ctx)

		Convey("Then defaults apply", func() {
			So(err, ShouldBeNil)
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.PollIntervalSeconds, ShouldEqual, 45)
			So(cfg.DiscoveryCooldownSeconds, ShouldEqual, 30)
			So(cfg.DefaultPar, ShouldEqual, 3)
			So(cfg.SnapshotQueueSize, ShouldEqual, 256)
			So(cfg.DedupeSize, ShouldEqual, 50_000)
			So(cfg.DeviceID, ShouldBeBlank)
		})
	})
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BIRDIE_ADDR", ":7070")
	t.Setenv("BIRDIE_LOG_LEVEL", "debug")
	t.Setenv("BIRDIE_POLL_INTERVAL_SECONDS", "5")
	t.Setenv("BIRDIE_DEVICE_ID", "bench-device")

	Convey("Given environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then they take precedence over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.PollIntervalSeconds, ShouldEqual, 5)
			So(cfg.DeviceID, ShouldEqual, "bench-device")
			So(cfg.DefaultPar, ShouldEqual, 3)
		})
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "birdie.yaml")
	if err := os.WriteFile(path, []byte("addr: \":6060\"\ndefault_par: 4\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BIRDIE_CONFIG", path)

	Convey("Given a YAML config file", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then file values layer over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":6060")
			So(cfg.DefaultPar, ShouldEqual, 4)
			So(cfg.PollIntervalSeconds, ShouldEqual, 45)
		})
	})
}

func TestLoadFileEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "birdie.yaml")
	if err := os.WriteFile(path, []byte("addr: \":6060\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BIRDIE_CONFIG", path)
	t.Setenv("BIRDIE_ADDR", ":7070")

	Convey("Given both file and env overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then env wins", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
		})
	})
}

func TestLoadValidation(t *testing.T) {
	Convey("Given an invalid poll interval", t, func() {
		t.Setenv("BIRDIE_POLL_INTERVAL_SECONDS", "0")
		_, err := config.Load(context.Background())

		Convey("Then loading fails with a config error", func() {
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("BIRDIE_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	Convey("Given a config path that does not exist", t, func() {
		_, err := config.Load(context.Background())

		Convey("Then loading fails with a load error", func() {
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})
	})
}
