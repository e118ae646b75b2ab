package where

import (
	"path/filepath"
	"testing"

	"github.com/lectern-player/lectern/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config() should exist as a directory", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Logs() should live under Config()", func() {
			So(filepath.Dir(Logs()), ShouldEqual, Config())
		})

		Convey("Positions() should be a json file under Config()", func() {
			So(Positions(), ShouldEqual, filepath.Join(Config(), "positions.json"))
		})

		Convey("Analytics() should create its parent directory", func() {
			path := Analytics()
			So(lo.Must(filesystem.API().IsDir(filepath.Dir(path))), ShouldBeTrue)
		})
	})

	Convey("Given LECTERN_CONFIG_PATH", t, func() {
		t.Setenv(EnvConfigPath, "/custom/lectern")
		So(Config(), ShouldEqual, "/custom/lectern")
	})
}
