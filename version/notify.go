package version

import (
	"context"
	"fmt"
	"time"

	"github.com/lectern-player/lectern/color"
	"github.com/lectern-player/lectern/constant"
	"github.com/lectern-player/lectern/icon"
	"github.com/lectern-player/lectern/key"
	"github.com/lectern-player/lectern/style"
	"github.com/lectern-player/lectern/util"
	"github.com/spf13/viper"
)

// Notify prints a notice when a newer release exists. Lookup failures are silent.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	erase := util.PrintErasable(fmt.Sprintf("%s Checking for a new version...", icon.Get(icon.Progress)))
	version, err := Latest(ctx)
	erase()
	if err != nil {
		return
	}

	if comp, err := Compare(version, constant.Version); err != nil || comp <= 0 {
		return
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)(icon.Get(icon.Mark)),
		style.Bold(version),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint("https://github.com/lectern-player/lectern/releases/tag/v"+version),
	)
}
