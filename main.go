// Package main is the entry point of lectern.
package main

import (
	"context"
	"time"

	"github.com/lectern-player/lectern/cmd"
	"github.com/lectern-player/lectern/config"
	"github.com/lectern-player/lectern/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Upload analytics left over from earlier sessions.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := cmd.SyncAnalytics(ctx); err != nil {
			log.Warnf("analytics sync: %v", err)
		}
	}()

	cmd.Execute()
}
