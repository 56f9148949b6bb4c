package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the map sync engine and the local map API",
	Long: `Tracks the configured position source, recenters the map on every fix,
refreshes the shelters around it and serves the map state over HTTP:

  GET  /viewport              camera, placed markers, tracked position
  GET  /shelters              last applied shelter snapshot
  GET  /shelters/nearest      located shelters by distance
  POST /shelters/{id}/select  open the detail route of a shelter
  POST /recenter              pan back to the tracked position
  POST /tracking/restart      resubscribe after a position failure
  GET  /selection             current route
  GET  /status                last position failure`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		logger.Info("locator starting",
			zap.String("source", cfg.Backend.Source),
			zap.String("track", cfg.Tracking.TrackPath),
			zap.Int("follow_zoom", cfg.Map.FollowZoom),
		)
		return a.Run(ctx)
	},
}
