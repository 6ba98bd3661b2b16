package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/resource-sim/resource-sim/api"
)

var serveAddr string // HTTP listen address

// serveCmd exposes the engines over HTTP until interrupted
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scheduling, deadlock and safety engines over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		if logrus.GetLevel() < logrus.DebugLevel {
			gin.SetMode(gin.ReleaseMode)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := api.Serve(ctx, serveAddr); err != nil {
			logrus.Fatalf("Server failed: %v", err)
		}
		logrus.Info("Server stopped.")
	},
}
