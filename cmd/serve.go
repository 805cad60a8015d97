// cmd/serve.go
package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/monizb/vmp/config"
	"github.com/monizb/vmp/database"
	"github.com/monizb/vmp/handlers"
	"github.com/monizb/vmp/logging"
	"github.com/monizb/vmp/middleware"
	"github.com/monizb/vmp/routes"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	Run: func(cmd *cobra.Command, args []string) {
		logging.InitLogger(debugMode)
		defer logging.Sync()

		if err := database.Connect(); err != nil {
			logging.Logger.Fatalf("database connection failed: %v", err)
		}
		defer database.Disconnect()

		handlers.InitCollections()

		router := routes.SetupRoutes()

		// Order matters: recovery wraps everything, logging sees the final
		// status, CORS answers preflights before auth runs.
		router.Use(middleware.LoggingMiddleware)
		router.Use(middleware.RecoveryMiddleware)
		router.Use(middleware.CORSMiddleware)

		srv := &http.Server{
			Addr:         ":" + config.Port,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		go func() {
			logging.Logger.Infof("API listening on :%s", config.Port)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Logger.Fatalf("HTTP server failed: %v", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		<-quit

		logging.Logger.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logging.Logger.Errorf("forced shutdown: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
