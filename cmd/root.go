// cmd/root.go
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/monizb/vmp/config"
)

var debugMode bool

var rootCmd = &cobra.Command{
	Use:   "vmp",
	Short: "Vulnerability management platform backend",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Missing .env is fine; the environment may be set by the deployment.
		_ = godotenv.Load()
		config.LoadConfig()
	},
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
}
