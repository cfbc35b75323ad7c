package main

import (
	"procurement/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel  = "info"
	logFormat = "text"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "procurement",
	Short: "Procurement workflow API",
	Long: `Procurement workflow API: requesters submit purchase requests, department
heads approve or reject them, procurement officers issue purchase orders and
track deliveries.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := config.SetupLogging(logLevel, logFormat); err != nil {
			log.WithError(err).Fatal("cannot parse log-level")
		}
		log.Debug("debug logging enabled")
	},
}

// @title                       Procurement Workflow API
// @version                     1.0
// @description                 Purchase requests, approvals, purchase orders and deliveries.
// @host                        localhost:8080
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	rootCmd.AddCommand(
		NewServeCommand(),
		NewMigrateCommand(),
		NewSeedCommand(),
	)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel,
		"Log level (trace,debug,info,warn,error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logFormat,
		"Log format (text,json)")

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Fatal("could not execute root command")
	}
}
