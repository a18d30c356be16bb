package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/acryldata/datahub-mlflow-source/pkg/config"
	"github.com/acryldata/datahub-mlflow-source/pkg/contract"
	"github.com/acryldata/datahub-mlflow-source/pkg/server"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "datahub-mlflow-source",
		Short:         "Extract MLflow experiment tracking metadata into DataHub",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var configPath string
	var dryRunPath string

	run := &cobra.Command{
		Use:   "run",
		Short: "Run one extraction pass",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if dryRunPath != "" {
				cfg.Emitter.Mode = "file"
				cfg.Emitter.Path = dryRunPath
			}

			log := newLogger(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.Launch(ctx, cfg, log, version)
		},
	}
	run.Flags().StringVarP(&configPath, "config", "c", "mlflow-source.json", "path to the JSON config file")
	run.Flags().StringVar(&dryRunPath, "dry-run", "", "write proposals to this file instead of emitting them")

	root.AddCommand(run)
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the connector version",
		Run: func(*cobra.Command, []string) {
			fmt.Println(version)
		},
	})

	if err := root.Execute(); err != nil {
		logrus.WithField("code", contract.CodeOf(err)).Error(err)
		os.Exit(1)
	}
}

func newLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	return log
}
