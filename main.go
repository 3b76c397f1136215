package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yamdb/internal/config"
	"yamdb/internal/database"
	"yamdb/internal/importer"
	"yamdb/internal/logging"
	"yamdb/internal/server"
	"yamdb/pkg/mail"
	"yamdb/pkg/rabbitmq"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running the binary without a
// subcommand starts the server.
func newRootCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
	importCmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Load the CSV fixture set from dir",
		Long: `Load category.csv, genre.csv, users.csv, titles.csv, genre_title.csv,
review.csv and comments.csv from dir in one transaction. Missing files are
skipped and rows whose id already exists are left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0])
		},
	}

	root := &cobra.Command{
		Use:          "yamdb",
		Short:        "YaMDb review API",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.AddCommand(serve, migrate, importCmd)
	return root
}

// bootstrap loads configuration, configures logging and opens the database.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logrus.WithError(err).Error("database close error")
		}
	}
}

func runMigrate() error {
	_, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := database.Migrate(db); err != nil {
		return err
	}
	logrus.Info("database schema is up to date")
	return nil
}

func runImport(cmd *cobra.Command, dir string) error {
	_, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := database.Migrate(db); err != nil {
		return err
	}
	counts, err := importer.New(db).Run(dir)
	if err != nil {
		return err
	}
	for file, n := range counts {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows\n", file, n)
	}
	return nil
}

func runServe() error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := database.Migrate(db); err != nil {
		return err
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
		}); err != nil {
			logrus.WithError(err).Error("sentry init failed")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Without a broker, confirmation mail goes straight to the log.
	var mailer mail.Sender = mail.NewLogSender()
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.MailQueue})
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()

		if err := mqClient.ConsumeMail(mail.NewLogSender()); err != nil {
			return fmt.Errorf("failed to start mail consumer: %w", err)
		}
		mailer = mqClient
	}

	app := server.New(cfg, db, mailer)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		logrus.WithField("addr", cfg.AppPort).Info("starting server")
		listenErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	logrus.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		logrus.WithError(err).Error("error during shutdown")
	}
	logrus.Info("server gracefully stopped")
	return nil
}
