package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/conneroisu/coachsite/internal/config"
	"github.com/conneroisu/coachsite/internal/content"
	"github.com/conneroisu/coachsite/internal/inbox"
	"github.com/conneroisu/coachsite/internal/logging"
	"github.com/conneroisu/coachsite/internal/mail"
	"github.com/conneroisu/coachsite/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the content API and contact relay",
	Long: `Start the HTTP server. Content is read lazily and cached; when a
content directory is given its files are watched and connected browsers are
told to refetch on change.

Examples:
  coachsite serve                           # Built-in content on localhost:8080
  coachsite serve -p 3000 --host 0.0.0.0    # Listen on all interfaces
  coachsite serve --content-dir ./content   # Serve and watch ./content
  coachsite serve --no-watch                # Disable live reload`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Bool("no-watch", false, "Don't watch the content directory for changes")

	bindFlags(serveCmd.Flags(), map[string]string{
		"server.port": "port",
		"server.host": "host",
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if noWatch, _ := cmd.Flags().GetBool("no-watch"); noWatch {
		cfg.Content.Watch = false
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openInbox(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	srv, err := server.New(server.Options{
		Config:  cfg,
		Content: content.NewManager(contentSource(cfg), logger),
		Mailer:  newMailer(cfg, logger),
		Inbox:   store,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, err, "Error during server shutdown")
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Starting coachsite at http://%s\n", cfg.Server.Address())
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// newMailer sends over SMTP when a host is configured and logs otherwise.
func newMailer(cfg *config.Config, logger logging.Logger) mail.Mailer {
	smtp := cfg.Contact.SMTP
	if smtp.Host == "" {
		logger.Warn(context.Background(), nil, "No SMTP host configured, enquiries will only be logged")
		return mail.NewLogMailer(logger)
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     smtp.Host,
		Port:     smtp.Port,
		Username: smtp.Username,
		Password: smtp.Password,
	})
}

// openInbox opens the enquiry store. An empty path disables it.
func openInbox(ctx context.Context, cfg *config.Config, logger logging.Logger) (*inbox.Store, error) {
	if cfg.Contact.InboxPath == "" {
		logger.Info(ctx, "Enquiry inbox disabled")
		return nil, nil
	}
	store, err := inbox.Open(cfg.Contact.InboxPath)
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx, "Enquiry inbox opened", "path", cfg.Contact.InboxPath)
	return store, nil
}
