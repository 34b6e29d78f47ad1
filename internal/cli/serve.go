package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Leahcim-1/rd-comment-service/internal/comment"
	"github.com/Leahcim-1/rd-comment-service/internal/httpapi"
	"github.com/Leahcim-1/rd-comment-service/internal/logger"
	"github.com/Leahcim-1/rd-comment-service/internal/metrics"
	"github.com/Leahcim-1/rd-comment-service/internal/store"
)

var serveAddr string

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the comment API server",
		Long: `Open the database pool, build the comment service and serve the REST API
until SIGINT or SIGTERM. In-flight requests get the configured shutdown
timeout to finish before the pool is closed.`,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.CLI()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConfig, err := benderConfig.DBConfig()
	if err != nil {
		return err
	}

	db, err := dbConfig.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Warn("failed to close database pool")
		}
	}()

	m := metrics.New()
	svc, err := comment.NewService(db, benderConfig.Table(),
		comment.WithMiddleware(store.LoggingMiddleware(logger.SQL()), m.QueryMiddleware()),
		comment.WithObserver(m.ObserveOutcome),
	)
	if err != nil {
		return err
	}

	addr := benderConfig.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      httpapi.NewRouter(httpapi.NewHandler(svc, db), m),
		ReadTimeout:  benderConfig.Server.ReadTimeout,
		WriteTimeout: benderConfig.Server.WriteTimeout,
		IdleTimeout:  benderConfig.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(map[string]interface{}{
			"addr":  addr,
			"table": svc.Table().FullName(),
		}).Info("listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), benderConfig.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
