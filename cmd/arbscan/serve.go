package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// runServer arranca el servidor HTTP y hace shutdown limpio cuando el
// contexto se cancela (SIGINT/SIGTERM).
func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)

	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		slog.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed, forcing close", "err", err)
			return srv.Close()
		}
		return nil
	}
}
