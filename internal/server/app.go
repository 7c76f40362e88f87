package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// StartApp runs the simulation and serves it until ctx ends or the
// simulation fails. A finished run keeps being served.
func StartApp(ctx context.Context, h *Hub) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Addr:              h.cfg.Addr,
		Handler:           NewRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
	}

	simErr := make(chan error, 1)
	go func() {
		var pace time.Duration
		if h.cfg.StepsPerSecond > 0 {
			pace = time.Duration(float64(time.Second) / h.cfg.StepsPerSecond)
		}
		err := h.engine.Run(ctx, pace)
		if err != nil && !errors.Is(err, context.Canceled) {
			h.log.Error("simulation stopped", zap.Error(err))
			simErr <- err
			cancel()
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	h.log.Info("starting web server",
		zap.String("addr", h.cfg.Addr),
		zap.Float64("steps_per_second", h.cfg.StepsPerSecond),
		zap.Float64("push_rate_hz", h.cfg.PushRateHz))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	select {
	case err := <-simErr:
		return err
	default:
		return nil
	}
}
