package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/GoArmGo/ShopTrack/internal/handler"
	"github.com/GoArmGo/ShopTrack/internal/metrics"
)

// Router собирает HTTP-маршруты приложения.
func (a *App) Router() http.Handler {
	authHandler := handler.NewAuthHandler(a.authUseCase, a.logger)
	stockHandler := handler.NewStockHandler(a.inventoryUseCase, a.logger)
	requireAuth := handler.AuthMiddleware(a.authUseCase, a.logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metrics.Middleware)
	r.Use(handler.RequestLogger(a.logger))
	r.Use(handler.Recoverer(a.logger))
	if a.Config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(a.Config.RequestTimeout))
	}

	// до Route, чтобы подроутеры унаследовали обработчики
	r.NotFound(handler.NotFound(a.logger))
	r.MethodNotAllowed(handler.MethodNotAllowed(a.logger))

	r.Get("/", handler.Index(a.logger))
	r.Get("/hello", handler.Hello)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.With(requireAuth).Post("/logout", authHandler.Logout)
	})

	r.Route("/stock", func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/", stockHandler.ListProducts)
		r.Post("/", stockHandler.CreateProduct)
		r.Get("/history", stockHandler.ListHistory)
		if a.exportEnabled {
			r.Post("/history/export", stockHandler.ExportHistory)
		}

		r.Route("/{id:[0-9]+}", func(r chi.Router) {
			r.Get("/", stockHandler.GetProduct)
			r.Put("/", stockHandler.UpdateProduct)
			r.Delete("/", stockHandler.DeleteProduct)
			r.Post("/stock", stockHandler.AddStock)
			r.Delete("/stock", stockHandler.RemoveStock)
			r.Get("/history", stockHandler.ListProductHistory)
		})
	})

	return r
}

// runServer запускает HTTP сервер и блокируется до отмены ctx.
func (a *App) runServer(ctx context.Context) error {
	serverAddr := fmt.Sprintf(":%s", a.Config.ServerPort)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           a.Router(),
		ReadHeaderTimeout: a.Config.RequestTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", "addr", serverAddr, "history_export", a.exportEnabled)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received, stopping http server")

	ctxServer, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctxServer); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.logger.Info("http server stopped")
	return nil
}
