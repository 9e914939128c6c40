package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nilsb/holtab-provisioner/internal/config"
	"github.com/nilsb/holtab-provisioner/internal/database"
	"github.com/nilsb/holtab-provisioner/internal/graph"
	"github.com/nilsb/holtab-provisioner/internal/handler"
	"github.com/nilsb/holtab-provisioner/internal/mw"
	"github.com/nilsb/holtab-provisioner/internal/service"
	"github.com/nilsb/holtab-provisioner/internal/worker"
)

func main() {
	cfg := config.New()

	db, err := database.NewDB(cfg.DatabaseURI)
	if err != nil {
		slog.Error("failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer database.CloseDB(db)

	if err := database.InitSchema(db); err != nil {
		slog.Error("failed to init DB schema", "error", err)
		os.Exit(1)
	}

	dir, err := graph.NewClient(graph.Config{
		BaseURL:      cfg.GraphBaseURL,
		TokenURL:     cfg.GraphTokenURL,
		ClientID:     cfg.GraphClientID,
		ClientSecret: cfg.GraphClientSecret,
	})
	if err != nil {
		slog.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}

	// Services
	customerSvc := service.NewCustomerService(db)
	orderSvc := service.NewOrderService(db)
	provisioner := service.NewProvisioner(customerSvc, dir, cfg)
	filer := service.NewFiler(customerSvc, dir, cfg)

	// Worker
	orderWorker := worker.NewOrderWorker(orderSvc, filer, cfg.SweepInterval, cfg.RetryCap)

	// Router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.WebhookSecret))

		r.Post("/api/provision/create-group", handler.StageHandler("create-group", provisioner.CreateGroup))
		r.Post("/api/provision/copy-root-structure", handler.StageHandler("copy-root-structure", provisioner.CopyRootStructure))
		r.Post("/api/provision/create-columns", handler.StageHandler("create-columns", provisioner.CreateColumns))
		r.Post("/api/provision/assign-permissions", handler.StageHandler("assign-permissions", provisioner.AssignPermissions))
		r.Post("/api/provision/create-team", handler.StageHandler("create-team", provisioner.CreateTeam))

		r.Post("/api/events/customer-info", handler.CustomerInfoHandler(customerSvc))
		r.Post("/api/events/order-info", handler.OrderInfoHandler(orderSvc))
		r.Post("/api/events/email", handler.EmailEventHandler(filer, orderSvc))
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go orderWorker.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	cancel() // stop worker
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
