package main

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance/config"
	"attendance/database"
	"attendance/handlers"
	"attendance/middleware"
	"attendance/presence"
	"attendance/worker"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	middleware.SetJWTSecret(cfg.JWTSecret)

	if err := database.Init(cfg.DatabaseURL); err != nil {
		log.Error("failed to initialize database", slog.Any("error", err))
		os.Exit(1)
	}
	store := database.NewStore(database.GetDB())

	// Presence cache: written by the external card-reader daemon, read here.
	cache := presence.NewCache(cfg.PresenceTTL)

	queue := worker.NewQueue(log, worker.Refresh(store), cfg.JobQueueSize)

	// Parse templates - each page template paired with base
	templates := make(map[string]*template.Template)
	pages := []string{"login", "workrecs-index", "workrec-form", "persons"}
	for _, page := range pages {
		templates[page] = template.Must(template.ParseFiles(
			"templates/base.html",
			"templates/"+page+".html",
		))
	}

	authHandler := handlers.NewAuthHandler(cfg, log, store, templates)
	workRecHandler := handlers.NewWorkRecHandler(log, store, cache, queue, templates)
	personHandler := handlers.NewPersonHandler(log, store, templates)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	// Public routes
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
	router.Get("/login", authHandler.LoginPage)
	router.Post("/login", authHandler.Login)

	// Monthly calendar: the index and the manual recompute are open, the
	// mutating day actions require a logged-in operator.
	router.Route("/workrecs", func(r chi.Router) {
		r.Get("/{id}", workRecHandler.Index)
		r.Get("/{id}/{yymm}", workRecHandler.Index)
		r.Get("/{id}/{yymm}/update", workRecHandler.Update)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware)
			r.Get("/{id}/{yymm}/export.csv", workRecHandler.ExportCSV)
			r.Get("/{id}/{yymm}/{dd}/create", workRecHandler.Create)
			r.Post("/{id}/{yymm}/{dd}/create", workRecHandler.Create)
			r.Get("/{id}/{yymm}/{dd}/edit", workRecHandler.Edit)
			r.Post("/{id}/{yymm}/{dd}/edit", workRecHandler.Edit)
			r.Get("/{id}/{yymm}/{dd}/destroy", workRecHandler.Destroy)
		})
	})

	// JSON surface for the SPA frontend
	apiCors := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	router.Route("/api", func(r chi.Router) {
		r.Use(apiCors.Handler)
		r.Get("/workrecs/{id}/{yymm}", workRecHandler.MonthJSON)
	})

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)
		r.Get("/logout", authHandler.Logout)
		r.Get("/persons", personHandler.List)
		r.Post("/persons", personHandler.Create)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return queue.Run(ctx)
	})
	g.Go(func() error {
		log.Info("server starting", slog.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("server stopped")
}

func setupLogger(env string) *slog.Logger {
	level := slog.LevelDebug
	if env == "prod" {
		level = slog.LevelInfo
	}

	var handler slog.Handler
	switch env {
	case "prod", "dev":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}
