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
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/movie-listings/internal/auth"
	"github.com/ayush/movie-listings/internal/config"
	"github.com/ayush/movie-listings/internal/logger"
	"github.com/ayush/movie-listings/internal/middleware"
	"github.com/ayush/movie-listings/internal/movies"
	"github.com/ayush/movie-listings/internal/store"
	"github.com/ayush/movie-listings/internal/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env not loaded", "error", err)
	}

	log := logger.New(slog.LevelInfo)
	slog.SetDefault(log)

	cfg := config.Load()
	ctx := context.Background()

	// ── PostgreSQL (users) ───────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres connect", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		log.Error("postgres migrate", "error", err)
		os.Exit(1)
	}

	// ── MongoDB (movies) ─────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Error("mongo connect", "error", err)
		os.Exit(1)
	}
	defer mongoClient.Disconnect(ctx)
	movieStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))

	// ── Redis (sessions) ─────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Error("redis connect", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	sessions := auth.NewRedisSessions(rdb)

	// ── MinIO (posters) ──────────────────────────────────────
	posterStore, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		log.Error("minio connect", "error", err)
		os.Exit(1)
	}

	// ── Views & handlers ─────────────────────────────────────
	view, err := web.NewRenderer()
	if err != nil {
		log.Error("template parse", "error", err)
		os.Exit(1)
	}
	authHandler := auth.NewHandler(pgStore, sessions, view)
	movieHandler := movies.NewHandler(movieStore, pgStore, posterStore, view)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logger.Requests(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.MethodOverride)
	r.Use(auth.CurrentUser(sessions, pgStore))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/static/*", web.Static())

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		view.Render(w, http.StatusOK, "index", struct{ web.Page }{web.Page{User: auth.UserFrom(req.Context())}})
	})

	r.Get("/register", authHandler.ShowRegister)
	r.Post("/register", authHandler.Register)
	r.Get("/login", authHandler.ShowLogin)
	r.Post("/login", authHandler.Login)
	r.Post("/logout", authHandler.Logout)

	r.Route("/movies", func(r chi.Router) {
		r.Get("/", movieHandler.List)
		r.With(middleware.RequireLogin).Get("/new", movieHandler.New)
		r.With(middleware.RequireLogin).Post("/", movieHandler.Create)
		r.Get("/{id}", movieHandler.Show)
		r.Get("/{id}/poster", movieHandler.Poster)

		// Guard order matters: login first, then ownership.
		owner := r.With(middleware.RequireLogin, middleware.RequireOwner(movieStore))
		owner.Get("/{id}/edit", movieHandler.Edit)
		owner.Put("/{id}", movieHandler.Update)
		owner.Delete("/{id}", movieHandler.Delete)
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info("movies app listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
