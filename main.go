package main

import (
	"certificate-designer/config"
	"certificate-designer/handlers/api/preview"
	"certificate-designer/handlers/api/templates"
	"certificate-designer/handlers/websocket"
	authMiddleware "certificate-designer/middleware"
	"certificate-designer/stores"
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

func setupRouter(cfg *config.Config, repo *stores.TemplateRepository) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	r.Route("/api/templates", func(r chi.Router) {
		r.Get("/", templates.HandleList(repo))
		r.Get("/{id}", templates.HandleGet(repo))
		r.Post("/{id}/preview", preview.HandlePreview(repo, cfg.PreviewScale))

		// Writes need a token when JWT_SECRET is set.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.AuthJWT(cfg.JWTSecret))
			r.Post("/", templates.HandleCreate(repo))
			r.Put("/{id}", templates.HandleSave(repo))
			r.Delete("/{id}", templates.HandleDelete(repo))
			r.Put("/{id}/published", templates.HandleSetPublished(repo))
		})
	})

	return r
}

func waitForShutdown(srv *http.Server, ioo *socketio.Server, closers ...io.Closer) {
	signalC := make(chan os.Signal, 1)
	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	s := <-signalC
	logrus.WithField("signal", s.String()).Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ioo.Close(nil)
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close storage")
		}
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}
	cfg := config.Load()

	listenAddress := flag.String("listen", cfg.ListenAddr, "The address to listen on.")
	logLevel := flag.String("loglevel", cfg.LogLevel, "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	store, err := stores.GetStore(context.Background(), cfg.Storage)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage")
	}
	repo := stores.NewTemplateRepository(store)

	r := setupRouter(cfg, repo)
	ioo := websocket.SetupSocketIO(repo)
	r.Handle("/socket.io/", ioo.ServeHandler(nil))

	srv := &http.Server{Addr: *listenAddress, Handler: r}
	logrus.WithFields(logrus.Fields{
		"addr":       *listenAddress,
		"jwtEnabled": cfg.JWTSecret != "",
	}).Info("starting server")
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	var closers []io.Closer
	if c, ok := store.(io.Closer); ok {
		closers = append(closers, c)
	}
	waitForShutdown(srv, ioo, closers...)
}
