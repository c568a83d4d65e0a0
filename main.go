package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"carenest/admin"
	"carenest/bookings"
	"carenest/config"
	"carenest/db"
	"carenest/mailer"
	"carenest/middleware"
	"carenest/ratelim"
	"carenest/rdx"
	"carenest/routes"
	"carenest/services"
	"carenest/users"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// localOrigins are the dev origins allowed exactly; deployedSuffixes are
// matched as origin suffixes so preview deployments keep working.
var localOrigins = map[string]bool{
	"http://localhost:3000": true,
	"http://localhost:5173": true,
	"http://127.0.0.1:3000": true,
	"http://127.0.0.1:5173": true,
}

var deployedSuffixes = []string{".vercel.app", ".netlify.app", ".web.app"}

func allowOrigin(origin string) bool {
	if localOrigins[origin] {
		return true
	}
	if !strings.HasPrefix(origin, "https://") {
		return false
	}
	for _, suffix := range deployedSuffixes {
		if strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}

// Index is a simple liveness handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "CareNest server is running")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	if cfg.LogFile != "" {
		logger.SetOutput(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			LocalTime:  true,
		})
	}
	return logger
}

// buildHandler wires the store, cache, mailer and all routes into a single
// http.Handler: CORS → request id → router, wrapped in request logging.
func buildHandler(cfg *config.Config, logger *logrus.Logger) http.Handler {
	store := db.NewStore(cfg, logger)
	cache := rdx.New(cfg, logger)

	var mail mailer.Mailer
	if cfg.EmailEnabled() {
		mail = mailer.New(cfg)
	} else {
		logger.Info("SMTP not configured; booking confirmation emails disabled")
	}

	// 10 req/s with small bursts on mutating routes
	rateLimiter := ratelim.NewRateLimiter(10, 20)

	router := httprouter.New()
	router.GET("/", Index)
	routes.AddServiceRoutes(router, services.NewHandler(store, cache, logger), rateLimiter)
	routes.AddUserRoutes(router, users.NewHandler(store, logger), rateLimiter)
	routes.AddBookingRoutes(router, bookings.NewHandler(store, mail, logger), rateLimiter)
	routes.AddAdminRoutes(router, admin.NewHandler(store, logger), store)

	corsHandler := cors.New(cors.Options{
		AllowOriginFunc:  allowOrigin,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-User-Email"},
		AllowCredentials: true,
	}).Handler(router)

	return middleware.RequestLogger(logger, middleware.RequestID(corsHandler))
}

func main() {
	cfg := config.Load()
	logger := newLogger(cfg)

	handler := buildHandler(cfg, logger)

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.Port).Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("listen failed")
		}
	}()

	// wait for interrupt or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received; shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("graceful shutdown failed")
	}

	logger.Info("server stopped cleanly")
}
