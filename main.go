package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventra/auth"
	"eventra/config"
	"eventra/db"
	"eventra/gpt"
	"eventra/logger"
	"eventra/middleware"
	"eventra/mq"
	"eventra/ratelim"
	"eventra/rdx"
	"eventra/routes"
	"eventra/tickets"
	"eventra/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// Security headers middleware
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

func health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	utils.SendResponse(w, http.StatusOK, "ok", nil)
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Env)
	defer logger.Sync()

	if err := db.Connect(cfg.Mongo); err != nil {
		logger.L.Fatalw("Could not connect to MongoDB", "error", err)
	}
	if err := db.CreateIndexes(); err != nil {
		logger.L.Fatalw("Could not create indexes", "error", err)
	}
	rdx.Init(cfg.Redis)
	middleware.Init(cfg.JWT.Secret)
	auth.Init(cfg.JWT)
	ratelim.Init(cfg.RateLim.RequestsPerSecond, cfg.RateLim.Burst)
	mq.Init(cfg.IndexURL)
	tickets.Init()
	gpt.Init(cfg.GPT)

	router := httprouter.New()
	router.GET("/health", health)
	routes.AddStaticRoutes(router)
	routes.AddAuthRoutes(router)
	routes.AddEventRoutes(router)
	routes.AddTicketRoutes(router)
	routes.AddGPTRoutes(router)
	routes.AddPackageRoutes(router)
	routes.AddAccountRoutes(router)

	// CORS setup
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	handler := securityHeaders(c.Handler(router))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.L.Infow("Server started", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L.Fatalw("Could not listen", "port", cfg.Port, "error", err)
		}
	}()

	// Graceful shutdown listener
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)
	<-shutdownChan

	logger.L.Infow("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.L.Errorw("Server shutdown failed", "error", err)
	}
	if err := db.Disconnect(ctx); err != nil {
		logger.L.Errorw("MongoDB disconnect failed", "error", err)
	}
}
