package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SamSnead85/622-sub012/internal/cache"
	"github.com/SamSnead85/622-sub012/internal/config"
	"github.com/SamSnead85/622-sub012/internal/game"
	"github.com/SamSnead85/622-sub012/internal/repository"
	"github.com/SamSnead85/622-sub012/internal/service"
	"github.com/SamSnead85/622-sub012/internal/transport/rest"
	"github.com/SamSnead85/622-sub012/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection (account profiles)
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection (bearer session store)
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Game engine with the shipped rule sets
	engine := game.NewEngine(game.WavelengthRules{}, game.DecoyRules{})

	// Transport
	hub := ws.NewHub()
	profileRepo := repository.NewProfileRepo(db)
	sessionStore := cache.NewSessionStore(rdb)
	authSvc := service.NewAuthService(sessionStore)
	relay := ws.NewRelay(hub, engine, profileRepo, cfg.EndGrace)
	wsHandler := ws.NewHandler(hub, relay, authSvc)

	// Idle session reaper
	reaper := game.NewReaper(engine, hub, cfg.ReapInterval, cfg.IdleAfter)
	go reaper.Run()
	defer reaper.Stop()

	router := rest.NewRouter(cfg, wsHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  GET /health")
		log.Println("  WS  /v1/ws?token=<bearer>")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
