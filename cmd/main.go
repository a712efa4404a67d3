package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"motomarket/backend/internal/api/handler"
	"motomarket/backend/internal/chat"
	"motomarket/backend/internal/config"
	"motomarket/backend/internal/models"
	"motomarket/backend/internal/moderation"
	"motomarket/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.ChatRoom{},
		&models.ChatMessage{},
		&models.TypingIndicator{},
		&models.Vehicle{},
		&models.Report{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting MotoMarket Backend...")

	cfg := config.Load()

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)
	feed := chat.NewRedisFeed(rdb)

	hub := chat.NewManagerService(s, feed)
	mod := moderation.NewService(s)

	go hub.Run()

	if strings.ToLower(cfg.Environment) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	h := handler.NewHandler(hub, s, mod, cfg)

	// Public routes.
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.GET("/vehicles", h.ListVehicles)
	r.GET("/vehicles/:id", h.GetVehicle)
	r.GET("/users/:id", h.PublicProfile)
	r.GET("/ws", h.ServeWebSocket)

	// Authenticated routes.
	auth := r.Group("/", h.AuthMiddleware())
	{
		auth.GET("/auth/session", h.Session)
		auth.PUT("/profile", h.UpdateProfile)

		auth.POST("/vehicles", h.CreateVehicle)
		auth.PUT("/vehicles/:id", h.UpdateVehicle)
		auth.POST("/vehicles/:id/sold", h.MarkVehicleSold)
		auth.DELETE("/vehicles/:id", h.RemoveVehicle)

		auth.POST("/chat/rooms", h.ResolveRoom)
		auth.GET("/chat/inbox", h.Inbox)
		auth.GET("/chat/rooms/:id/messages", h.History)
		auth.POST("/chat/rooms/:id/messages", h.SendMessage)
		auth.POST("/chat/rooms/:id/typing", h.SetTyping)
		auth.GET("/chat/rooms/:id/typing", h.ActiveTypists)
		auth.POST("/chat/messages/:id/read", h.MarkRead)
		auth.DELETE("/chat/messages/:id", h.DeleteMessage)

		auth.POST("/reports", h.FileReport)
	}

	server := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
