package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"chatspace/internal/apperr"
	"chatspace/internal/config"
	"chatspace/internal/db"
	"chatspace/internal/handlers"
	"chatspace/internal/models"
	"chatspace/internal/services"
	"chatspace/internal/store/postgres"
)

func Run() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	pool, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	st := postgres.New(pool)
	authService := services.NewAuthService(st, cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	roomService := services.NewRoomService(st, st)
	messageService := services.NewMessageService(roomService, st)
	summaryService := services.NewSummaryService(messageService, services.NewHTTPSummarizer(cfg.SummarizerURL))
	hub := handlers.NewHub()

	app := newServer(authService, roomService, messageService, summaryService, hub)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	// Graceful Shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	log.Println("Gracefully shutting down...")
	_ = app.Shutdown()
	log.Println("Server shutdown complete")
}

func newServer(
	authService *services.AuthService,
	roomService *services.RoomService,
	messageService *services.MessageService,
	summaryService *services.SummaryService,
	hub *handlers.Hub,
) *fiber.App {
	app := fiber.New()

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api")

	// Public Routes
	api.Post("/auth/signup", func(c *fiber.Ctx) error {
		var req models.SignupRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		res, err := authService.Signup(c.Context(), req)
		if err != nil {
			return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(res)
	})

	api.Post("/auth/login", func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		res, err := authService.Login(c.Context(), req)
		if err != nil {
			return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(res)
	})

	// Protected Routes
	protected := api.Group("/", handlers.AuthMiddleware(authService))

	// List users, excluding the caller. Reports online status per user.
	protected.Get("/users", func(c *fiber.Ctx) error {
		authUserID := c.Locals("user_id").(string)

		users, err := authService.ListPeers(c.Context(), authUserID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to fetch users"})
		}

		resp := make([]fiber.Map, 0, len(users))
		for _, u := range users {
			status := "offline"
			if hub.IsUserOnline(u.ID) {
				status = "online"
			}
			resp = append(resp, fiber.Map{
				"id":       u.ID,
				"username": u.Username,
				"email":    u.Email,
				"status":   status,
			})
		}
		return c.JSON(resp)
	})

	protected.Get("/rooms", handlers.ListRoomsHandler(roomService))
	protected.Post("/rooms", handlers.CreateRoomHandler(roomService))
	protected.Post("/rooms/:roomId/members", handlers.AddMembersHandler(roomService))
	protected.Get("/messages/:roomId", handlers.HistoryHandler(messageService))
	protected.Post("/messages/:roomId", handlers.PostMessageHandler(messageService, roomService, hub))
	protected.Post("/rooms/:roomId/summary", handlers.SummarizeHandler(summaryService, roomService, hub))

	// Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// WebSocket Route. Middleware order matters: the upgrade check runs
	// before the credential check.
	app.Use("/ws", handlers.WSUpgradeMiddleware)
	app.Use("/ws", handlers.AuthMiddleware(authService))
	app.Get("/ws", handlers.WebSocketHandler(hub))

	return app
}
