package server

import (
	"backend-mapty/internal/auth"
	"backend-mapty/internal/config"
	"backend-mapty/internal/session"
	"backend-mapty/internal/stream"
	"backend-mapty/internal/workout"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Sessions *session.Service
	Logger   *zap.Logger
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	hub := stream.NewHub(redisClient, log)
	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: hub,
		Logger: log,
	}
	s.Sessions = session.NewService(hub, newRepository(db), auth.NewIssuer(cfg.JWTSecret), session.Options{
		ZoomLevel:       cfg.MapZoomLevel,
		TileURL:         cfg.TileURL,
		TileAttribution: cfg.TileAttribution,
		IdleTimeout:     cfg.SessionIdleTimeout,
	}, log)

	registerRoutes(s)
	return s
}

// newRepository stores workouts in Postgres when a pool is configured and in
// memory otherwise.
func newRepository(db *pgxpool.Pool) workout.Repository {
	if db == nil {
		return workout.NewMemoryRepository()
	}
	return workout.NewPostgresRepository(db)
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(auth.NewIssuer(s.Cfg.JWTSecret))

	session.RegisterRoutes(s.App.Group("/sessions"), s.Sessions, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, jwtMiddleware)
}
