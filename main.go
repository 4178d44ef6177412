package main

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cognitrain-go/internal/config"
	"cognitrain-go/internal/database"
	logger "cognitrain-go/internal/logging"
	"cognitrain-go/internal/models"
	"cognitrain-go/internal/router"
	"cognitrain-go/internal/services"
)

func main() {
	// Initialize Logger
	log, err := logger.Init(".")
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Initialize Configuration
	if err := config.Init(".", log); err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Database
	database.Init(log)

	// Load game content at startup
	var pack *models.ContentPack
	if file := config.Conf.Games.ContentFile; file != "" {
		pack, err = models.LoadContentPack(file)
		if err != nil {
			log.Fatal("Failed to load game content", zap.Error(err), zap.String("file", file))
		}
		log.Info("Game content loaded", zap.String("file", file))
	} else {
		pack = models.DefaultContent()
		log.Info("Using built-in game content")
	}

	// Optional redis mirror for live session state
	var redisClient *redis.Client
	if config.Conf.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     config.Conf.Redis.Addr,
			Password: config.Conf.Redis.Password,
			DB:       config.Conf.Redis.DB,
		})
		log.Info("Session mirror enabled", zap.String("addr", config.Conf.Redis.Addr))
	}

	// Session manager and the reaper that sweeps abandoned games
	manager := services.NewSessionManager(log, pack, redisClient)
	reaper := services.NewReaper(log, manager,
		time.Duration(config.Conf.Games.ReapIntervalSec)*time.Second,
		time.Duration(config.Conf.Games.IdleTimeoutMinutes)*time.Minute)
	reaper.Start()

	// Setup router, passing the logger to it
	r := router.Setup(log, manager, pack)

	// Start the Gin server
	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
