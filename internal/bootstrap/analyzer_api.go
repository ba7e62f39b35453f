package bootstrap

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpin "analyzer_server/adapter/in/http"
	"analyzer_server/config"
	"analyzer_server/pkg/logger"
)

// NewAPI builds the fiber app with the health and analysis endpoints.
func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	logger.Init(logger.Config{
		Level:   logger.ParseLevel(cfg.LogLevel),
		Service: "analyzer-api",
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("failed to initialize dependencies")
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: cfg.Environment == "production",

		ReadBufferSize:  16384,
		WriteBufferSize: 16384,

		// go-json is measurably faster than encoding/json for the
		// result payloads.
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit: 1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	httpin.NewHealthHandler(deps.Redis).Register(app)
	httpin.NewAnalysisHandler(deps.Analyzer, deps.Reporter).Register(app)

	return app, cleanup, nil
}
