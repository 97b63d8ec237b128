package builder

import (
	"github.com/Egham-7/llmonitor-api/internal/config"

	"github.com/gofiber/fiber/v2"
)

// FromYAML loads envFiles, then the YAML config at path.
func FromYAML(path string, envFiles []string) (*Builder, error) {
	if len(envFiles) > 0 {
		config.LoadEnvFiles(envFiles)
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	return builderFromConfig(cfg), nil
}

func builderFromConfig(cfg *config.Config) *Builder {
	return &Builder{
		cfg:         cfg,
		middlewares: []fiber.Handler{},
	}
}
