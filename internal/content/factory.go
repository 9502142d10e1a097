package content

import (
	"fmt"

	"partydeck/internal/config"
	"partydeck/internal/game"
)

// NewStoreFromConfig creates a ContentStore implementation based on the
// content config type.
func NewStoreFromConfig(cfg config.ContentConfig, logger game.Logger) (game.ContentStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(game.RealClock{}), nil
	case "filesystem", "":
		if cfg.ImageRoot == "" || cfg.QuizRoot == "" {
			return nil, fmt.Errorf("filesystem store requires image_root and quiz_root to be set")
		}
		return NewFolderStore(cfg.ImageRoot, cfg.QuizRoot, logger)
	default:
		return nil, fmt.Errorf("unknown content store type: %s", cfg.Type)
	}
}
