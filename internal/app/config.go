package app

import (
	"fmt"

	"github.com/brightwellhealth/clinicscribe/internal/platform/envutil"
	"github.com/brightwellhealth/clinicscribe/internal/platform/logger"
)

// Config holds every environment-driven setting the app needs at startup.
// Missing required values must fail startup, not the first request (spec
// §6).
type Config struct {
	Port string

	WorkDir         string
	IndexDir        string
	EmbedDim        int
	RawImagesBucket string
	RawImagesPrefix string

	DefaultRetrieveK int
	MaxChats         int
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:             envutil.String("PORT", "8080"),
		WorkDir:          envutil.String("CLINICSCRIBE_WORK_DIR", "."),
		IndexDir:         envutil.String("CLINICSCRIBE_INDEX_DIR", "vector_index"),
		EmbedDim:         envutil.Int("CLINICSCRIBE_EMBED_DIM", 1536),
		DefaultRetrieveK: envutil.Int("CLINICSCRIBE_RETRIEVE_K", 1),
		MaxChats:         envutil.Int("CLINICSCRIBE_MAX_CHATS", 3),
		RawImagesBucket:  envutil.String("CLINICSCRIBE_RAW_IMAGES_BUCKET", ""),
		RawImagesPrefix:  envutil.String("CLINICSCRIBE_RAW_IMAGES_PREFIX", ""),
	}

	required := map[string]string{
		"OPENAI_API_KEY":   "credential for the LLM/embedding collaborator (spec §6)",
		"NLP_SERVICE_NAME": "Cloud Healthcare NLP service resource name for the medical-entity collaborator",
		"REDIS_ADDR":       "checkpoint-store URI for C8",
	}
	for name, purpose := range required {
		if _, ok := envutil.RequireString(name); !ok {
			return Config{}, fmt.Errorf("app: missing required env %s (%s)", name, purpose)
		}
	}
	return cfg, nil
}
