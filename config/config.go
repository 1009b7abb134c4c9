package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"content-review-cms/models"
)

// Config is the process configuration, read once in main and passed down.
type Config struct {
	ServiceName string
	HTTPPort    string
	Database    DatabaseConfig
	JWT         JWTConfig
	Workflow    WorkflowConfig
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "content-review-cms"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	workflow, err := loadWorkflow()
	if err != nil {
		return Config{}, err
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		Database:    loadDatabase(),
		JWT:         loadJWT(),
		Workflow:    workflow,
	}, nil
}

func envString(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envList(name string) []string {
	var out []string
	for _, value := range strings.Split(os.Getenv(name), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}

func envContentTypes(name string, fallback []models.ContentType) ([]models.ContentType, error) {
	raw := envList(name)
	if len(raw) == 0 {
		return fallback, nil
	}
	types := make([]models.ContentType, 0, len(raw))
	for _, name := range raw {
		if strings.EqualFold(name, "none") {
			return nil, nil
		}
		t, err := models.ParseContentType(name)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}
