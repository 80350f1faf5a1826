package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr        string        `yaml:"addr"`
	DBPath      string        `yaml:"db"`
	AdminSecret string        `yaml:"admin_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	UploadDir   string        `yaml:"upload_dir"`
	CORSOrigins []string      `yaml:"cors_origins"`
	LogLevel    string        `yaml:"log_level"`
	NATSURL     string        `yaml:"nats_url"`
	LLM         LLM           `yaml:"llm"`
	RateLimits  RateLimits    `yaml:"rate_limits"`
}

type LLM struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type RateLimits struct {
	PostPerMinute    int `yaml:"post_per_min"`
	CommentPerMinute int `yaml:"comment_per_min"`
	LikePerMinute    int `yaml:"like_per_min"`
	FollowPerMinute  int `yaml:"follow_per_min"`
}

func Default() Config {
	return Config{
		Addr:        ":8080",
		DBPath:      "devsocial.db",
		AdminSecret: "dev-admin-secret",
		TokenTTL:    7 * 24 * time.Hour,
		UploadDir:   "uploads",
		CORSOrigins: []string{"*"},
		LogLevel:    "info",
		LLM:         LLM{Model: "gemini-2.5-flash"},
		RateLimits: RateLimits{
			PostPerMinute:    10,
			CommentPerMinute: 30,
			LikePerMinute:    120,
			FollowPerMinute:  60,
		},
	}
}

// Load starts from Default, overlays the YAML file at path when path is set,
// then applies DEVSOCIAL_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return cfg, fmt.Errorf("config file %s not found", path)
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if addr := envString("DEVSOCIAL_ADDR", ""); addr != "" {
		cfg.Addr = addr
	} else if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	cfg.DBPath = envString("DEVSOCIAL_DB", cfg.DBPath)
	cfg.AdminSecret = envString("DEVSOCIAL_ADMIN_SECRET", cfg.AdminSecret)
	cfg.TokenTTL = envDuration("DEVSOCIAL_TOKEN_TTL", cfg.TokenTTL)
	cfg.UploadDir = envString("DEVSOCIAL_UPLOAD_DIR", cfg.UploadDir)
	if origins := envString("DEVSOCIAL_CORS_ORIGINS", ""); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}
	cfg.LogLevel = envString("DEVSOCIAL_LOG_LEVEL", cfg.LogLevel)
	cfg.NATSURL = envString("DEVSOCIAL_NATS_URL", cfg.NATSURL)
	cfg.LLM.APIKey = envString("DEVSOCIAL_LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.BaseURL = envString("DEVSOCIAL_LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.Model = envString("DEVSOCIAL_LLM_MODEL", cfg.LLM.Model)
	cfg.RateLimits.PostPerMinute = envInt("DEVSOCIAL_RL_POST_PER_MIN", cfg.RateLimits.PostPerMinute)
	cfg.RateLimits.CommentPerMinute = envInt("DEVSOCIAL_RL_COMMENT_PER_MIN", cfg.RateLimits.CommentPerMinute)
	cfg.RateLimits.LikePerMinute = envInt("DEVSOCIAL_RL_LIKE_PER_MIN", cfg.RateLimits.LikePerMinute)
	cfg.RateLimits.FollowPerMinute = envInt("DEVSOCIAL_RL_FOLLOW_PER_MIN", cfg.RateLimits.FollowPerMinute)
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
