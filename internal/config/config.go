package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		QuestionCount    int    `yaml:"question_count"`
		QuestionTime     string `yaml:"question_time"`
		AdvanceDelay     string `yaml:"advance_delay"`
		LeaderboardLimit int    `yaml:"leaderboard_limit"`
		Window           string `yaml:"window"`
	} `yaml:"quiz"`
	Retention struct {
		Questions string `yaml:"questions"`
		Scores    string `yaml:"scores"`
	} `yaml:"retention"`
	Generator struct {
		APIKey        string   `yaml:"api_key"`
		Model         string   `yaml:"model"`
		FallbackModel string   `yaml:"fallback_model"`
		Feeds         []string `yaml:"feeds"`
		ScrapeURL     string   `yaml:"scrape_url"`
		BatchSize     int      `yaml:"batch_size"`
		BatchTarget   int      `yaml:"batch_target"`
		BatchDelay    string   `yaml:"batch_delay"`
		Interval      string   `yaml:"interval"`
	} `yaml:"generator"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Generator.APIKey = key
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
