package main

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/theimaginaryfoundation/audience-pulse/insights"
	"github.com/theimaginaryfoundation/audience-pulse/insights/provider"
)

type Config struct {
	InPath      string
	OutPath     string
	EdgesPath   string
	MetricsPath string
	Concurrency int
	Interval    time.Duration
	LogLevel    string
	LogFormat   string

	Provider provider.Config
}

func (c Config) Validate() error {
	if c.InPath == "" {
		return errors.New("missing -in")
	}
	if c.OutPath == "" {
		return errors.New("missing -out")
	}
	if c.Concurrency < 0 {
		return errors.New("concurrency must be >= 0")
	}
	if c.Interval < 0 {
		return errors.New("interval must be >= 0")
	}
	return c.Provider.Validate()
}

func defaultConfig() Config {
	return Config{
		InPath:      filepath.FromSlash("data/comments_data.csv"),
		OutPath:     filepath.FromSlash("data/analyzed_comments.json"),
		Concurrency: 1,
		Interval:    insights.DefaultInterval,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}
