package main

import (
	"errors"
	"path/filepath"

	"github.com/theimaginaryfoundation/audience-pulse/insights/provider"
)

type Config struct {
	InPath    string
	OutPath   string
	LogLevel  string
	LogFormat string

	Provider provider.Config
}

func (c Config) Validate() error {
	if c.InPath == "" {
		return errors.New("missing -in")
	}
	if c.OutPath == "" {
		return errors.New("missing -out")
	}
	return c.Provider.Validate()
}

func defaultConfig() Config {
	return Config{
		InPath:    filepath.FromSlash("data/overall_kpi.json"),
		OutPath:   filepath.FromSlash("data/executive_summary.txt"),
		LogLevel:  "info",
		LogFormat: "text",
	}
}
