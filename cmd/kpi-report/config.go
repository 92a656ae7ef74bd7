package main

import (
	"errors"
	"path/filepath"
)

type Config struct {
	InPath    string
	OutPath   string
	LogLevel  string
	LogFormat string
}

func (c Config) Validate() error {
	if c.InPath == "" {
		return errors.New("missing -in")
	}
	if c.OutPath == "" {
		return errors.New("missing -out")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		InPath:    filepath.FromSlash("data/analyzed_comments.json"),
		OutPath:   filepath.FromSlash("data/overall_kpi.json"),
		LogLevel:  "info",
		LogFormat: "text",
	}
}
