package main

import (
	"errors"
	"path/filepath"
)

type Config struct {
	InPath    string
	OutPath   string
	EdgesPath string
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
	if filepath.Clean(c.InPath) == filepath.Clean(c.OutPath) {
		return errors.New("-in and -out must differ")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		InPath:    filepath.FromSlash("data/export.json"),
		OutPath:   filepath.FromSlash("data/comments_data.csv"),
		LogLevel:  "info",
		LogFormat: "text",
	}
}
