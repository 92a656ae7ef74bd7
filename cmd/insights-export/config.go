package main

import (
	"errors"
	"path/filepath"
)

type Config struct {
	AnalyzedPath string
	KPIPath      string
	SummaryPath  string
	OutDir       string
	LogLevel     string
	LogFormat    string
}

func (c Config) Validate() error {
	if c.AnalyzedPath == "" {
		return errors.New("missing -analyzed")
	}
	if c.OutDir == "" {
		return errors.New("missing -out")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		AnalyzedPath: filepath.FromSlash("data/analyzed_comments.json"),
		KPIPath:      filepath.FromSlash("data/overall_kpi.json"),
		SummaryPath:  filepath.FromSlash("data/executive_summary.txt"),
		OutDir:       "data",
		LogLevel:     "info",
		LogFormat:    "text",
	}
}
