package config

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// ServerConfig defines the HTTP API settings.
type ServerConfig struct {
	Addr string `json:"addr"`
	// Mode is the gin mode: "release", "debug" or "test".
	Mode string `json:"mode"`
	// Bins is the default histogram bin count.
	Bins        int `json:"bins"`
	ChartWidth  int `json:"chart_width"`
	ChartHeight int `json:"chart_height"`
	// ShutdownSeconds bounds the graceful shutdown.
	ShutdownSeconds int `json:"shutdown_seconds"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.Mode == "" {
		c.Mode = gin.ReleaseMode
	}
	if c.Bins <= 0 {
		c.Bins = 30
	}
	if c.ChartWidth <= 0 {
		c.ChartWidth = 800
	}
	if c.ChartHeight <= 0 {
		c.ChartHeight = 400
	}
	if c.ShutdownSeconds <= 0 {
		c.ShutdownSeconds = 5
	}
}

// Validate checks mandatory fields.
func (c ServerConfig) Validate() error {
	switch c.Mode {
	case gin.ReleaseMode, gin.DebugMode, gin.TestMode:
	default:
		return fmt.Errorf("unknown mode %s", c.Mode)
	}
	if c.Bins > 200 {
		return fmt.Errorf("bins must be at most 200")
	}
	return nil
}
