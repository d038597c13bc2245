// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

const defaultMaxHeaderBytes = 1 << 20

// ServerConfig is the listener configuration handed to the daemon manager.
type ServerConfig struct {
	ListenAddr        string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int
}

// HTTP derives the listener configuration. The header deadline is half the
// read timeout.
func (s ServerSettings) HTTP() ServerConfig {
	return ServerConfig{
		ListenAddr:        s.ListenAddr,
		ReadTimeout:       s.ReadTimeout,
		ReadHeaderTimeout: s.ReadTimeout / 2,
		WriteTimeout:      s.WriteTimeout,
		IdleTimeout:       s.IdleTimeout,
		ShutdownTimeout:   s.ShutdownTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}
}
