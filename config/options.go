// Package config loads server.Server tuning options from JSON, following
// the pointer-typed-optional-field pattern in the teacher's
// internal/config/tuning.go: fields omitted from the file keep their
// documented default, so partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// maxConfigFileSize bounds how large a config file LoadServerOptions will
// read, matching the teacher's 1MB cap.
const maxConfigFileSize = 1 * 1024 * 1024

// ServerOptions configures a server.Server's emission behavior (spec
// §4.4). All fields are optional; Get* accessors supply defaults.
type ServerOptions struct {
	FullUpdate        *bool   `json:"full_update,omitempty"`
	PeriodicMessaging *bool   `json:"periodic_messaging,omitempty"`
	UpdateInterval    *string `json:"update_interval,omitempty"` // duration string like "1s"
	CursorProfiling   *bool   `json:"cursor_profiling,omitempty"`
	ObjectProfiling   *bool   `json:"object_profiling,omitempty"`
	BlobProfiling     *bool   `json:"blob_profiling,omitempty"`
	SourceName        *string `json:"source_name,omitempty"`
}

// EmptyServerOptions returns a ServerOptions with every field nil. Use
// LoadServerOptions to populate one from a file.
func EmptyServerOptions() *ServerOptions {
	return &ServerOptions{}
}

// LoadServerOptions loads a ServerOptions from a JSON file. The path must
// end in .json and the file must be under maxConfigFileSize, matching
// the teacher's LoadTuningConfig validation.
func LoadServerOptions(path string) (*ServerOptions, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	opts := EmptyServerOptions()
	if err := json.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return opts, nil
}

// Validate checks that any set fields hold sane values.
func (o *ServerOptions) Validate() error {
	if o.UpdateInterval != nil && *o.UpdateInterval != "" {
		d, err := time.ParseDuration(*o.UpdateInterval)
		if err != nil {
			return fmt.Errorf("invalid update_interval %q: %w", *o.UpdateInterval, err)
		}
		if d < 10*time.Millisecond {
			return fmt.Errorf("update_interval must be at least 10ms, got %s", d)
		}
	}
	return nil
}

// GetFullUpdate returns FullUpdate or its default (false: only emit
// mutated entities each frame).
func (o *ServerOptions) GetFullUpdate() bool {
	if o.FullUpdate == nil {
		return false
	}
	return *o.FullUpdate
}

// GetPeriodicMessaging returns PeriodicMessaging or its default (false).
func (o *ServerOptions) GetPeriodicMessaging() bool {
	if o.PeriodicMessaging == nil {
		return false
	}
	return *o.PeriodicMessaging
}

// GetUpdateInterval parses and returns UpdateInterval or its default
// (1s), matching the server's defaultPeriodicInterval.
func (o *ServerOptions) GetUpdateInterval() time.Duration {
	if o.UpdateInterval == nil || *o.UpdateInterval == "" {
		return 1 * time.Second
	}
	d, err := time.ParseDuration(*o.UpdateInterval)
	if err != nil {
		return 1 * time.Second
	}
	if d < 10*time.Millisecond {
		return 10 * time.Millisecond
	}
	return d
}

// GetCursorProfiling returns CursorProfiling or its default (true).
func (o *ServerOptions) GetCursorProfiling() bool {
	if o.CursorProfiling == nil {
		return true
	}
	return *o.CursorProfiling
}

// GetObjectProfiling returns ObjectProfiling or its default (true).
func (o *ServerOptions) GetObjectProfiling() bool {
	if o.ObjectProfiling == nil {
		return true
	}
	return *o.ObjectProfiling
}

// GetBlobProfiling returns BlobProfiling or its default (true).
func (o *ServerOptions) GetBlobProfiling() bool {
	if o.BlobProfiling == nil {
		return true
	}
	return *o.BlobProfiling
}

// GetSourceName returns SourceName or its default ("tuio").
func (o *ServerOptions) GetSourceName() string {
	if o.SourceName == nil || *o.SourceName == "" {
		return "tuio"
	}
	return *o.SourceName
}
