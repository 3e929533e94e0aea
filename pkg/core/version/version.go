// ============================================================================
// frege - Parser-Kombinatoren für Ausdrücke
// ============================================================================
//
// Package:     version
// Description: Central version management for the frege binary and services
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants for all frege components
const (
	// Platform version
	Platform = "1.0.0"

	// Component versions
	Grammar = "1.0.0"
	Engine  = "1.0.0"
	Server  = "1.0.0"
	Gateway = "1.0.0"
	REPL    = "1.0.0"
)

// Set via -ldflags "-X github.com/msto63/frege/pkg/core/version.Commit=..."
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "grammar":
		return Grammar
	case "engine":
		return Engine
	case "server":
		return Server
	case "gateway":
		return Gateway
	case "repl":
		return REPL
	default:
		return Platform
	}
}

// Info describes the running build
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns build information for the current binary
func Get() Info {
	return Info{
		Version:   Platform,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders a one-line summary
func (i Info) String() string {
	return fmt.Sprintf("frege %s (commit %s, built %s, %s, %s)",
		i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Platform)
}
