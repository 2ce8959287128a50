// Package config provides the configuration system for edithist.
//
// The config package loads, merges and validates the settings of the
// history engine, the logger, the metrics endpoint and the viewer.
//
// # Architecture
//
// Configuration is built from layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Arguments  │  ← Highest priority (applied by cmd/edithist)
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← EDITHIST_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← .toml, .yaml or .yml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Sub-packages
//
//   - loader: TOML, YAML and environment variable loading
//   - watcher: fsnotify-based file watching for live reload
//
// # Configuration Files
//
//	# edithist.toml
//	[history]
//	sizeBudget = 1048576
//	indexWidth = "32"
//
//	[logging]
//	level = "debug"
//
//	[metrics]
//	addr = ":9090"
//
// # Environment
//
// Variables named EDITHIST_<SECTION>_<SETTING> override the file, for
// example EDITHIST_HISTORY_SIZE_BUDGET=0. EDITHIST_LOG_LEVEL and
// EDITHIST_BUDGET are short aliases.
//
// # Live Reload
//
// Watcher reloads the file when it changes and hands every valid
// configuration to a callback. Invalid files are reported and skipped.
package config
