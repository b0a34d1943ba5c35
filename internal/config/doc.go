// Package config loads, validates, and normalizes chorus configuration.
//
// Configuration lives in a TOML file (default ~/.config/chorus/config.toml,
// with ./chorus.toml as a project-local fallback). Load applies repository
// defaults first, so a missing file yields a fully usable config. All path
// fields are tilde-expanded and made absolute during normalization.
//
// Components receive an explicit *Config; there is no process-wide settings
// singleton.
package config
