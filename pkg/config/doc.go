// Package config handles configuration management for templatepig.
// It layers the embedded defaults, the user's config file, the workspace's
// .tpig.toml and TPIG_* environment variables using koanf, and decodes the
// result into a Config.
package config
