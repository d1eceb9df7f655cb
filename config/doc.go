// Package config loads pipeline configuration from YAML.
//
// A file describes the cache, retry, and observability sections; absent
// fields keep their defaults, and duration fields accept Go syntax such as
// "250ms" or "1h30m". Values like ${VAR} and ${VAR:-fallback} are expanded
// from the environment before parsing. Each section converts into the
// runtime type the owning package consumes.
package config
