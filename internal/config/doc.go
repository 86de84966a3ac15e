// Package config loads Tauraro's ambient configuration: the
// TAURARO_PATH environment variable and an optional tauraro.yaml file
// (search-path roots, FFI library aliases, default memory strategy),
// per SPEC_FULL.md §B "Config".
package config
