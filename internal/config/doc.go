// Package config loads, normalizes, and validates speakertag configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the SPEAKERTAG_DB environment
// fallback. Resolver thresholds live here too so a deployment can tune the
// review threshold or utterance gate without code changes.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
