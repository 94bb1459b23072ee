// Package config loads, normalizes, and validates shotsync configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for the
// Kitsu credentials (KITSU_SERVER, KITSU_EMAIL, KITSU_PASSWORD), seeding the
// environment from a .env file when one is present. The Config type
// centralizes the breakdown column names, ffmpeg export settings, and
// tracking server options so every command resolves them in one pass.
package config
