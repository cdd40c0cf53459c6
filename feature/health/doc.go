// Package health exposes GET /health, which pings the database.
package health
