// Package server holds the HTTP server configuration.
//
// While the cmd package handles the server startup, this package defines the
// configuration structure for the listener: port, API key, body limit and
// graceful shutdown budget.
package server
