// Package identity exposes identity reconciliation over HTTP.
//
// # HTTP Endpoints
//
//   - POST /identify : Reconciles {"email", "phoneNumber"} and returns {"contact": {...}}.
//     phoneNumber may be sent as a string or a number.
//   - GET /contacts/:id : Returns the consolidated contact of the cluster containing :id.
package identity
