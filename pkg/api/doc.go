// Package api defines the request and response messages of the OneCard
// Connect services. Messages are plain structs encoded as JSON; money
// fields are decimal strings ("12.50").
//
// The service bindings live in package apiconnect.
package api
