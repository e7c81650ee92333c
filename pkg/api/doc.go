// Package api holds the request and response messages of the creditledger.v1
// services. Messages travel as JSON; validate tags are checked on the server
// before a handler runs.
package api
