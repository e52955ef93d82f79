// Package client contains the client-side gateways to the inventory server.
//
// ProductStore is the remote product store: one-shot reads and writes plus
// live streams of the product list and of the total inventory value.
// AuthGateway signs users in and keeps the session in memory. GRPCClient
// implements both over gRPC: it injects the access token on every call,
// refreshes it transparently when the server reports it expired and maps
// status codes to sentinel errors (ErrUnavailable, ErrUnauthorized, and the
// common package errors).
//
// InitDatabase and RunMigrations bootstrap the local SQLite database used
// for the session flag.
package client
