// Package rabbitmq holds the broker plumbing used by the relay command:
// dialing with a timeout, opening channels, declaring the target exchange
// and keeping connection URLs out of logs.
package rabbitmq
