// Package app wires the tokenguard server: environment configuration,
// logging, and the backing Redis and principal store.
package app
