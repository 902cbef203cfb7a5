// Package logging provides structured JSON logging with size-based rotation
// for notemcp.
//
// While serving over stdio, stdout carries JSON-RPC exclusively, so the
// server logs only to ~/.notemcp/logs/server.log. Other commands log to
// stderr and, with --debug, to the same file. The logs command reads the
// file back.
package logging
