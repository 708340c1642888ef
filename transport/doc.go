// Package transport moves IFSF frames over TCP.
//
// Every frame is a 4-digit ASCII body length followed by the body. A Client
// holds one connection and performs strictly alternating request/response
// exchanges on it; a Pool bounds the number of concurrent exchanges against
// one host and keeps idle connections for reuse.
//
// Deadlines and cancellation come from the context passed to each call.
// Frames can be recorded into a capture.Writer as they cross the wire.
package transport
