// Package pipe owns the conversation with one engine process.
//
// Ownership boundary:
// - transport contract and its crash/close sentinels
// - command submission, capture, and structured queries
// - the append-only command history log
package pipe
