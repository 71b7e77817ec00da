// Package protocol owns the text wire contract and decoding primitives.
//
// Ownership boundary:
// - command serialization (argument joining, numeric rendering)
// - record splitting and per-field kind dispatch
// - array reassembly and count-field consistency checks
// - numeric table extraction
package protocol
