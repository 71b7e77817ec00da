// Package tao is the typed client surface over one engine session.
//
// Ownership boundary:
// - session construction (spawn + channel + decoder wiring)
// - typed queries: property maps, parameter tables, lists, curves
// - lattice and optimization commands built on the raw channel
package tao
