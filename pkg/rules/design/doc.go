// Package design provides rules about type hierarchies and coupling,
// driven by the cbo, dit and nocc metrics.
package design
