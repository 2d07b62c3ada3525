// Package types contains the core types and interfaces shared across the
// ocelli library.
//
// Internal packages depend on this package instead of the root ocelli
// package, which avoids import cycles. The root package re-exports the
// definitions here via type aliases for user convenience.
package types
