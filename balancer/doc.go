// Package balancer implements the default managed sub-balancer.
//
// A Managed balancer owns one partition's host pool. It consumes the
// partition's private membership feed, connects newly added hosts, watches
// them for failures, quarantines failed hosts for a configurable delay,
// and selects among the healthy ones using pluggable weighting and
// selection strategies.
//
// The partitioned balancer in the root package uses this implementation as
// its default factory when no custom factory is configured.
package balancer
