// Package source provides MembershipSource implementations.
//
//   - Static: in-memory source seeded with a host list; Add/Remove push
//     live events (tests, examples, bootstrap)
//   - NATS: membership events published as JSON on a NATS core subject
//   - JetStream: replays a persistent membership log from a JetStream
//     stream, so join/leave history survives restarts
package source
