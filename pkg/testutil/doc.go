// Package testutil provides utilities for testing templatepig components.
//
// Key components:
//   - NewTestFS / WriteTree: in-memory filesystem seeded from a path->content map
//   - FakeHost: a types.Host that records notices, exceptions and log lines
//     and replays scripted prompt answers
//
// Usage guidelines:
//   - Tests use the in-memory filesystem; only pkg/filesystem touches disk
//   - All test data should be defined inline, not in external files
package testutil
