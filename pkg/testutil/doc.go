// Package testutil provides helpers for testing repatch components.
//
// Key components:
//   - NewTestFS and WriteFiles: in-memory filesystems seeded inline
//   - MockLocator and MockStore: testify mocks of the target collaborators
//
// Test data should be defined inline, not in external files.
package testutil
