// Package testutil provides testify-based mock implementations of the
// repository interfaces plus fixture helpers shared across unit tests.
package testutil
