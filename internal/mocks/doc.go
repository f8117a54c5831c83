// Package mocks provides reusable mock implementations for testing.
//
// Instead of defining inline mocks in individual test files, these
// implementations can be shared across test packages.
package mocks
