// Package freezer exposes build-level metadata for the freezer module.
package freezer

// Version is the current release version of the freezer module.
const Version = "0.3.0"
