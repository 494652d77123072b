// Package cli provides shared functionality for the command-line surface:
// output format handling (table, wide, json, yaml), endpoint resolution,
// progress spinners, and user-facing connection error classification.
package cli
