// Package types defines the interfaces and result structures shared by
// the run pipeline, its collaborators and the reporters.
package types
