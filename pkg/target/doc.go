// Package target finds, reads, backs up and writes the file a patch set
// applies to.
//
// Locator resolves the file from an explicit path, from per-OS search
// directories, or from the location of a binary on PATH. Store does the
// I/O through an afero.Fs: a backup is taken once and never overwritten,
// and a write that fails because another process holds the file is
// reported as ErrResourceBusy so the caller can close the application
// and retry without re-patching.
package target
