package types

// TargetLocator resolves which file a run patches.
type TargetLocator interface {
	Locate() (string, error)
}

// TargetStore reads, backs up and writes the patched file.
type TargetStore interface {
	// Load reads the whole file into memory.
	Load(path string) ([]byte, error)
	// Backup copies the file aside unless a backup already exists.
	Backup(path string) (BackupResult, error)
	// Save writes data over the file. A locked destination fails with
	// an ErrResourceBusy error.
	Save(path string, data []byte) error
}

// BackupResult describes what Backup did.
type BackupResult struct {
	Source string `json:"source"`
	Path   string `json:"path"`
	// Created is false when a backup was already in place.
	Created bool `json:"created"`
}
