package rules

// Encodings accepted for rule fields
const (
	EncodingText = "text"
	EncodingHex  = "hex"
)

// PatchSet is a parsed patch set file.
type PatchSet struct {
	Name   string     `yaml:"name" toml:"name"`
	Target TargetSpec `yaml:"target" toml:"target"`
	Rules  []RuleSpec `yaml:"rules" toml:"rules"`

	// Path is the file the set was loaded from.
	Path string `yaml:"-" toml:"-"`
}

// TargetSpec describes how to find the file a patch set applies to.
type TargetSpec struct {
	// File is the target path relative to an application directory.
	File string `yaml:"file" toml:"file"`
	// Search lists candidate application directories per GOOS.
	Search map[string][]string `yaml:"search" toml:"search"`
	// PathBinary is an executable whose PATH entry's parent directory is
	// tried as an application directory.
	PathBinary string `yaml:"path_binary" toml:"path_binary"`
}

// RuleSpec is one rule as written in a patch set.
type RuleSpec struct {
	Name        string `yaml:"name" toml:"name"`
	Pattern     string `yaml:"pattern" toml:"pattern"`
	Replacement string `yaml:"replacement" toml:"replacement"`
	Probe       string `yaml:"probe" toml:"probe"`
	Encoding    string `yaml:"encoding" toml:"encoding"`
	Template    bool   `yaml:"template" toml:"template"`
}

// DisplayName returns the set name, falling back to its file name.
func (p *PatchSet) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Path
}
