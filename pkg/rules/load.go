package rules

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/logging"
)

// LoadFile reads a patch set from the OS filesystem.
func LoadFile(path string) (*PatchSet, error) {
	return Load(afero.NewOsFs(), path)
}

// Load reads and validates a patch set. The format is chosen by extension.
func Load(fs afero.Fs, path string) (*PatchSet, error) {
	logger := logging.GetLogger("rules")

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRuleFile, "cannot read patch set %s", path).
			WithDetail("path", path)
	}

	set, err := Parse(data, filepath.Ext(path))
	if err != nil {
		if details := errors.GetErrorDetails(err); details != nil {
			details["path"] = path
		}
		return nil, err
	}
	set.Path = path

	logger.Debug().
		Str("path", path).
		Str("name", set.Name).
		Int("rules", len(set.Rules)).
		Msg("Loaded patch set")
	return set, nil
}

// Parse decodes a patch set. ext selects the format (".yaml", ".yml" or
// ".toml"); unknown keys are rejected in both.
func Parse(data []byte, ext string) (*PatchSet, error) {
	var set PatchSet

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&set); err != nil {
			return nil, errors.Wrap(err, errors.ErrRuleFile, "invalid YAML patch set")
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&set); err != nil {
			return nil, errors.Wrap(err, errors.ErrRuleFile, "invalid TOML patch set")
		}
	default:
		return nil, errors.Newf(errors.ErrRuleFile, "unsupported patch set format %q", ext).
			WithHint("use a .yaml, .yml or .toml file")
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// Validate checks the structure of a patch set. Expressions are compiled
// later by the engine.
func (p *PatchSet) Validate() error {
	if len(p.Rules) == 0 {
		return errors.New(errors.ErrRuleFile, "patch set has no rules")
	}

	seen := make(map[string]int)
	for i, r := range p.Rules {
		label := ruleLabel(i, r)
		if r.Pattern == "" {
			return errors.Newf(errors.ErrRuleFile, "%s has no pattern", label)
		}
		if r.Probe == "" {
			return errors.Newf(errors.ErrRuleFile, "%s has no probe", label).
				WithHint("the probe must match what the replacement produces")
		}
		switch r.Encoding {
		case "", EncodingText, EncodingHex:
		default:
			return errors.Newf(errors.ErrRuleFile, "%s has unknown encoding %q", label, r.Encoding)
		}
		if r.Name == "" {
			continue
		}
		if prev, ok := seen[r.Name]; ok {
			return errors.Newf(errors.ErrRuleFile, "rule name %q is used by rules %d and %d", r.Name, prev+1, i+1)
		}
		seen[r.Name] = i
	}
	return nil
}

func ruleLabel(i int, r RuleSpec) string {
	if r.Name != "" {
		return fmt.Sprintf("rule %q", r.Name)
	}
	return fmt.Sprintf("rule %d", i+1)
}
