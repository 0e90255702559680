package rules_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/rules"
)

const yamlSet = `
name: hide-banner
target:
  file: resources/app.js
  search:
    linux: ["~/.local/share/app", "/opt/app"]
    darwin: ["/Applications/App.app/Contents"]
  path_binary: app
rules:
  - name: banner
    pattern: 'showBanner:\s*true'
    replacement: 'showBanner: false'
    probe: 'showBanner: false'
  - name: magic
    encoding: hex
    pattern: "de ad"
    replacement: "be ef"
    probe: "be ef"
`

const tomlSet = `
name = "hide-banner"

[target]
file = "resources/app.js"
path_binary = "app"

[target.search]
linux = ["/opt/app"]

[[rules]]
name = "banner"
pattern = 'showBanner:\s*true'
replacement = "showBanner: false"
probe = "showBanner: false"
`

func TestLoad_YAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/sets/banner.yaml", []byte(yamlSet), 0644))

	set, err := rules.Load(fs, "/sets/banner.yaml")
	require.NoError(t, err)

	assert.Equal(t, "hide-banner", set.Name)
	assert.Equal(t, "/sets/banner.yaml", set.Path)
	assert.Equal(t, "resources/app.js", set.Target.File)
	assert.Equal(t, []string{"~/.local/share/app", "/opt/app"}, set.Target.Search["linux"])
	assert.Equal(t, "app", set.Target.PathBinary)
	require.Len(t, set.Rules, 2)
	assert.Equal(t, `showBanner:\s*true`, set.Rules[0].Pattern)
	assert.Equal(t, rules.EncodingHex, set.Rules[1].Encoding)
}

func TestLoad_TOML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/sets/banner.toml", []byte(tomlSet), 0644))

	set, err := rules.Load(fs, "/sets/banner.toml")
	require.NoError(t, err)

	assert.Equal(t, "hide-banner", set.DisplayName())
	assert.Equal(t, []string{"/opt/app"}, set.Target.Search["linux"])
	require.Len(t, set.Rules, 1)
	assert.Equal(t, "showBanner: false", set.Rules[0].Probe)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := rules.Load(afero.NewMemMapFs(), "/nope.yaml")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRuleFile))
	assert.Equal(t, "/nope.yaml", errors.GetErrorDetails(err)["path"])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		ext  string
	}{
		{"unknown extension", "rules: []", ".json"},
		{"unknown yaml field", "rules:\n  - pattern: a\n    probe: b\n    colour: red\n", ".yaml"},
		{"unknown toml field", "[[rules]]\npattern = \"a\"\nprobe = \"b\"\ncolour = \"red\"\n", ".toml"},
		{"no rules", "name: empty\n", ".yml"},
		{"missing pattern", "rules:\n  - probe: b\n", ".yaml"},
		{"missing probe", "rules:\n  - pattern: a\n", ".yaml"},
		{"bad encoding", "rules:\n  - pattern: a\n    probe: b\n    encoding: base64\n", ".yaml"},
		{"duplicate names", "rules:\n  - {name: x, pattern: a, probe: b}\n  - {name: x, pattern: c, probe: d}\n", ".yaml"},
		{"broken yaml", "rules: [\n", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rules.Parse([]byte(tt.data), tt.ext)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrRuleFile), "got %v", err)
		})
	}
}

func TestParse_UnnamedRulesMayRepeat(t *testing.T) {
	set, err := rules.Parse([]byte("rules:\n  - {pattern: a, probe: b}\n  - {pattern: a, probe: b}\n"), ".YAML")
	require.NoError(t, err)
	assert.Len(t, set.Rules, 2)
	assert.Empty(t, set.DisplayName())
}
