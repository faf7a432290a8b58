package scaffold

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevora/english-to-code/internal/targets"
)

func TestWriteLayouts(t *testing.T) {
	tests := []struct {
		target string
		files  []string
	}{
		{targets.Python, []string{"src/generated_feature.py", "pyproject.toml", "tests/test_generated.py"}},
		{targets.JavaScript, []string{"src/generatedFeature.js", "package.json", "test/generatedFeature.test.js"}},
		{targets.CSharp, []string{"GeneratedFeature.cs", "GeneratedFeature.csproj", "tests/SmokeTests.cs"}},
		{targets.CPP, []string{"main.cpp", "CMakeLists.txt", "tests/smoke_test.cpp"}},
		{targets.GDScript, []string{"GeneratedFeature.gd", "project.godot", "tests/test_generated_feature.gd"}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "project")
			root, err := Write(dir, tt.target, "// generated\n")
			require.NoError(t, err)
			assert.Equal(t, dir, root)

			for _, name := range tt.files {
				_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name)))
				assert.NoError(t, err, name)
			}

			source, err := SourceFile(tt.target)
			require.NoError(t, err)
			data, err := os.ReadFile(filepath.Join(dir, source))
			require.NoError(t, err)
			assert.Equal(t, "// generated\n", string(data))
		})
	}
}

func TestWriteIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))

	_, err := Write(dir, targets.Python, "first")
	require.NoError(t, err)
	_, err = Write(dir, targets.Python, "second")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "src", "generated_feature.py"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestPyprojectIsValidTOML(t *testing.T) {
	files, err := Layout(targets.Python, "")
	require.NoError(t, err)

	var manifest string
	for _, f := range files {
		if f.Path == "pyproject.toml" {
			manifest = f.Content
		}
	}
	require.NotEmpty(t, manifest)

	var doc pyprojectFile
	_, err = toml.Decode(manifest, &doc)
	require.NoError(t, err)
	assert.Equal(t, "generated-feature", doc.Project.Name)
	assert.Equal(t, []string{"tests"}, doc.Tool.Pytest.IniOptions.Testpaths)
}

func TestPackageJSON(t *testing.T) {
	manifest, err := packageJSON()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(manifest), &doc))
	assert.Equal(t, "src/generatedFeature.js", doc["main"])
}

func TestUnsupportedTarget(t *testing.T) {
	_, err := Write(t.TempDir(), "cobol", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, targets.ErrUnsupportedTarget))
}
