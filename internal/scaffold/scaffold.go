// Package scaffold writes a minimal starter project around generated code.
package scaffold

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"github.com/nevora/english-to-code/internal/targets"
)

// File is one file of a project layout, relative to the project root.
type File struct {
	Path    string
	Content string
}

// SourceFile returns the path, relative to the project root, where the
// generated unit lives for target.
func SourceFile(target string) (string, error) {
	switch targets.Normalize(target) {
	case targets.Python:
		return filepath.Join("src", "generated_feature.py"), nil
	case targets.JavaScript:
		return filepath.Join("src", "generatedFeature.js"), nil
	case targets.CSharp:
		return targets.UnitName + ".cs", nil
	case targets.CPP:
		return "main.cpp", nil
	case targets.GDScript:
		return targets.UnitName + ".gd", nil
	}
	return "", unsupported(target)
}

// Layout returns every file of the starter project for target.
func Layout(target, code string) ([]File, error) {
	source, err := SourceFile(target)
	if err != nil {
		return nil, err
	}
	files := []File{{Path: source, Content: code}}

	switch targets.Normalize(target) {
	case targets.Python:
		manifest, err := pyproject()
		if err != nil {
			return nil, err
		}
		files = append(files,
			File{Path: "pyproject.toml", Content: manifest},
			File{Path: filepath.Join("tests", "test_generated.py"), Content: pythonTest},
		)
	case targets.JavaScript:
		manifest, err := packageJSON()
		if err != nil {
			return nil, err
		}
		files = append(files,
			File{Path: "package.json", Content: manifest},
			File{Path: filepath.Join("test", "generatedFeature.test.js"), Content: javascriptTest},
		)
	case targets.CSharp:
		files = append(files,
			File{Path: targets.UnitName + ".csproj", Content: csproj},
			File{Path: filepath.Join("tests", "SmokeTests.cs"), Content: csharpTest},
		)
	case targets.CPP:
		files = append(files,
			File{Path: "CMakeLists.txt", Content: cmakeLists},
			File{Path: filepath.Join("tests", "smoke_test.cpp"), Content: cppTest},
		)
	case targets.GDScript:
		files = append(files,
			File{Path: "project.godot", Content: projectGodot},
			File{Path: filepath.Join("tests", "test_generated_feature.gd"), Content: gdscriptTest},
		)
	}
	return files, nil
}

// Write materializes the layout for target under dir and returns dir.
// Existing directories are reused; existing files are overwritten.
func Write(dir, target, code string) (string, error) {
	files, err := Layout(target, code)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		path := filepath.Join(dir, f.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", errors.Wrapf(err, "create directory for %s", f.Path)
		}
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			return "", errors.Wrapf(err, "write %s", f.Path)
		}
	}
	return dir, nil
}

func unsupported(target string) error {
	return errors.Mark(errors.Newf("no scaffold for target %q", target), targets.ErrUnsupportedTarget)
}

type pyprojectFile struct {
	Project struct {
		Name           string `toml:"name"`
		Version        string `toml:"version"`
		RequiresPython string `toml:"requires-python"`
	} `toml:"project"`
	Tool struct {
		Pytest struct {
			IniOptions struct {
				Testpaths  []string `toml:"testpaths"`
				Pythonpath []string `toml:"pythonpath"`
			} `toml:"ini_options"`
		} `toml:"pytest"`
	} `toml:"tool"`
}

func pyproject() (string, error) {
	var doc pyprojectFile
	doc.Project.Name = "generated-feature"
	doc.Project.Version = "0.1.0"
	doc.Project.RequiresPython = ">=3.9"
	doc.Tool.Pytest.IniOptions.Testpaths = []string{"tests"}
	doc.Tool.Pytest.IniOptions.Pythonpath = []string{"src"}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return "", errors.Wrap(err, "encode pyproject.toml")
	}
	return buf.String(), nil
}

func packageJSON() (string, error) {
	doc := struct {
		Name    string            `json:"name"`
		Version string            `json:"version"`
		Main    string            `json:"main"`
		Private bool              `json:"private"`
		Scripts map[string]string `json:"scripts"`
	}{
		Name:    "generated-feature",
		Version: "0.1.0",
		Main:    "src/generatedFeature.js",
		Private: true,
		Scripts: map[string]string{"test": "node --test test/"},
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode package.json")
	}
	return string(out) + "\n", nil
}

const pythonTest = `import importlib.util
import pathlib


def test_generated_feature_starts_idle():
    path = pathlib.Path(__file__).resolve().parents[1] / "src" / "generated_feature.py"
    spec = importlib.util.spec_from_file_location("generated_feature", path)
    module = importlib.util.module_from_spec(spec)
    spec.loader.exec_module(module)
    assert module.GeneratedFeature().status == "idle"
`

const javascriptTest = `const test = require("node:test");
const assert = require("node:assert");
const { GeneratedFeature } = require("../src/generatedFeature.js");

test("generated feature starts idle", () => {
  assert.strictEqual(new GeneratedFeature().status, "idle");
});
`

// The smoke test is excluded from compilation so the project builds as a
// plain library without a test framework reference.
const csproj = `<Project Sdk="Microsoft.NET.Sdk">

  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
    <RootNamespace>GeneratedFeature</RootNamespace>
  </PropertyGroup>

  <ItemGroup>
    <Compile Remove="tests/**" />
  </ItemGroup>

</Project>
`

const csharpTest = `// Move into a test project that references GeneratedFeature.csproj.
public static class SmokeTests
{
    public static bool GeneratedFeatureStartsIdle()
    {
        return new GeneratedFeature().Status == "idle";
    }
}
`

const cmakeLists = `cmake_minimum_required(VERSION 3.16)
project(GeneratedFeature CXX)

set(CMAKE_CXX_STANDARD 17)
set(CMAKE_CXX_STANDARD_REQUIRED ON)

add_executable(generated_feature main.cpp)

enable_testing()
add_executable(smoke_test tests/smoke_test.cpp)
add_test(NAME smoke_test COMMAND smoke_test)
`

const cppTest = `// Placeholder until the feature is split into a header.
int main() {
    return 0;
}
`

const projectGodot = `; Engine configuration file.

config_version=5

[application]

config/name="GeneratedFeature"
`

const gdscriptTest = "extends SceneTree\n\n\nfunc _init() -> void:\n\tvar feature = preload(\"res://GeneratedFeature.gd\").new()\n\tassert(feature.status == \"idle\")\n\tfeature.free()\n\tquit()\n"
