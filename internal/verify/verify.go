// Package verify runs a syntax-only check of generated code with whatever
// toolchain is installed for the target. A missing toolchain is reported as
// unverified, never as a pass.
package verify

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/nevora/english-to-code/internal/scaffold"
	"github.com/nevora/english-to-code/internal/targets"
)

// NoVerifier is the message for targets without a check.
const NoVerifier = "no verifier for target"

const maxDetail = 2000

// Runner executes name with args in dir, feeding stdin, and returns the
// combined output.
type Runner func(ctx context.Context, dir, stdin, name string, args ...string) (string, error)

// Verifier checks generated code. The zero value is not usable; use New.
type Verifier struct {
	lookPath func(string) (string, error)
	run      Runner
	timeout  time.Duration
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLookPath replaces exec.LookPath.
func WithLookPath(f func(string) (string, error)) Option {
	return func(v *Verifier) { v.lookPath = f }
}

// WithRunner replaces process execution.
func WithRunner(r Runner) Option {
	return func(v *Verifier) { v.run = r }
}

// WithTimeout bounds each toolchain invocation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(v *Verifier) { v.timeout = d }
}

// New returns a Verifier using the host PATH and a two minute bound.
func New(opts ...Option) *Verifier {
	v := &Verifier{
		lookPath: exec.LookPath,
		run:      execRunner,
		timeout:  2 * time.Minute,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func execRunner(ctx context.Context, dir, stdin, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.String(), err
}

// Verify reports whether code passed the target's syntax check, with a
// human-readable message either way.
func (v *Verifier) Verify(ctx context.Context, code, target string) (bool, string) {
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	switch targets.Normalize(target) {
	case targets.Python:
		return v.python(ctx, code)
	case targets.JavaScript:
		return v.javascript(ctx, code)
	case targets.CPP:
		return v.cpp(ctx, code)
	case targets.CSharp:
		return v.csharp(ctx, code)
	case targets.GDScript:
		return v.gdscript(ctx, code)
	}
	return false, NoVerifier
}

func (v *Verifier) python(ctx context.Context, code string) (bool, string) {
	const tool = "python3"
	if !v.available(tool) {
		return false, tool + " unavailable"
	}
	out, err := v.run(ctx, "", code, tool, "-c", "import ast, sys; ast.parse(sys.stdin.read(), '<generated>')")
	return outcome(tool, out, err)
}

func (v *Verifier) javascript(ctx context.Context, code string) (bool, string) {
	const tool = "node"
	if !v.available(tool) {
		return false, tool + " unavailable"
	}
	return v.inWorkspace(tool, func(dir string) (string, error) {
		path := filepath.Join(dir, "generatedFeature.js")
		if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
			return "", err
		}
		return v.run(ctx, dir, "", tool, "--check", path)
	})
}

func (v *Verifier) cpp(ctx context.Context, code string) (bool, string) {
	for _, tool := range []string{"clang++", "g++"} {
		if v.available(tool) {
			out, err := v.run(ctx, "", code, tool, "-std=c++17", "-fsyntax-only", "-x", "c++", "-")
			return outcome(tool, out, err)
		}
	}
	return false, "clang++/g++ unavailable"
}

func (v *Verifier) csharp(ctx context.Context, code string) (bool, string) {
	const tool = "dotnet"
	if !v.available(tool) {
		return false, tool + " unavailable"
	}
	return v.inWorkspace(tool, func(dir string) (string, error) {
		if _, err := scaffold.Write(dir, targets.CSharp, code); err != nil {
			return "", err
		}
		return v.run(ctx, dir, "", tool, "build", "--nologo", "-v", "q")
	})
}

func (v *Verifier) gdscript(ctx context.Context, code string) (bool, string) {
	const tool = "godot"
	if !v.available(tool) {
		return false, tool + " unavailable"
	}
	return v.inWorkspace(tool, func(dir string) (string, error) {
		path := filepath.Join(dir, targets.UnitName+".gd")
		if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
			return "", err
		}
		return v.run(ctx, dir, "", tool, "--headless", "--check-only", "--script", path)
	})
}

func (v *Verifier) available(tool string) bool {
	_, err := v.lookPath(tool)
	return err == nil
}

// inWorkspace runs check inside a temporary directory that is removed
// afterwards.
func (v *Verifier) inWorkspace(tool string, check func(dir string) (string, error)) (bool, string) {
	dir, err := os.MkdirTemp("", "nevora-verify-")
	if err != nil {
		return false, fmt.Sprintf("%s check failed: workspace: %v", tool, err)
	}
	defer os.RemoveAll(dir)

	out, err := check(dir)
	return outcome(tool, out, err)
}

func outcome(tool, out string, err error) (bool, string) {
	out = strings.TrimSpace(out)
	if err != nil {
		detail := out
		if detail == "" {
			detail = err.Error()
		}
		if len(detail) > maxDetail {
			detail = detail[:maxDetail] + "..."
		}
		return false, fmt.Sprintf("%s check failed: %s", tool, detail)
	}
	return true, tool + " syntax ok"
}
