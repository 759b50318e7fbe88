package file_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aretw0/mdpipe/pkg/adapters/builtin"
	"github.com/aretw0/mdpipe/pkg/adapters/file"
	"github.com/aretw0/mdpipe/pkg/ports"
	contract "github.com/aretw0/mdpipe/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string, mode os.FileMode) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	return path
}

func pathCandidate(path string) ports.Candidate {
	return ports.Candidate{Kind: ports.CandidatePath, Path: path, Identifier: filepath.Base(path)}
}

func TestLoader_Contract(t *testing.T) {
	dir := t.TempDir()
	manifest := writeFile(t, filepath.Join(dir, "style.yaml"), "settings:\n  bullet: \"-\"\n", 0o644)
	pluginDir := filepath.Join(dir, "pack")
	writeFile(t, filepath.Join(pluginDir, "plugin.json"), `{"use": ["gfm"]}`, 0o644)

	loader := file.NewLoader(builtin.Default())
	contract.PluginLoaderContractTest(t, loader,
		[]ports.Candidate{
			pathCandidate(manifest),
			pathCandidate(pluginDir),
			{Kind: ports.CandidateModule, Path: "gfm", Identifier: "gfm"},
		},
		[]ports.Candidate{
			pathCandidate(filepath.Join(dir, "missing")),
			{Kind: ports.CandidatePackage, Path: filepath.Join(dir, "node_modules", "missing"), Identifier: "missing"},
			{Kind: ports.CandidateModule, Path: "missing", Identifier: "missing"},
		},
	)
}

func TestLoader_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("First Existing Candidate Wins", func(t *testing.T) {
		dir := t.TempDir()
		local := writeFile(t, filepath.Join(dir, "fmt.yaml"), "name: local\nsettings:\n  bullet: \"-\"\n", 0o644)
		pkg := writeFile(t, filepath.Join(dir, "node_modules", "fmt.yaml"), "name: package\nsettings:\n  bullet: \"+\"\n", 0o644)

		plugin, err := file.NewLoader(nil).Load(ctx, []ports.Candidate{pathCandidate(local), pathCandidate(pkg)})
		require.NoError(t, err)
		assert.Equal(t, "local", plugin.Name())
	})

	t.Run("Selected Candidate Failure Does Not Fall Through", func(t *testing.T) {
		dir := t.TempDir()
		broken := writeFile(t, filepath.Join(dir, "fmt.yaml"), "use: [nope]\n", 0o644)
		good := writeFile(t, filepath.Join(dir, "node_modules", "fmt.yaml"), "use: [gfm]\n", 0o644)

		_, err := file.NewLoader(builtin.Default()).Load(ctx, []ports.Candidate{pathCandidate(broken), pathCandidate(good)})
		require.Error(t, err)
		assert.False(t, errors.Is(err, ports.ErrNotFound))
		assert.Contains(t, err.Error(), "nope")
	})

	t.Run("Directory Without Manifest", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "empty")
		require.NoError(t, os.MkdirAll(dir, 0o755))

		_, err := file.NewLoader(nil).Load(ctx, []ports.Candidate{pathCandidate(dir)})
		assert.ErrorContains(t, err, "has no manifest")
	})

	t.Run("Unsupported File", func(t *testing.T) {
		path := writeFile(t, filepath.Join(t.TempDir(), "notes.txt"), "hi", 0o644)

		_, err := file.NewLoader(nil).Load(ctx, []ports.Candidate{pathCandidate(path)})
		assert.ErrorContains(t, err, "unsupported plugin file")
	})

	t.Run("Executable File", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("shell scripts are not executable on windows")
		}
		path := writeFile(t, filepath.Join(t.TempDir(), "shout.sh"), "#!/bin/sh\ncat\n", 0o755)

		plugin, err := file.NewLoader(nil).Load(ctx, []ports.Candidate{pathCandidate(path)})
		require.NoError(t, err)
		assert.Equal(t, "shout", plugin.Name())
	})

	t.Run("Module Falls Back To Prefixed Command", func(t *testing.T) {
		var looked string
		loader := file.NewLoader(builtin.Default(), file.WithLookPath(func(name string) (string, error) {
			looked = name
			return "/usr/local/bin/" + name, nil
		}))

		plugin, err := loader.Load(ctx, []ports.Candidate{{Kind: ports.CandidateModule, Path: "Lint"}})
		require.NoError(t, err)
		assert.Equal(t, "mdpipe-lint", looked)
		assert.Equal(t, "mdpipe-lint", plugin.Name())
	})

	t.Run("Builtin Wins Over Command", func(t *testing.T) {
		loader := file.NewLoader(builtin.Default(), file.WithLookPath(func(name string) (string, error) {
			t.Fatalf("unexpected lookup of %s", name)
			return "", nil
		}))

		plugin, err := loader.Load(ctx, []ports.Candidate{{Kind: ports.CandidateModule, Path: "mdpipe-table"}})
		require.NoError(t, err)
		assert.Equal(t, "table", plugin.Name())
	})

	t.Run("Canceled Context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := file.NewLoader(nil).Load(canceled, []ports.Candidate{{Kind: ports.CandidateModule, Path: "gfm"}})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
