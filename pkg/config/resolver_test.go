package config_test

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/mdpipe/pkg/config"
	"github.com/aretw0/mdpipe/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func resolve(t *testing.T, workDir string, req domain.ConfigRequest, filename string, opts ...config.Option) (*domain.Configuration, error) {
	t.Helper()
	r, err := config.NewResolver(workDir, req, opts...)
	require.NoError(t, err)
	return r.Configuration(filename)
}

func TestResolver_Formats(t *testing.T) {
	want := &domain.Configuration{
		Settings: map[string]any{"bullet": "-", "ruleRepetition": 5.0},
		Plugins:  []string{"gfm", "./lint.yaml"},
	}

	files := map[string]string{
		".mdpiperc":      "settings:\n  bullet: \"-\"\n  ruleRepetition: 5\nplugins: [gfm, ./lint.yaml]\n",
		".mdpiperc.json": `{"settings": {"bullet": "-", "ruleRepetition": 5}, "plugins": ["gfm", "./lint.yaml"]}`,
		".mdpiperc.yaml": "settings:\n  bullet: \"-\"\n  ruleRepetition: 5\nplugins:\n  - gfm\n  - ./lint.yaml\n",
		".mdpiperc.yml":  "settings: {bullet: \"-\", ruleRepetition: 5}\nplugins: [gfm, ./lint.yaml]\n",
		".mdpiperc.hcl":  "settings = {\n  bullet = \"-\"\n  ruleRepetition = 5\n}\nplugins = [\"gfm\", \"./lint.yaml\"]\n",
		"package.json":   `{"name": "docs", "mdpipeConfig": {"settings": {"bullet": "-", "ruleRepetition": 5}, "plugins": ["gfm", "./lint.yaml"]}}`,
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, filepath.Join(dir, name), content)

			got, err := resolve(t, dir, domain.ConfigRequest{Detect: true}, "")
			require.NoError(t, err)

			expected := *want
			expected.Source = path
			assert.Equal(t, &expected, got)
		})
	}
}

func TestResolver_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".mdpiperc.json"), `{"settings": {"bullet": "-", "emphasis": "_"}, "plugins": ["gfm"]}`)

	got, err := resolve(t, dir, domain.ConfigRequest{
		Detect:   true,
		Settings: map[string]any{"emphasis": "*", "setext": true},
		Plugins:  []string{"table", "gfm"},
	}, "", config.WithDefaults(map[string]any{"bullet": "+", "rule": "-", "setext": false}))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"bullet":   "-",
		"emphasis": "*",
		"rule":     "-",
		"setext":   true,
	}, got.Settings)
	assert.Equal(t, []string{"gfm", "table", "gfm"}, got.Plugins)
}

func TestResolver_Discovery(t *testing.T) {
	t.Run("Walks Up From The File", func(t *testing.T) {
		root := t.TempDir()
		path := writeFile(t, filepath.Join(root, ".mdpiperc.yaml"), "plugins: [gfm]\n")
		nested := filepath.Join(root, "a", "b")
		require.NoError(t, os.MkdirAll(nested, 0o755))

		got, err := resolve(t, root, domain.ConfigRequest{Detect: true}, filepath.Join("a", "b", "doc.md"))
		require.NoError(t, err)
		assert.Equal(t, path, got.Source)
		assert.Equal(t, []string{"gfm"}, got.Plugins)
	})

	t.Run("Nearest File Wins", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, ".mdpiperc.yaml"), "plugins: [outer]\n")
		inner := writeFile(t, filepath.Join(root, "a", ".mdpiperc.yaml"), "plugins: [inner]\n")

		got, err := resolve(t, root, domain.ConfigRequest{Detect: true}, filepath.Join(root, "a", "doc.md"))
		require.NoError(t, err)
		assert.Equal(t, inner, got.Source)
	})

	t.Run("Rc File Wins Over Package In Same Directory", func(t *testing.T) {
		root := t.TempDir()
		rc := writeFile(t, filepath.Join(root, ".mdpiperc.json"), `{"plugins": ["rc"]}`)
		writeFile(t, filepath.Join(root, "package.json"), `{"mdpipeConfig": {"plugins": ["pkg"]}}`)

		got, err := resolve(t, root, domain.ConfigRequest{Detect: true}, "")
		require.NoError(t, err)
		assert.Equal(t, rc, got.Source)
	})

	t.Run("Package Without Field Is Skipped", func(t *testing.T) {
		root := t.TempDir()
		outer := writeFile(t, filepath.Join(root, ".mdpiperc.json"), `{"plugins": ["outer"]}`)
		writeFile(t, filepath.Join(root, "docs", "package.json"), `{"name": "docs"}`)

		got, err := resolve(t, filepath.Join(root, "docs"), domain.ConfigRequest{Detect: true}, "")
		require.NoError(t, err)
		assert.Equal(t, outer, got.Source)
	})

	t.Run("Detection Disabled", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, ".mdpiperc.json"), `{"plugins": ["gfm"]}`)

		got, err := resolve(t, root, domain.ConfigRequest{Detect: false, Plugins: []string{"cli"}}, "")
		require.NoError(t, err)
		assert.Empty(t, got.Source)
		assert.Equal(t, []string{"cli"}, got.Plugins)
	})
}

func TestResolver_ExplicitFile(t *testing.T) {
	t.Run("Overrides Discovery", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, ".mdpiperc.json"), `{"plugins": ["discovered"]}`)
		explicit := writeFile(t, filepath.Join(root, "conf", "custom.yml"), "plugins: [explicit]\n")

		got, err := resolve(t, root, domain.ConfigRequest{Detect: true, ConfigFile: filepath.Join("conf", "custom.yml")}, "")
		require.NoError(t, err)
		assert.Equal(t, explicit, got.Source)
		assert.Equal(t, []string{"explicit"}, got.Plugins)
	})

	t.Run("Must Exist", func(t *testing.T) {
		_, err := resolve(t, t.TempDir(), domain.ConfigRequest{ConfigFile: "missing.json"}, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, fs.ErrNotExist))

		var cfgErr *config.Error
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "missing.json", filepath.Base(cfgErr.Path))
	})
}

func TestResolver_Errors(t *testing.T) {
	t.Run("JSON Syntax Error Has Position", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, ".mdpiperc.json"), "{\n  \"plugins\": [gfm]\n}")

		_, err := resolve(t, dir, domain.ConfigRequest{Detect: true}, "")
		require.ErrorIs(t, err, config.ErrSyntax)
		issues := config.Issues(err)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Location, "2:")
	})

	t.Run("HCL Syntax Error", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, ".mdpiperc.hcl"), "plugins = [\n")

		_, err := resolve(t, dir, domain.ConfigRequest{Detect: true}, "")
		require.ErrorIs(t, err, config.ErrSyntax)
		assert.NotEmpty(t, config.Issues(err))
	})

	t.Run("Unknown Key", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, ".mdpiperc.yaml"), "plugin: [gfm]\n")

		_, err := resolve(t, dir, domain.ConfigRequest{Detect: true}, "")
		require.ErrorIs(t, err, config.ErrSchema)
	})

	t.Run("Empty Plugin Name", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, ".mdpiperc.json"), `{"plugins": ["gfm", ""]}`)

		_, err := resolve(t, dir, domain.ConfigRequest{Detect: true}, "")
		require.ErrorIs(t, err, config.ErrSchema)
		issues := config.Issues(err)
		require.NotEmpty(t, issues)
		assert.Equal(t, "/plugins/1", issues[0].Location)
	})

	t.Run("Invalid Command Line Setting", func(t *testing.T) {
		_, err := resolve(t, t.TempDir(), domain.ConfigRequest{Settings: map[string]any{"bullet": "x"}}, "")
		require.ErrorIs(t, err, config.ErrInvalidSettings)

		var cfgErr *config.Error
		require.True(t, errors.As(err, &cfgErr))
		assert.Empty(t, cfgErr.Path)
		assert.Contains(t, cfgErr.Diagnostic(), "/bullet")
	})

	t.Run("Invalid File Setting Names The File", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, filepath.Join(dir, ".mdpiperc.json"), `{"settings": {"ruleRepetition": 1}}`)

		_, err := resolve(t, dir, domain.ConfigRequest{Detect: true}, "")
		require.ErrorIs(t, err, config.ErrInvalidSettings)
		assert.Contains(t, err.Error(), path)
	})

	t.Run("Infinite Setting Only Fails Known Numbers", func(t *testing.T) {
		cfg, err := resolve(t, t.TempDir(), domain.ConfigRequest{Settings: map[string]any{"limit": math.Inf(1)}}, "")
		require.NoError(t, err)
		assert.True(t, math.IsInf(cfg.Settings["limit"].(float64), 1))

		_, err = resolve(t, t.TempDir(), domain.ConfigRequest{Settings: map[string]any{"ruleRepetition": math.Inf(1)}}, "")
		require.ErrorIs(t, err, config.ErrInvalidSettings)
	})
}
