package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/mdpipe/pkg/domain"
	"github.com/aretw0/mdpipe/pkg/options"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveInput(t *testing.T) {
	tty := domain.Invocation{StdinIsTTY: true}

	tests := []struct {
		name    string
		inv     domain.Invocation
		opts    Options
		want    string
		wantErr string
	}{
		{name: "Piped", inv: domain.Invocation{}, want: ""},
		{name: "Piped With File", inv: domain.Invocation{}, opts: Options{Args: []string{"a.md"}}, wantErr: "piped input"},
		{name: "Terminal With File", inv: tty, opts: Options{Args: []string{"a.md"}}, want: "a.md"},
		{name: "Terminal Reuses Output", inv: tty, opts: Options{Output: "out.md"}, want: "out.md"},
		{name: "Terminal File Beats Output", inv: tty, opts: Options{Output: "out.md", Args: []string{"a.md"}}, want: "a.md"},
		{name: "Terminal Without Input", inv: tty, wantErr: "missing input"},
		{name: "Terminal With Two Files", inv: tty, opts: Options{Args: []string{"a.md", "b.md"}}, wantErr: "got 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveInput(tt.inv, tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, domain.KindInvocation, domain.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBindFlags(t *testing.T) {
	var opts Options
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, &opts)

	require.NoError(t, fs.Parse([]string{
		"-s", "bullet: -, setext",
		"--setting", "bullet: +",
		"-u", "gfm, ./local",
		"--use", "gfm",
		"--ast",
		"-o", "out.md",
		"doc.md",
	}))

	assert.Equal(t, map[string]any{"bullet": "+", "setext": true}, opts.Settings.Map())
	assert.Equal(t, []string{"gfm", "./local", "gfm"}, opts.Plugins)
	assert.True(t, opts.AST)
	assert.Equal(t, "out.md", opts.Output)
	assert.Equal(t, "text", opts.LogFormat)
	assert.Equal(t, []string{"doc.md"}, fs.Args())
	assert.Equal(t, "bullet: -, setext; bullet: +", fs.Lookup("setting").Value.String())
}

func TestSettingsValue_StartsEmpty(t *testing.T) {
	var settings options.Settings
	v := NewSettingsValue(&settings)
	assert.Equal(t, "settings", v.Type())
	assert.Empty(t, v.String())
	require.NoError(t, v.Set("quote: '"))
	assert.Equal(t, "'", settings.Map()["quote"])
}

func TestReport(t *testing.T) {
	t.Run("Run Error Uses Diagnostic", func(t *testing.T) {
		var buf bytes.Buffer
		Report(&buf, domain.NewError(domain.KindIO, domain.StageParsed, errors.New("read input: gone")), false)
		assert.Equal(t, "mdpipe: io error: read input: gone\n", buf.String())
	})

	t.Run("Plain Error", func(t *testing.T) {
		var buf bytes.Buffer
		Report(&buf, errors.New("unknown flag: --x"), false)
		assert.Equal(t, "mdpipe: unknown flag: --x\n", buf.String())
	})

	t.Run("Nil Prints Nothing", func(t *testing.T) {
		var buf bytes.Buffer
		Report(&buf, nil, true)
		assert.Empty(t, buf.String())
	})

	t.Run("Terminal Prefix Is Styled", func(t *testing.T) {
		var buf bytes.Buffer
		Report(&buf, errors.New("boom"), true)
		assert.True(t, strings.HasPrefix(buf.String(), "\x1b["), buf.String())
		assert.Contains(t, buf.String(), "mdpipe:")
		assert.True(t, strings.HasSuffix(buf.String(), " boom\n"), buf.String())
	})
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("x")))
	assert.Equal(t, 1, ExitCode(domain.Invocationf("bad")))
}

func TestCreateLogger(t *testing.T) {
	t.Run("Rejects Unknown Format", func(t *testing.T) {
		_, err := createLogger(domain.Invocation{}, Options{LogFormat: "xml"})
		assert.Equal(t, domain.KindInvocation, domain.KindOf(err))
	})

	t.Run("Verbose Writes To Stderr", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := createLogger(domain.Invocation{Stderr: &buf}, Options{Verbose: true, LogFormat: "json"})
		require.NoError(t, err)
		logger.Debug("hello")
		assert.True(t, strings.HasPrefix(buf.String(), "{"))
	})

	t.Run("Quiet By Default", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := createLogger(domain.Invocation{Stderr: &buf}, Options{})
		require.NoError(t, err)
		logger.Error("hidden")
		assert.Empty(t, buf.String())
	})
}

func TestRun_MetricsFile(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	inv := domain.Invocation{WorkDir: dir, Stdin: strings.NewReader("# Hi\n"), Stdout: &out, Stderr: &bytes.Buffer{}}
	path := filepath.Join(dir, "run.prom")

	require.NoError(t, Run(context.Background(), inv, Options{NoConfig: true, MetricsFile: path}))
	assert.Equal(t, "# Hi\n", out.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `mdpipe_runs_total{outcome="success"} 1`)
	assert.Contains(t, string(data), `mdpipe_stage_duration_seconds_count{stage="done"} 1`)
}
