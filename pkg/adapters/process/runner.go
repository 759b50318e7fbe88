package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os/exec"
	"slices"
	"strings"

	"github.com/aretw0/mdpipe/pkg/engine"
	"github.com/ettle/strcase"
)

// Command is an external program used as an output filter.
type Command struct {
	Path string
	Args []string
	Env  map[string]string
	// Dir is the working directory; empty inherits the current one.
	Dir string
}

// ExecError reports a command that could not run or exited non-zero.
type ExecError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Diagnostic includes the captured stderr.
func (e *ExecError) Diagnostic() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return e.Error()
	}
	return e.Error() + "\n" + stderr
}

// Filter pipes output through the command and returns its stdout.
//
// Settings are passed as environment variables, never as flags: a setting
// "ruleRepetition" becomes MDPIPE_SETTING_RULE_REPETITION. The input path is
// exported as MDPIPE_FILE.
func (c Command) Filter(ctx context.Context, output []byte, env engine.FilterEnv) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = bytes.NewReader(output)
	cmd.Env = append(cmd.Environ(), Environment(env)...)
	for _, k := range slices.Sorted(maps.Keys(c.Env)) {
		cmd.Env = append(cmd.Env, k+"="+c.Env[k])
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &ExecError{Command: c.Path, Stderr: stderr.String(), Err: err}
	}
	return stdout.Bytes(), nil
}

// Environment renders the filter environment as KEY=value pairs, sorted by key.
func Environment(env engine.FilterEnv) []string {
	vars := []string{"MDPIPE_FILE=" + env.File}
	for _, k := range slices.Sorted(maps.Keys(env.Settings)) {
		name := "MDPIPE_SETTING_" + strings.ToUpper(strcase.ToSnake(k))
		vars = append(vars, name+"="+envValue(env.Settings[k]))
	}
	return vars
}

func envValue(v any) string {
	switch v.(type) {
	case string, int, int64, float64, bool:
		return fmt.Sprintf("%v", v)
	case nil:
		return ""
	default:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", v)
	}
}
