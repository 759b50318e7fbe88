package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/mdpipe/pkg/ports"
)

// PluginLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.PluginLoader.
// present must hold candidates the loader can load; missing must hold candidates that do not exist.
func PluginLoaderContractTest(t *testing.T, loader ports.PluginLoader, present, missing []ports.Candidate) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_NoCandidates", func(t *testing.T) {
		_, err := loader.Load(ctx, nil)
		if !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound for empty candidate list, got %v", err)
		}
	})

	t.Run("Load_Missing", func(t *testing.T) {
		_, err := loader.Load(ctx, missing)
		if !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound for missing candidates, got %v", err)
		}
	})

	t.Run("Load_Present", func(t *testing.T) {
		for _, c := range present {
			plugin, err := loader.Load(ctx, append(append([]ports.Candidate(nil), missing...), c))
			if err != nil {
				t.Fatalf("unexpected error loading %s: %v", c, err)
			}
			if plugin == nil || plugin.Name() == "" {
				t.Errorf("expected a named plugin for %s, got %v", c, plugin)
			}
		}
	})
}
