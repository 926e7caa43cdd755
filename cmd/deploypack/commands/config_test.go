package commands

import (
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/jmsierra/deploypack/internal/config"
)

func TestConfigGetKnownKey(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := execute(t, "config", "get", "output_dir")
	if err != nil {
		t.Fatalf("config get failed: %v", err)
	}
	if got := strings.TrimSpace(out); got != "publish" {
		t.Errorf("output_dir = %q, want %q", got, "publish")
	}
}

func TestConfigGetUnsetKey(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := execute(t, "config", "get", "no_such_key")
	if err != nil {
		t.Fatalf("config get failed: %v", err)
	}
	if got := strings.TrimSpace(out); got != "not set" {
		t.Errorf("output = %q, want %q", got, "not set")
	}
}

func TestConfigListShowsFallbacks(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := execute(t, "config", "list")
	if err != nil {
		t.Fatalf("config list failed: %v", err)
	}
	if !strings.Contains(out, "fallback_versions") {
		t.Errorf("list output missing fallback_versions: %q", out)
	}
	if !strings.Contains(out, "output_dir: publish") {
		t.Errorf("list output missing output_dir: %q", out)
	}
}

func TestConfigSetRejectsUnknownKey(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := execute(t, "config", "set", "bogus_key", "value")
	if err == nil {
		t.Fatal("expected error setting an unknown key")
	}
}

func TestConfigSetRejectsInvalidValue(t *testing.T) {
	chdir(t, t.TempDir())
	t.Cleanup(func() {
		viper.Set("fallback_versions.node", "20")
		cfg, _ = config.Load("")
	})

	_, err := execute(t, "config", "set", "fallback_versions.node", "")
	if err == nil {
		t.Fatal("expected validation to reject an empty fallback version")
	}
}

func TestConfigGetSectionKeyPrintsYAML(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := execute(t, "config", "get", "fallback_versions")
	if err != nil {
		t.Fatalf("config get failed: %v", err)
	}
	for _, want := range []string{"dotnet: \"8.0\"", "node: \"20\"", "python: \"3.11\""} {
		if !strings.Contains(out, want) {
			t.Errorf("section output missing %q: %q", want, out)
		}
	}
}
