package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidateAcceptsWellFormedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stilch-layout.conf")
	contents := "bindsym mod+1 workspace 1\noutput DP-1 {\n  scale 2\n}\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	err := runConfigValidate(configValidateCmd, []string{path})
	assert.NoError(t, err)
}

func TestConfigValidateRejectsUnknownDirective(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stilch-layout.conf")
	if err := os.WriteFile(path, []byte("nonsense directive\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := runConfigValidate(configValidateCmd, []string{path})
	assert.Error(t, err)
}

func TestConfigValidateMissingFile(t *testing.T) {
	err := runConfigValidate(configValidateCmd, []string{filepath.Join(t.TempDir(), "missing.conf")})
	assert.Error(t, err)
}
