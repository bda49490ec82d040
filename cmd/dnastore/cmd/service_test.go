package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/dnastore/pkg/config"
)

func TestRenderSystemdUnit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Ledger.Path = "/var/lib/dnastore/ledger"

	unit := renderSystemdUnit(cfg, "/etc/dnastore/config.yaml", "dnastore", "/usr/local/bin/dnastore")

	assert.Contains(t, unit, "User=dnastore")
	assert.Contains(t, unit, "Group=dnastore")
	assert.Contains(t, unit, "ExecStart=/usr/local/bin/dnastore serve --config /etc/dnastore/config.yaml")
	assert.Contains(t, unit, "ReadWritePaths=/etc/dnastore\n")
	assert.Contains(t, unit, "ReadWritePaths=/var/lib/dnastore/ledger\n")
	assert.True(t, strings.HasSuffix(unit, "WantedBy=multi-user.target\n"))
}

func TestRenderSystemdUnitWithoutLedger(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Ledger.Enabled = false

	unit := renderSystemdUnit(cfg, "/etc/dnastore/config.yaml", "svc", "/opt/dnastore")
	assert.Equal(t, 1, strings.Count(unit, "ReadWritePaths="))
}

func TestEnsureServiceConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cmd, stdout, _ := newTestCommand("")

	created, err := ensureServiceConfig(cmd, path, "/var/lib/dnastore")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/dnastore/ledger", created.Ledger.Path)
	assert.Contains(t, stdout.String(), "Created new configuration")

	loaded, err := ensureServiceConfig(cmd, path, "/ignored")
	require.NoError(t, err)
	assert.Equal(t, created, loaded)
	assert.Contains(t, stdout.String(), "Loaded existing configuration")
}

func TestJournalArgs(t *testing.T) {
	assert.Equal(t, []string{"-u", serviceName}, journalArgs(false, 0))
	assert.Equal(t, []string{"-u", serviceName, "-f", "-n50"}, journalArgs(true, 50))
}
