package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blooym/xlm/internal/progress"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd("1.0.0")
	assert.Equal(t, "xlm", cmd.Use)
	assert.Equal(t, "1.0.0", cmd.Version)

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["launch"])
	assert.True(t, names["install-steam-tool"])
	assert.True(t, names[progress.UISubcommand])
}

func TestLaunchUICmdIsHidden(t *testing.T) {
	cmd := NewRootCmd("1.0.0")
	for _, sub := range cmd.Commands() {
		if sub.Name() == progress.UISubcommand {
			assert.True(t, sub.Hidden)
			return
		}
	}
	t.Fatal("status window subcommand not registered")
}

func TestRootCmdGlobalFlags(t *testing.T) {
	cmd := NewRootCmd("1.0.0")

	owner, err := cmd.PersistentFlags().GetString("xlm-updater-repo-owner")
	require.NoError(t, err)
	assert.Equal(t, "Blooym", owner)

	repo, err := cmd.PersistentFlags().GetString("xlm-updater-repo-name")
	require.NoError(t, err)
	assert.Equal(t, "xlm", repo)

	disable, err := cmd.PersistentFlags().GetBool("xlm-updater-disable")
	require.NoError(t, err)
	assert.False(t, disable)
}
