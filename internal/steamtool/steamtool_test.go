package steamtool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstall(t *testing.T) {
	compatPath := filepath.Join(t.TempDir(), "compatibilitytools.d")

	opts := Options{
		CompatPath:      compatPath,
		ExtraLaunchArgs: "--use-fallback-secret-provider",
		ExtraEnvVars:    "FOO=1",
	}
	require.NoError(t, Install(context.Background(), opts))

	toolDir := filepath.Join(compatPath, "XLM")
	assert.FileExists(t, filepath.Join(toolDir, "compatibilitytool.vdf"))
	assert.FileExists(t, filepath.Join(toolDir, "toolmanifest.vdf"))
	assert.FileExists(t, filepath.Join(toolDir, "xlm"))

	scriptPath := filepath.Join(toolDir, "xlm.sh")
	info, err := os.Stat(scriptPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	script, err := os.ReadFile(scriptPath)
	require.NoError(t, err)
	assert.Contains(t, string(script), "FOO=1 $tooldir/xlm launch --use-fallback-secret-provider")
	assert.Contains(t, string(script), "--install-directory $tooldir/xlcore")
}

func TestInstallBinaryIsExecutable(t *testing.T) {
	compatPath := filepath.Join(t.TempDir(), "compatibilitytools.d")
	require.NoError(t, Install(context.Background(), Options{CompatPath: compatPath}))

	info, err := os.Stat(filepath.Join(compatPath, "XLM", "xlm"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o111)
	assert.NotZero(t, info.Size(), "binary copy must not be empty")
}

func TestInstallVDFContents(t *testing.T) {
	compatPath := filepath.Join(t.TempDir(), "compatibilitytools.d")
	require.NoError(t, Install(context.Background(), Options{CompatPath: compatPath}))

	compat, err := os.ReadFile(filepath.Join(compatPath, "XLM", "compatibilitytool.vdf"))
	require.NoError(t, err)
	assert.Contains(t, string(compat), `"display_name" "XLM"`)
	assert.Contains(t, string(compat), `"install_path" "."`)

	manifest, err := os.ReadFile(filepath.Join(compatPath, "XLM", "toolmanifest.vdf"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), `"commandline" "/xlm.sh %verb%"`)
}

func TestInstallMissingSteamParent(t *testing.T) {
	compatPath := filepath.Join(t.TempDir(), "does", "not", "exist", "compatibilitytools.d")
	err := Install(context.Background(), Options{CompatPath: compatPath})
	require.ErrorIs(t, err, ErrSteamNotFound)
}
