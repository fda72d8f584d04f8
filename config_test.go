package pushdown

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pushdown.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestReadConfig(t *testing.T) {
	path := writeConfigFile(t, `
pushDownDecimal: false
pushDownStartsWith: false
inValueThreshold: 25
caseSensitiveColumnNames: true
sessionTimezone: UTC
`)
	config, err := ReadConfig(path)
	require.NoError(t, err)

	assert.False(t, config.PushDownDecimal)
	assert.False(t, config.PushDownStartsWith)
	assert.Equal(t, 25, config.InValueThreshold)
	assert.True(t, config.CaseSensitiveColumnNames)
	assert.Equal(t, time.UTC, config.SessionTimezone)

	// Unset fields keep their defaults.
	assert.True(t, config.PushDownDate)
	assert.True(t, config.PushDownTimestamp)
}

func TestReadConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, `pushDownDate: true`)
	config, err := ReadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestReadConfig_Errors(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = ReadConfig(writeConfigFile(t, `inValueThreshold: [1, 2]`))
	assert.Error(t, err)

	_, err = ReadConfig(writeConfigFile(t, `inValueThreshold: -1`))
	assert.Error(t, err)

	_, err = ReadConfig(writeConfigFile(t, `sessionTimezone: Not/AZone`))
	assert.Error(t, err)
}
