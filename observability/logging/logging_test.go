package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupWritesStructuredLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pointsledger.log")
	logger := Setup("pointsledger", "test", Options{File: path, MaxSizeMB: 1})

	logger.Info("reward redeemed", "rewardId", "abc", "amount", 100)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	scanner := bufio.NewScanner(file)
	require.True(t, scanner.Scan(), "expected at least one log line")

	var line map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
	require.Equal(t, "INFO", line["severity"])
	require.Equal(t, "reward redeemed", line["message"])
	require.Equal(t, "pointsledger", line["service"])
	require.Equal(t, "test", line["env"])
	require.Equal(t, "abc", line["rewardId"])
	require.NotEmpty(t, line["timestamp"])
}
