package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunCmdFlagsAreRegisteredWithSaneDefaults(t *testing.T) {
	configFlag := runCmd.Flags().Lookup("config")
	logFlag := runCmd.Flags().Lookup("log")
	snapshotFlag := runCmd.Flags().Lookup("snapshot-log")

	assert.NotNil(t, configFlag, "config flag must be registered")
	assert.Equal(t, "", configFlag.DefValue, "a missing --config must fall through to defaults")

	assert.NotNil(t, logFlag, "log flag must be registered")
	assert.Equal(t, "info", logFlag.DefValue, "default log level must be info")

	assert.NotNil(t, snapshotFlag, "snapshot-log flag must be registered")
	assert.Equal(t, "", snapshotFlag.DefValue, "snapshot logging must be opt-in")
}

func TestRunCmdIsRegisteredUnderRoot(t *testing.T) {
	found := false
	for _, c := range rootCmd.Commands() {
		if c.Use == "run" {
			found = true
		}
	}
	assert.True(t, found, "run command must be registered under the root command")
}
