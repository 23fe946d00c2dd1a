package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "seed", "cleanup"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestServeCmd_Flags(t *testing.T) {
	cmd, _, err := newRootCmd().Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, cmd.Flags().Lookup("migrate"))
}

func TestMigrateCmd_RejectsUnknownCommand(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"migrate", "sideways"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid argument")
}

func TestMigrateCmd_RejectsExtraArgs(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"migrate", "up", "down"})
	assert.Error(t, root.Execute())
}

func TestCleanupCmd_DaysFlag(t *testing.T) {
	cmd, _, err := newRootCmd().Find([]string{"cleanup"})
	require.NoError(t, err)

	require.NoError(t, cmd.Flags().Set("days", "7"))
	assert.True(t, cmd.Flags().Changed("days"))
}
