package cli

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestNewKeyCmd(t *testing.T) {
	checkCommand(t, NewKeyCmd(), "key")
}

func TestNewStudioCmd(t *testing.T) {
	checkCommand(t, NewStudioCmd(), "studio")
}

func TestNewTestCmd(t *testing.T) {
	checkCommand(t, NewTestCmd(), "test")
}

func checkCommand(t *testing.T, cmd *cobra.Command, use string) {
	t.Helper()

	if cmd.Use != use {
		t.Errorf("Expected command use %q, got %s", use, cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("Command short description is empty")
	}

	if cmd.Long == "" {
		t.Error("Command long description is empty")
	}

	if cmd.RunE == nil {
		t.Error("Command RunE function is nil")
	}
}
