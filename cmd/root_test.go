package cmd

import (
	"testing"
)

func TestNewRootCmd(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"build", "keys", "query", "serve"} {
		sub, _, err := root.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Errorf("Expected subcommand %s, got %v (err %v)", name, sub, err)
		}
	}

	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("Expected persistent --config flag")
	}
}
