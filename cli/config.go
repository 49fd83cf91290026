// ABOUTME: Config CLI commands
// ABOUTME: Shows the effective configuration and persists single settings
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/harperreed/dealdesk/config"
)

// ConfigShowCommand prints the effective configuration with secrets masked.
func ConfigShowCommand(cfg *config.Config, args []string) error {
	fs := newFlagSet("config show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg.Redacted(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	printf("# %s\n%s\n", config.Path(), data)
	return nil
}

// ConfigSetCommand stores one setting in the file at path:
// config set <key> <value>. Environment overrides are not written back.
func ConfigSetCommand(path string, args []string) error {
	fs := newFlagSet("config set")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: config set <key> <value> (keys: %v)", config.Keys())
	}

	cfg, err := config.ReadFile(path)
	if err != nil {
		return err
	}
	if err := cfg.Set(fs.Arg(0), fs.Arg(1)); err != nil {
		return err
	}
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	printf("✓ %s updated in %s\n", fs.Arg(0), path)
	return nil
}
