// Package command contains the CLI command constructors.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/stolasapp/whisper/internal/config"
	"github.com/stolasapp/whisper/internal/observability"
	"github.com/stolasapp/whisper/internal/sec"
)

// RootCommand instantiates the root command, with all sub-commands bound.
func RootCommand() *cobra.Command {
	configFilePath := config.DefaultPath()
	cmd := &cobra.Command{
		Use:          "whisper [command] [flags]",
		Short:        "An encrypted message board",
		Version:      version(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) (err error) {
			cfg, err := loadOrInitConfig(configFilePath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := observability.InitSlog(cfg)
			logger.DebugContext(cmd.Context(), "configuration loaded", slog.Any("config", cfg))
			slog.SetDefault(logger)
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(
		&configFilePath,
		"config", "c",
		configFilePath,
		"path to the configuration file",
	)

	cmd.AddCommand(
		serveCommand(),
		userCommand(),
		keygenCommand(),
	)

	return cmd
}

// loadOrInitConfig loads the configuration, offering to write a new file with
// a fresh encryption key when none exists and the shell is interactive.
func loadOrInitConfig(configFilePath string) (*config.Config, error) {
	cfg, err := config.Load(configFilePath, os.LookupEnv)
	if err == nil {
		return cfg, nil
	}
	if _, statErr := os.Stat(configFilePath); !errors.Is(statErr, fs.ErrNotExist) ||
		!term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, err
	}

	resp, initErr := prompt(fmt.Sprintf("Config not found at %s. Create one? [y|N] ", configFilePath), false)
	if initErr != nil || !bytes.Equal(resp, []byte("y")) {
		return nil, errors.Join(err, initErr)
	}

	cfg = config.Default()
	if cfg.EncryptionKey, err = sec.GenerateKey(); err != nil {
		return nil, err
	}
	if resp, err = prompt("Admin username: ", false); err != nil {
		return nil, err
	}
	cfg.Admin.Username = string(resp)
	if resp, err = prompt("Admin password: ", true); err != nil {
		return nil, err
	}
	cfg.Admin.Password = string(resp)
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(configFilePath), 0o700); err != nil { //nolint:mnd // owner only
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err = os.WriteFile(configFilePath, data, 0600); err != nil { //nolint:mnd // owner rw access
		return nil, fmt.Errorf("failed to write config file to %s: %w", configFilePath, err)
	}
	return cfg, nil
}
