package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stolasapp/whisper/internal/sec"
)

func keygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate an encryption key",
		Long: "Prints a new random AES-256 key as 64 hex characters, suitable for the\n" +
			"ENCRYPTION_KEY environment variable or the encryption_key config field.",
		Args: cobra.NoArgs,
		// no configuration is needed to make a key
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := sec.GenerateKey()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
}
