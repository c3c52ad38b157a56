package command

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/stolasapp/whisper/internal/board"
	"github.com/stolasapp/whisper/internal/sec"
)

const userListPageSize = 100

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User commands",
	}
	cmd.AddCommand(
		userCreateCommand(),
		userDeleteCommand(),
		userListCommand(),
	)
	return cmd
}

func userCreateCommand() *cobra.Command {
	var admin bool
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create user",
		Long: "Creates user entry for the provided username and password. Passwords may be\n" +
			"provided via stdin or through the interactive prompt.",

		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			cfg, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			passwd, err := prompt("password: ", true)
			if err != nil {
				return err
			}

			users := board.NewValidator(
				board.NewUsers(board.Unimplemented{}, store, sec.NewHasher(cfg.HashCost, cfg.HashWorkers)),
				logger,
			)
			user, err := users.CreateUser(cmd.Context(), board.CreateUserRequest{
				Username: args[0],
				Password: string(passwd),
				Admin:    admin,
			})
			if err != nil {
				return err
			}

			logger.InfoContext(cmd.Context(), "created user",
				slog.String("name", user.Username),
				slog.String("role", user.Role),
			)
			return nil
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	return cmd
}

func userDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete user",
		Long: "Permanently deletes the user and all of their messages. " +
			"This operation is permanent and irreversible.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			_, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			name := args[0]
			logger = logger.With(slog.String("name", name))
			user, err := store.GetUserByName(cmd.Context(), name)
			if err != nil {
				return err
			}
			resp, err := prompt("Are you sure you want to delete this user? [y|N] ", false)
			if !bytes.Equal(resp, []byte{'y'}) || err != nil {
				logger.InfoContext(cmd.Context(), "aborted user deletion")
				return err
			}
			if err = store.DeleteUser(cmd.Context(), user.ID); err != nil {
				return err
			}
			logger.InfoContext(cmd.Context(), "user deleted")
			return nil
		},
	}
}

func userListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			_, _, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0) //nolint:mnd // column layout
			_, _ = fmt.Fprintln(out, "NAME\tROLE\tCREATED")
			after := ""
			for {
				users, err := store.ListUsers(cmd.Context(), after, userListPageSize)
				if err != nil {
					return err
				}
				for _, user := range users {
					_, _ = fmt.Fprintf(out, "%s\t%s\t%s\n", user.Name, user.Role, user.CreatedAt.Format(time.RFC3339))
				}
				if len(users) < userListPageSize {
					break
				}
				after = users[len(users)-1].Name
			}
			return out.Flush()
		},
	}
}
