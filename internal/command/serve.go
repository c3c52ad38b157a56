package command

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stolasapp/whisper/internal/app"
	"github.com/stolasapp/whisper/internal/board"
	"github.com/stolasapp/whisper/internal/config"
	"github.com/stolasapp/whisper/internal/sec"
	"github.com/stolasapp/whisper/internal/server"
	"github.com/stolasapp/whisper/internal/storage"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve the message board web app and API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			keys, err := sec.LoadKey(cfg.EncryptionKey)
			if err != nil {
				return err
			}
			hasher := sec.NewHasher(cfg.HashCost, cfg.HashWorkers)
			svc := board.Default(logger, store, hasher, sec.NewCipher(keys), cfg.MessageLimit)

			if err = seedAdmin(cmd.Context(), logger, store, svc, cfg.Admin); err != nil {
				return err
			}

			grp, ctx := errgroup.WithContext(cmd.Context())
			serveApp(ctx, grp, cfg, logger, app.New(cfg, logger, store, hasher, svc))
			return grp.Wait()
		},
	}
}

// seedAdmin makes sure the operator also has a user account so they can post
// messages.
func seedAdmin(
	ctx context.Context,
	logger *slog.Logger,
	users storage.Users,
	svc board.Service,
	admin config.Admin,
) error {
	logger = logger.With(slog.String("name", admin.Username))
	switch _, err := users.GetUserByName(ctx, admin.Username); {
	case err == nil:
		logger.DebugContext(ctx, "admin user already exists")
		return nil
	case !errors.Is(err, storage.ErrNotFound):
		return err
	}

	_, err := svc.CreateUser(ctx, board.CreateUserRequest{
		Username: admin.Username,
		Password: admin.Password,
		Admin:    true,
	})
	if err == nil {
		logger.InfoContext(ctx, "created admin user")
		return nil
	}
	switch connect.CodeOf(err) {
	case connect.CodeAlreadyExists:
		return nil
	case connect.CodeInvalidArgument:
		logger.WarnContext(ctx, "admin user not created", slog.Any("error", err))
		return nil
	default:
		return err
	}
}

func serveApp(
	ctx context.Context,
	grp *errgroup.Group,
	cfg *config.Config,
	logger *slog.Logger,
	srv *echo.Echo,
) {
	listener, err := server.Listen(ctx, cfg.WebAddress)
	if err != nil {
		grp.Go(func() error { return err })
		return
	}

	logger.InfoContext(ctx,
		"starting app server...",
		slog.String("address", listener.Addr().String()),
	)
	server.Serve(ctx, grp, logger, srv.Server, listener, server.DefaultTimeouts)
}
