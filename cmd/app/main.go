// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/vaultlite/cmd/app/commands"
	vaultUsecase "github.com/allisson/vaultlite/internal/vault/usecase"
)

func main() {
	identityFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "name",
			Aliases:  []string{"n"},
			Required: true,
			Usage:    "Secret name (e.g., DB_PASS)",
		},
		&cli.StringFlag{
			Name:     "project",
			Aliases:  []string{"p"},
			Required: true,
			Usage:    "Project the secret belongs to",
		},
		&cli.StringFlag{
			Name:     "environment",
			Aliases:  []string{"e"},
			Required: true,
			Usage:    "Environment the secret belongs to (e.g., dev, staging, prod)",
		},
	}
	formatFlag := &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}

	cmd := &cli.Command{
		Name:    "vaultlite",
		Usage:   "Local encrypted secret vault",
		Version: "1.0.0",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations(ctx)
				},
			},
			{
				Name:  "generate-key",
				Usage: "Generate a new vault key",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kms-key-uri",
						Usage: "Optional KMS keeper URI to wrap the key (e.g., awskms://..., base64key://...)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunGenerateKey(ctx, os.Stdout, cmd.String("kms-key-uri"))
				},
			},
			{
				Name:  "add",
				Usage: "Encrypt and store a new secret",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "value",
						Aliases:  []string{"v"},
						Required: true,
						Usage:    "Plaintext value to encrypt (may be empty)",
					},
					&cli.StringSliceFlag{
						Name:    "tag",
						Aliases: []string{"t"},
						Usage:   "Tag for filtering (repeatable)",
					},
					formatFlag,
				}, identityFlags...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.WithStore(func(store vaultUsecase.SecretStore, logger *slog.Logger) error {
						return commands.RunAddSecret(
							ctx,
							store,
							logger,
							os.Stdout,
							cmd.String("name"),
							cmd.String("value"),
							cmd.String("project"),
							cmd.String("environment"),
							cmd.StringSlice("tag"),
							cmd.String("format"),
						)
					})
				},
			},
			{
				Name:  "get",
				Usage: "Retrieve a secret by name, project, and environment",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:    "reveal",
						Aliases: []string{"r"},
						Usage:   "Decrypt and print the plaintext value",
					},
					formatFlag,
				}, identityFlags...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.WithStore(func(store vaultUsecase.SecretStore, logger *slog.Logger) error {
						return commands.RunGetSecret(
							ctx,
							store,
							os.Stdout,
							cmd.String("name"),
							cmd.String("project"),
							cmd.String("environment"),
							cmd.Bool("reveal"),
							cmd.String("format"),
						)
					})
				},
			},
			{
				Name:  "list",
				Usage: "List secrets, optionally filtered by project, environment, and tags",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "project",
						Aliases: []string{"p"},
						Usage:   "Only list secrets of this project",
					},
					&cli.StringFlag{
						Name:    "environment",
						Aliases: []string{"e"},
						Usage:   "Only list secrets of this environment",
					},
					&cli.StringSliceFlag{
						Name:    "tag",
						Aliases: []string{"t"},
						Usage:   "Only list secrets with at least one of these tags (repeatable)",
					},
					formatFlag,
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.WithStore(func(store vaultUsecase.SecretStore, logger *slog.Logger) error {
						return commands.RunListSecrets(
							ctx,
							store,
							os.Stdout,
							cmd.String("project"),
							cmd.String("environment"),
							cmd.StringSlice("tag"),
							cmd.String("format"),
						)
					})
				},
			},
			{
				Name:  "update",
				Usage: "Replace the value of an existing secret",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "value",
						Aliases:  []string{"v"},
						Required: true,
						Usage:    "New plaintext value to encrypt",
					},
					formatFlag,
				}, identityFlags...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.WithStore(func(store vaultUsecase.SecretStore, logger *slog.Logger) error {
						return commands.RunUpdateSecret(
							ctx,
							store,
							logger,
							os.Stdout,
							cmd.String("name"),
							cmd.String("project"),
							cmd.String("environment"),
							cmd.String("value"),
							cmd.String("format"),
						)
					})
				},
			},
			{
				Name:  "delete",
				Usage: "Delete a secret by name, project, and environment",
				Flags: identityFlags,
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.WithStore(func(store vaultUsecase.SecretStore, logger *slog.Logger) error {
						return commands.RunDeleteSecret(
							ctx,
							store,
							logger,
							os.Stdout,
							cmd.String("name"),
							cmd.String("project"),
							cmd.String("environment"),
						)
					})
				},
			},
			{
				Name:  "rotate-key",
				Usage: "Re-encrypt all secrets under a new vault key",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "new-key",
						Aliases:  []string{"k"},
						Required: true,
						Usage:    "New base64-encoded 32-byte vault key (see generate-key)",
					},
					&cli.StringFlag{
						Name:    "algorithm",
						Aliases: []string{"alg"},
						Value:   "aes-gcm",
						Usage:   "Encryption algorithm to use (aes-gcm or chacha20-poly1305)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.WithStore(func(store vaultUsecase.SecretStore, logger *slog.Logger) error {
						return commands.RunRotateKey(
							ctx,
							store,
							logger,
							os.Stdout,
							cmd.String("new-key"),
							cmd.String("algorithm"),
						)
					})
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
