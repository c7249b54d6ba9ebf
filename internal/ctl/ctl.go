// Package ctl implements garagectl, the operator CLI for schema migrations,
// bootstrapping administrator accounts and uploading work-order attachments.
package ctl

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/garagekeeper/internal/netx"
	"github.com/dmitrijs2005/garagekeeper/internal/server"
	"github.com/dmitrijs2005/garagekeeper/internal/server/auth"
	"github.com/dmitrijs2005/garagekeeper/internal/server/config"
	"github.com/dmitrijs2005/garagekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/garagekeeper/internal/server/services"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// cliActor is the principal recorded for accounts created from the CLI.
var cliActor = auth.Principal{ID: "garagectl", Username: "garagectl", IsAdmin: true}

// Env holds the process dependencies of the CLI. Tests replace them.
type Env struct {
	Out          io.Writer
	Err          io.Writer
	StdinFd      int
	ReadPassword func(fd int) ([]byte, error)
	HTTPClient   *http.Client
	Open         func(ctx context.Context, cfg *config.Config) (*sql.DB, repomanager.RepositoryManager, error)
}

// DefaultEnv talks to the real terminal and database.
func DefaultEnv() Env {
	return Env{
		Out:          os.Stdout,
		Err:          os.Stderr,
		StdinFd:      int(os.Stdin.Fd()),
		ReadPassword: term.ReadPassword,
		HTTPClient:   http.DefaultClient,
		Open: func(ctx context.Context, cfg *config.Config) (*sql.DB, repomanager.RepositoryManager, error) {
			db, err := server.OpenDB(ctx, cfg.DatabaseDSN)
			if err != nil {
				return nil, nil, err
			}
			return db, repomanager.NewPostgresRepositoryManager(), nil
		},
	}
}

// NewRootCommand builds the garagectl command tree.
func NewRootCommand(env Env) *cobra.Command {
	var configPath, dsn string

	loadConfig := func() (*config.Config, error) {
		var args []string
		if configPath != "" {
			args = append(args, "-c", configPath)
		}
		if dsn != "" {
			args = append(args, "-d", dsn)
		}
		return config.Load(args)
	}

	root := &cobra.Command{
		Use:           "garagectl",
		Short:         "garagekeeper operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(env.Out)
	root.SetErr(env.Err)
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to JSON or YAML config file")
	root.PersistentFlags().StringVarP(&dsn, "dsn", "d", "", "PostgreSQL DSN (overrides config)")

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, rm, err := env.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := rm.RunMigrations(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(env.Out, "migrations applied")
			return nil
		},
	})

	var username string
	createAdmin := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			password, err := promptPassword(env)
			if err != nil {
				return err
			}
			if err := auth.CheckStrength(password); err != nil {
				return err
			}

			db, rm, err := env.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			accounts, _, err := server.NewAccountService(cfg, db, rm)
			if err != nil {
				return err
			}
			user, err := accounts.AdminCreate(cmd.Context(), cliActor, services.CreateUserInput{
				Username: username,
				Password: password,
				IsAdmin:  true,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "created admin %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}
	createAdmin.Flags().StringVarP(&username, "username", "u", "", "admin username")
	_ = createAdmin.MarkFlagRequired("username")
	root.AddCommand(createAdmin)

	var workOrderID string
	attach := &cobra.Command{
		Use:   "attach FILE",
		Short: "Upload a file as a work-order attachment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			st, err := f.Stat()
			if err != nil {
				return err
			}

			db, rm, err := env.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := services.NewAttachmentService(db, rm, cfg)
			res, err := svc.Register(cmd.Context(), workOrderID, filepath.Base(args[0]))
			if err != nil {
				return err
			}
			if err := netx.UploadPresigned(cmd.Context(), env.HTTPClient, res.URL, f, st.Size()); err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "uploaded %s as attachment %s\n", res.Attachment.FileName, res.Attachment.ID)
			return nil
		},
	}
	attach.Flags().StringVarP(&workOrderID, "workorder", "w", "", "work order id")
	_ = attach.MarkFlagRequired("workorder")
	root.AddCommand(attach)

	return root
}

// promptPassword reads the password twice without echo.
func promptPassword(env Env) (string, error) {
	fmt.Fprint(env.Err, "Enter password: ")
	first, err := env.ReadPassword(env.StdinFd)
	fmt.Fprintln(env.Err)
	if err != nil {
		return "", err
	}
	defer clear(first)

	fmt.Fprint(env.Err, "Repeat password: ")
	second, err := env.ReadPassword(env.StdinFd)
	fmt.Fprintln(env.Err)
	if err != nil {
		return "", err
	}
	defer clear(second)

	if !bytes.Equal(first, second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, env Env, args []string) int {
	root := NewRootCommand(env)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(env.Err, "error:", err)
		return 1
	}
	return 0
}
