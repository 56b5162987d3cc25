// Command ccctl runs maintenance tasks against the ComplexCare database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"complexcare/internal/config"
	"complexcare/internal/database"
	"complexcare/internal/logger"
	"complexcare/internal/repositories"
	"complexcare/internal/server"
	"complexcare/internal/services"
)

// errSchemaInvalid makes `schema check` exit non-zero without printing a
// second error line.
var errSchemaInvalid = errors.New("schema does not match")

func main() {
	rootCmd := &cobra.Command{
		Use:           "ccctl",
		Short:         "ComplexCare operations CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Duration("timeout", 5*time.Minute, "Overall deadline for the command")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(remindersCmd())
	rootCmd.AddCommand(schemaCmd())
	rootCmd.AddCommand(superadminCmd())

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSchemaInvalid) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// withDeps loads config, opens the database and runs fn.
func withDeps(cmd *cobra.Command, fn func(ctx context.Context, deps *server.Deps) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	deps, err := server.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()
	return fn(ctx, deps)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database if needed and apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Open applies migrations.
			return withDeps(cmd, func(ctx context.Context, deps *server.Deps) error {
				fmt.Println("Migrations applied successfully.")
				return nil
			})
		},
	}
}

func remindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Credential expiry reminders",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Send reminders for credentials whose reminder date has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(ctx context.Context, deps *server.Deps) error {
				sent, err := deps.CredentialService().SendDueReminders(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Sent %d reminder(s).\n", sent)
				return nil
			})
		},
	})
	return cmd
}

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect the database schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Compare the live schema with the tables and columns the API expects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(ctx context.Context, deps *server.Deps) error {
				diag := services.NewDiagnosticsService(repositories.NewSchemaRepository(deps.Pool), database.ExpectedSchema, deps.Log)
				report, err := diag.Validate(ctx)
				if err != nil {
					return err
				}
				for _, t := range report.MissingTables {
					fmt.Printf("missing table   %s\n", t)
				}
				tables := make([]string, 0, len(report.MissingColumns))
				for t := range report.MissingColumns {
					tables = append(tables, t)
				}
				sort.Strings(tables)
				for _, t := range tables {
					for _, col := range report.MissingColumns[t] {
						fmt.Printf("missing column  %s.%s\n", t, col)
					}
				}
				for _, t := range report.ExtraTables {
					fmt.Printf("extra table     %s\n", t)
				}
				if !report.Valid {
					return errSchemaInvalid
				}
				fmt.Println("Schema OK.")
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "diagram",
		Short: "Print a Mermaid ER diagram of the public schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(ctx context.Context, deps *server.Deps) error {
				diag := services.NewDiagnosticsService(repositories.NewSchemaRepository(deps.Pool), database.ExpectedSchema, deps.Log)
				diagram, err := diag.Diagram(ctx)
				if err != nil {
					return err
				}
				fmt.Println(diagram)
				return nil
			})
		},
	})
	return cmd
}

func superadminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "superadmin",
		Short: "Manage platform superadmins",
	}
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a superadmin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			force, _ := cmd.Flags().GetBool("force")
			password := os.Getenv("SUPERADMIN_PASSWORD")
			if password == "" {
				return errors.New("SUPERADMIN_PASSWORD must be set")
			}
			return withDeps(cmd, func(ctx context.Context, deps *server.Deps) error {
				user, err := services.BootstrapSuperadmin(ctx, repositories.NewUserRepository(deps.Pool), email, name, password, force, deps.Log)
				if err != nil {
					return err
				}
				fmt.Printf("Created superadmin %s (%s).\n", user.Email, user.ID)
				return nil
			})
		},
	}
	create.Flags().String("email", "", "Email address")
	create.Flags().String("name", "Platform Admin", "Display name")
	create.Flags().Bool("force", false, "Create even when a superadmin already exists")
	_ = create.MarkFlagRequired("email")
	cmd.AddCommand(create)
	return cmd
}
