package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/streed/smart-notes/internal/migrations"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration management",
	Long: `Manage database migrations and schema changes.

This command provides utilities to check migration status and manage database schema changes.`,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of database migrations",
	RunE:  showMigrationStatus,
}

var migrateRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run pending database migrations",
	Long: `Manually run any pending database migrations.

Note: Migrations are automatically run when the database is opened, so this command
is typically only needed for troubleshooting.`,
	RunE: runMigrations,
}

var migrateRollbackCmd = &cobra.Command{
	Use:   "rollback [migration id]",
	Short: "Roll back one applied migration",
	Args:  cobra.ExactArgs(1),
	RunE:  rollbackMigration,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateCmd.AddCommand(migrateRunCmd)
	migrateCmd.AddCommand(migrateRollbackCmd)
}

func migrationRunner() (*migrations.MigrationRunner, error) {
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return migrations.NewMigrationRunner(db.Conn()), nil
}

func showMigrationStatus(cmd *cobra.Command, args []string) error {
	runner, err := migrationRunner()
	if err != nil {
		return err
	}

	status, err := runner.GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "MIGRATION ID\tSTATUS\tDESCRIPTION\n")
	fmt.Fprintf(w, "------------\t------\t-----------\n")

	appliedCount := 0
	for _, migration := range status {
		statusText := "PENDING"
		if migration.Applied {
			statusText = "APPLIED"
			appliedCount++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", migration.ID, statusText, migration.Description)
	}
	w.Flush()

	fmt.Printf("\nTotal migrations: %d\n", len(status))
	fmt.Printf("Applied: %d\n", appliedCount)
	fmt.Printf("Pending: %d\n", len(status)-appliedCount)
	return nil
}

func runMigrations(cmd *cobra.Command, args []string) error {
	runner, err := migrationRunner()
	if err != nil {
		return err
	}

	count, err := runner.RunMigrations()
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	fmt.Printf("Migration run completed successfully, %d applied.\n", count)
	return nil
}

func rollbackMigration(cmd *cobra.Command, args []string) error {
	runner, err := migrationRunner()
	if err != nil {
		return err
	}
	if !confirm(fmt.Sprintf("Roll back migration %s? This may delete data.", args[0])) {
		fmt.Println("Rollback cancelled.")
		return nil
	}
	if err := runner.RollbackMigration(args[0]); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	fmt.Printf("Rolled back migration %s.\n", args[0])
	return nil
}
