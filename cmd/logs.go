package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tranvd/attendance-kiosk/internal/config"
	"github.com/tranvd/attendance-kiosk/internal/store"
	"github.com/tranvd/attendance-kiosk/internal/store/postgres"
)

var logsCmd = &cobra.Command{
	Use:   "logs <employee-id>",
	Short: "Show access log entries for an employee",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogs,
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show recent anomaly alerts",
	RunE:  runAlerts,
}

func init() {
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(alertsCmd)

	alertsCmd.Flags().Int("limit", 20, "Maximum number of alerts to show")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	ctx := context.Background()
	employeeID := args[0]

	if _, err := postgres.NewEmployeeRepository(pool).Get(ctx, employeeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("employee %s not found", employeeID)
		}
		return fmt.Errorf("fetching employee: %w", err)
	}

	entries, err := postgres.NewLogRepository(pool).ListAccess(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("listing access logs: %w", err)
	}

	if len(entries) == 0 {
		fmt.Printf("No access log entries for %s\n", employeeID)
		return nil
	}

	for _, entry := range entries {
		fmt.Printf("%s  %s\n", entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Status)
	}
	fmt.Printf("\n%d entries\n", len(entries))
	return nil
}

func runAlerts(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	alerts, err := postgres.NewLogRepository(pool).ListAlerts(context.Background(), mustGetInt(cmd, "limit"))
	if err != nil {
		return fmt.Errorf("listing alerts: %w", err)
	}

	if len(alerts) == 0 {
		fmt.Println("No alerts recorded")
		return nil
	}

	for _, a := range alerts {
		fmt.Printf("%s  %-30s %s\n", a.Timestamp.Format("2006-01-02 15:04:05"), a.Message, a.ImageURL)
	}
	fmt.Printf("\n%d alert(s)\n", len(alerts))
	return nil
}
