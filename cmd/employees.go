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

var employeesCmd = &cobra.Command{
	Use:   "employees",
	Short: "List enrolled employees",
	Long: `List enrolled employees with their attendance records. Filters use
field:op:value form, e.g. --filter major:eq:marketing --filter late:gt:3.
Fields: name, major, role, age, attendance, late.
Operators: eq, ne, gt, gte, lt, lte.`,
	RunE: runEmployees,
}

func init() {
	rootCmd.AddCommand(employeesCmd)

	employeesCmd.Flags().StringSlice("filter", nil, "Filter expression (repeatable)")
}

func runEmployees(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	var filters []store.Filter
	for _, expr := range mustGetStringSlice(cmd, "filter") {
		f, err := store.ParseFilter(expr)
		if err != nil {
			return err
		}
		filters = append(filters, f)
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	employees, err := postgres.NewEmployeeRepository(pool).List(context.Background(), filters...)
	if err != nil {
		return fmt.Errorf("listing employees: %w", err)
	}

	if len(employees) == 0 {
		fmt.Println("No employees match")
		return nil
	}

	fmt.Printf("%-10s %-25s %-15s %-10s %10s %6s\n", "ID", "NAME", "MAJOR", "ROLE", "ATTENDANCE", "LATE")
	for _, e := range employees {
		fmt.Printf("%-10s %-25s %-15s %-10s %10d %6d\n",
			e.ID, e.Name, e.Major, e.Role, e.AttendanceCount, e.LateCount)
	}
	fmt.Printf("\n%d employee(s)\n", len(employees))
	return nil
}
