//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tranvd/attendance-kiosk/internal/config"
	"github.com/tranvd/attendance-kiosk/internal/recognition"
	"github.com/tranvd/attendance-kiosk/internal/store"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func testEmbedding(seed int) recognition.Embedding {
	emb := make(recognition.Embedding, EmbeddingDim)
	for i := range emb {
		emb[i] = float32(i+seed) / float32(EmbeddingDim)
	}
	return emb
}

func TestEmployeeRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewEmployeeRepository(pool)

	t.Run("AddAndGet", func(t *testing.T) {
		e := &store.Employee{
			ID:          "E001",
			Name:        "Trần Văn Nam",
			Major:       "Marketing",
			Age:         27,
			Email:       "nam@example.com",
			PhoneNumber: "0901234567",
			Role:        "staff",
			Embedding:   testEmbedding(0),
		}

		if err := repo.Add(ctx, e); err != nil {
			t.Fatalf("Failed to add employee: %v", err)
		}

		got, err := repo.Get(ctx, "E001")
		if err != nil {
			t.Fatalf("Failed to get employee: %v", err)
		}
		if got.Name != "Trần Văn Nam" {
			t.Errorf("Expected name 'Trần Văn Nam', got '%s'", got.Name)
		}
		if len(got.Embedding) != EmbeddingDim {
			t.Errorf("Expected %d dimensions, got %d", EmbeddingDim, len(got.Embedding))
		}
		if got.CheckInTime != nil {
			t.Error("Expected nil check-in time for fresh employee")
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		_, err := repo.Get(ctx, "nonexistent")
		if err != store.ErrNotFound {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateAttendance", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Second)
		upd := store.AttendanceUpdate{
			CheckInTime:     &now,
			AttendanceCount: 1,
			LateCount:       0,
		}

		if err := repo.UpdateAttendance(ctx, "E001", upd); err != nil {
			t.Fatalf("Failed to update attendance: %v", err)
		}

		got, err := repo.Get(ctx, "E001")
		if err != nil {
			t.Fatalf("Failed to get employee: %v", err)
		}
		if got.CheckInTime == nil || !got.CheckInTime.Equal(now) {
			t.Errorf("Expected check-in time %v, got %v", now, got.CheckInTime)
		}
		if got.AttendanceCount != 1 {
			t.Errorf("Expected attendance count 1, got %d", got.AttendanceCount)
		}
	})

	t.Run("UpdateAttendanceNotFound", func(t *testing.T) {
		err := repo.UpdateAttendance(ctx, "nonexistent", store.AttendanceUpdate{})
		if err != store.ErrNotFound {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListWithFilters", func(t *testing.T) {
		others := []*store.Employee{
			{ID: "E002", Name: "Nguyễn Thị Hoa", Major: "Engineering", Age: 31, Role: "manager"},
			{ID: "E003", Name: "Lê Minh", Major: "Marketing", Age: 24, Role: "staff"},
		}
		for _, e := range others {
			if err := repo.Add(ctx, e); err != nil {
				t.Fatalf("Failed to add employee: %v", err)
			}
		}

		all, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("Failed to list employees: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("Expected 3 employees, got %d", len(all))
		}
		if all[0].ID != "E001" {
			t.Errorf("Expected first id E001, got %s", all[0].ID)
		}

		marketing, err := repo.List(ctx, store.Filter{Field: store.FieldMajor, Op: store.OpEq, Value: "marketing"})
		if err != nil {
			t.Fatalf("Failed to list with filter: %v", err)
		}
		if len(marketing) != 2 {
			t.Errorf("Expected 2 marketing employees, got %d", len(marketing))
		}

		// Diacritics-insensitive name lookup.
		byName, err := repo.List(ctx, store.Filter{Field: store.FieldName, Op: store.OpEq, Value: "nguyen-thi-hoa"})
		if err != nil {
			t.Fatalf("Failed to list by name: %v", err)
		}
		if len(byName) != 1 || byName[0].ID != "E002" {
			t.Errorf("Expected E002 by normalized name, got %+v", byName)
		}

		young, err := repo.List(ctx,
			store.Filter{Field: store.FieldAge, Op: store.OpLt, Value: "30"},
			store.Filter{Field: store.FieldRole, Op: store.OpEq, Value: "staff"},
		)
		if err != nil {
			t.Fatalf("Failed to list with combined filters: %v", err)
		}
		if len(young) != 2 {
			t.Errorf("Expected 2 young staff, got %d", len(young))
		}
	})

	t.Run("GalleryIdentities", func(t *testing.T) {
		identities, err := repo.GalleryIdentities(ctx)
		if err != nil {
			t.Fatalf("Failed to get gallery identities: %v", err)
		}
		// Only E001 has an embedding.
		if len(identities) != 1 {
			t.Fatalf("Expected 1 identity, got %d", len(identities))
		}
		if identities[0].UserID != "E001" {
			t.Errorf("Expected E001, got %s", identities[0].UserID)
		}
	})
}

func TestLogRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	employees := NewEmployeeRepository(pool)
	logs := NewLogRepository(pool)

	if err := employees.Add(ctx, &store.Employee{ID: "E001", Name: "Test"}); err != nil {
		t.Fatalf("Failed to add employee: %v", err)
	}

	t.Run("LatestAccessEmpty", func(t *testing.T) {
		latest, err := logs.LatestAccess(ctx, "E001")
		if err != nil {
			t.Fatalf("Failed to get latest access: %v", err)
		}
		if latest != nil {
			t.Errorf("Expected nil for empty log, got %+v", latest)
		}
	})

	t.Run("AppendAndLatest", func(t *testing.T) {
		base := time.Now().UTC().Truncate(time.Second)
		entries := []store.AccessLogEntry{
			{EmployeeID: "E001", Status: "check_in", Timestamp: base},
			{EmployeeID: "E001", Status: "check_out", Timestamp: base.Add(8 * time.Hour)},
		}
		for _, entry := range entries {
			if err := logs.AppendAccess(ctx, entry); err != nil {
				t.Fatalf("Failed to append access log: %v", err)
			}
		}

		latest, err := logs.LatestAccess(ctx, "E001")
		if err != nil {
			t.Fatalf("Failed to get latest access: %v", err)
		}
		if latest == nil || latest.Status != "check_out" {
			t.Errorf("Expected latest status check_out, got %+v", latest)
		}

		all, err := logs.ListAccess(ctx, "E001")
		if err != nil {
			t.Fatalf("Failed to list access logs: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("Expected 2 entries, got %d", len(all))
		}
		if all[0].Status != "check_in" {
			t.Errorf("Expected first entry check_in, got %s", all[0].Status)
		}
	})

	t.Run("Alerts", func(t *testing.T) {
		base := time.Now().UTC().Truncate(time.Second)
		for i := 0; i < 3; i++ {
			entry := store.AlertEntry{
				ID:        fmt.Sprintf("alert-%d", i),
				ImageURL:  fmt.Sprintf("https://cdn.example.com/alert-%d.jpg", i),
				Message:   "spoof detected",
				Timestamp: base.Add(time.Duration(i) * time.Minute),
			}
			if err := logs.AppendAlert(ctx, entry); err != nil {
				t.Fatalf("Failed to append alert: %v", err)
			}
		}

		alerts, err := logs.ListAlerts(ctx, 2)
		if err != nil {
			t.Fatalf("Failed to list alerts: %v", err)
		}
		if len(alerts) != 2 {
			t.Fatalf("Expected 2 alerts, got %d", len(alerts))
		}
		if alerts[0].ID != "alert-2" {
			t.Errorf("Expected newest alert first, got %s", alerts[0].ID)
		}
	})
}
