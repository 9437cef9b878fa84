package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/petspot/petspot-backend/pkg/database"
	"github.com/petspot/petspot-backend/pkg/logger"
)

var (
	// Shared across all integration tests in a package
	globalContainer *PostgresContainer
	globalDB        *database.DB
	containerOnce   sync.Once
	containerErr    error
)

// IntegrationSuite provides a base for integration tests with real PostgreSQL
type IntegrationSuite struct {
	Container *PostgresContainer
	DB        *database.DB
}

// NewIntegrationSuite starts (or reuses) the shared container and applies the
// given schema statements.
//
// Usage:
//
//	func TestRepository_Integration(t *testing.T) {
//	    testutil.SkipIfShort(t)
//	    suite := testutil.NewIntegrationSuite(t, repository.Schema...)
//	    suite.Truncate(t, "announcements")
//	    ...
//	}
func NewIntegrationSuite(t *testing.T, schema ...string) *IntegrationSuite {
	t.Helper()
	ctx := context.Background()

	container, db, err := getOrCreateContainer(ctx)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}

	if err := db.Migrate(ctx, schema...); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	return &IntegrationSuite{Container: container, DB: db}
}

func getOrCreateContainer(ctx context.Context) (*PostgresContainer, *database.DB, error) {
	containerOnce.Do(func() {
		globalContainer, containerErr = NewPostgresContainer(ctx, DefaultPostgresConfig())
		if containerErr != nil {
			return
		}
		globalDB, containerErr = globalContainer.Connect(ctx, logger.Nop())
	})

	return globalContainer, globalDB, containerErr
}

// Truncate empties the given tables
func (s *IntegrationSuite) Truncate(t *testing.T, tables ...string) {
	t.Helper()
	for _, table := range tables {
		if _, err := s.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
}

// TerminateContainer terminates the shared container.
// Only call this in TestMain after all tests have completed.
func TerminateContainer(ctx context.Context) {
	if globalContainer != nil {
		_ = globalContainer.Terminate(ctx)
	}
}
