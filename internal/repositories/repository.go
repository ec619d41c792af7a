package repositories

import "context"

// Repository aggregates all per-domain repository interfaces.
type Repository interface {
	// Directory domain
	Account() AccountRepository
	Mentee() MenteeRepository
	Class() ClassRepository

	// Artifact domain
	Report() ReportRepository
	Query() QueryRepository

	// Audit trail
	Audit() AuditRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
