package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mentortrack/mentorship-service/internal/auth"
	"github.com/mentortrack/mentorship-service/internal/events"
	"github.com/mentortrack/mentorship-service/internal/repositories"
	"github.com/mentortrack/mentorship-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	LogLevel slog.Level

	// LinkSealKey is the hex-encoded AES-256 key sealing vault secrets.
	LinkSealKey string

	// Service-specific configurations
	Directory  ServiceConfig
	Delegation ServiceConfig
	Grant      ServiceConfig
	Report     ServiceConfig
	Query      ServiceConfig
	Identity   ServiceConfig

	DefaultTimeout time.Duration
}

type ServiceConfig struct {
	Enabled         bool
	AuditingEnabled bool
}

// ServiceManagerDeps carries the external dependencies the services share.
type ServiceManagerDeps struct {
	Repo           repositories.Repository
	Authenticator  auth.Authenticator
	Sessions       auth.SessionStore
	EventPublisher events.EventPublisher
	Logger         *slog.Logger
	Validator      *validator.Validator
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   ServiceManagerDeps
	config ServiceManagerConfig

	directoryService  DirectoryService
	classService      ClassService
	delegationService DelegationService
	grantService      GrantService
	reportService     ReportService
	queryService      QueryService
	identityService   IdentityLinkService
	rosterService     RosterService
	auditService      AuditService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps ServiceManagerDeps, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		deps:   deps,
		config: config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(deps ServiceManagerDeps, linkSealKey string) ServiceManager {
	config := ServiceManagerConfig{
		LogLevel:    slog.LevelInfo,
		LinkSealKey: linkSealKey,

		Directory:  ServiceConfig{Enabled: true, AuditingEnabled: true},
		Delegation: ServiceConfig{Enabled: true, AuditingEnabled: true},
		Grant:      ServiceConfig{Enabled: true, AuditingEnabled: true},
		Report:     ServiceConfig{Enabled: true, AuditingEnabled: true},
		Query:      ServiceConfig{Enabled: true, AuditingEnabled: false},
		Identity:   ServiceConfig{Enabled: true, AuditingEnabled: true},

		DefaultTimeout: 30 * time.Second,
	}

	return NewServiceManager(deps, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.deps.Logger.Info("Initializing service manager")

	if err := sm.initializeServices(ctx); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices(_ context.Context) error {
	repo := sm.deps.Repo
	logger := sm.deps.Logger
	v := sm.deps.Validator
	publisher := sm.deps.EventPublisher

	if sm.config.Directory.Enabled {
		sm.directoryService = NewDirectoryService(repo, sm.deps.Authenticator, publisher, logger, v)
		logger.Info("Directory service initialized")
	}

	sm.classService = NewClassService(repo, logger, v)
	logger.Info("Class service initialized")

	if sm.config.Delegation.Enabled {
		sm.delegationService = NewDelegationService(repo, publisher, logger, v)
		logger.Info("Delegation service initialized")
	}

	if sm.config.Grant.Enabled {
		sm.grantService = NewGrantService(repo, publisher, logger, v)
		logger.Info("Grant service initialized")
	}

	if sm.config.Report.Enabled {
		sm.reportService = NewReportService(repo, publisher, logger, v)
		logger.Info("Report service initialized")
	}

	if sm.config.Query.Enabled {
		sm.queryService = NewQueryService(repo, publisher, logger, v)
		logger.Info("Query service initialized")
	}

	if sm.config.Identity.Enabled {
		identityService, err := NewIdentityLinkService(repo, sm.deps.Authenticator, sm.deps.Sessions, publisher, logger, v, sm.config.LinkSealKey)
		if err != nil {
			return fmt.Errorf("failed to initialize identity service: %w", err)
		}
		sm.identityService = identityService
		logger.Info("Identity service initialized")
	}

	sm.rosterService = NewRosterService(repo, sm.directoryService, logger)
	logger.Info("Roster service initialized")

	sm.auditService = NewAuditService(repo, logger)
	logger.Info("Audit service initialized")

	return nil
}

// Service getters
func (sm *serviceManager) Directory() DirectoryService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Directory.Enabled && sm.directoryService != nil {
		return sm.directoryService
	}

	panic("directory service not enabled or not initialized")
}

func (sm *serviceManager) Class() ClassService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.classService != nil {
		return sm.classService
	}

	panic("class service not initialized")
}

func (sm *serviceManager) Delegation() DelegationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Delegation.Enabled && sm.delegationService != nil {
		return sm.delegationService
	}

	panic("delegation service not enabled or not initialized")
}

func (sm *serviceManager) Grant() GrantService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Grant.Enabled && sm.grantService != nil {
		return sm.grantService
	}

	panic("grant service not enabled or not initialized")
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Report.Enabled && sm.reportService != nil {
		return sm.reportService
	}

	panic("report service not enabled or not initialized")
}

func (sm *serviceManager) Query() QueryService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Query.Enabled && sm.queryService != nil {
		return sm.queryService
	}

	panic("query service not enabled or not initialized")
}

func (sm *serviceManager) Identity() IdentityLinkService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Identity.Enabled && sm.identityService != nil {
		return sm.identityService
	}

	panic("identity service not enabled or not initialized")
}

func (sm *serviceManager) Roster() RosterService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.rosterService != nil {
		return sm.rosterService
	}

	panic("roster service not initialized")
}

func (sm *serviceManager) Audit() AuditService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.auditService != nil {
		return sm.auditService
	}

	panic("audit service not initialized")
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if sm.deps.EventPublisher != nil {
		if err := sm.deps.EventPublisher.Close(); err != nil {
			sm.deps.Logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down")

	return nil
}
