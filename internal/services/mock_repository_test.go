package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mentortrack/mentorship-service/internal/auth"
	"github.com/mentortrack/mentorship-service/internal/events"
	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
	"github.com/mentortrack/mentorship-service/internal/validator"
)

// MockRepository is an in-memory Repository implementation shared by the
// service tests.
type MockRepository struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	profiles map[string]*models.MenteeProfile
	classes  map[uint]*models.MentorClass
	reports  map[uint]*models.Report
	queries  map[uint]*models.Query
	links    map[string]*models.CredentialLink
	audits   []*models.AuditEvent
	nextID   uint
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		accounts: make(map[string]*models.Account),
		profiles: make(map[string]*models.MenteeProfile),
		classes:  make(map[uint]*models.MentorClass),
		reports:  make(map[uint]*models.Report),
		queries:  make(map[uint]*models.Query),
		links:    make(map[string]*models.CredentialLink),
	}
}

func (m *MockRepository) Account() repositories.AccountRepository { return &mockAccountRepo{m} }
func (m *MockRepository) Mentee() repositories.MenteeRepository   { return &mockMenteeRepo{m} }
func (m *MockRepository) Class() repositories.ClassRepository     { return &mockClassRepo{m} }
func (m *MockRepository) Report() repositories.ReportRepository   { return &mockReportRepo{m} }
func (m *MockRepository) Query() repositories.QueryRepository     { return &mockQueryRepo{m} }
func (m *MockRepository) Audit() repositories.AuditRepository     { return &mockAuditRepo{m} }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }

func (m *MockRepository) allocID() uint {
	m.nextID++
	return m.nextID
}

// ---- accounts ----

type mockAccountRepo struct{ m *MockRepository }

func (r *mockAccountRepo) Create(ctx context.Context, account *models.Account) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.accounts[account.ID] = account
	return nil
}

func (r *mockAccountRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	account, ok := r.m.accounts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return account, nil
}

func (r *mockAccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, account := range r.m.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockAccountRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Account
	for _, id := range ids {
		if account, ok := r.m.accounts[id]; ok {
			out = append(out, account)
		}
	}
	return out, nil
}

func (r *mockAccountRepo) Update(ctx context.Context, account *models.Account) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.accounts[account.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.m.accounts[account.ID] = account
	return nil
}

func (r *mockAccountRepo) UpdateRole(ctx context.Context, id string, role models.AccountRole) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	account, ok := r.m.accounts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	account.Role = role
	return nil
}

func (r *mockAccountRepo) List(ctx context.Context, filters repositories.AccountFilters) ([]*models.Account, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Account
	for _, account := range r.m.accounts {
		if filters.Role != nil && account.Role != *filters.Role {
			continue
		}
		if filters.Query != "" && !strings.Contains(strings.ToLower(account.FullName+account.Email), strings.ToLower(filters.Query)) {
			continue
		}
		out = append(out, account)
	}
	return out, int64(len(out)), nil
}

func (r *mockAccountRepo) ListByRole(ctx context.Context, role models.AccountRole) ([]*models.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Account
	for _, account := range r.m.accounts {
		if account.Role == role {
			out = append(out, account)
		}
	}
	return out, nil
}

func (r *mockAccountRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	_, ok := r.m.accounts[id]
	return ok, nil
}

func (r *mockAccountRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, account := range r.m.accounts {
		if account.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockAccountRepo) GetCredentialLink(ctx context.Context, accountID string) (*models.CredentialLink, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	link, ok := r.m.links[accountID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return link, nil
}

func (r *mockAccountRepo) SaveCredentialLink(ctx context.Context, link *models.CredentialLink) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.links[link.AccountID] = link
	return nil
}

func (r *mockAccountRepo) DeleteCredentialLink(ctx context.Context, accountID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.links, accountID)
	return nil
}

// ---- mentees ----

type mockMenteeRepo struct{ m *MockRepository }

func (r *mockMenteeRepo) CreateProfile(ctx context.Context, profile *models.MenteeProfile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.profiles[profile.AccountID] = profile
	return nil
}

func (r *mockMenteeRepo) GetProfile(ctx context.Context, accountID string) (*models.MenteeProfile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	profile, ok := r.m.profiles[accountID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	profile.Account = r.m.accounts[accountID]
	return profile, nil
}

func (r *mockMenteeRepo) UpdateProfile(ctx context.Context, profile *models.MenteeProfile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.profiles[profile.AccountID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.EnrollmentNo = profile.EnrollmentNo
	stored.Year = profile.Year
	stored.ClassID = profile.ClassID
	stored.Semester = profile.Semester
	return nil
}

func (r *mockMenteeRepo) List(ctx context.Context, filters repositories.MenteeFilters) ([]*models.MenteeProfile, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.MenteeProfile
	for _, profile := range r.m.profiles {
		if filters.MentorID != nil && (profile.PrimaryMentorID == nil || *profile.PrimaryMentorID != *filters.MentorID) {
			continue
		}
		out = append(out, profile)
	}
	return out, int64(len(out)), nil
}

func (r *mockMenteeRepo) ListByMentor(ctx context.Context, mentorID string) ([]*models.MenteeProfile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.MenteeProfile
	for _, profile := range r.m.profiles {
		if profile.PrimaryMentorID != nil && *profile.PrimaryMentorID == mentorID {
			profile.Account = r.m.accounts[profile.AccountID]
			out = append(out, profile)
		}
	}
	return out, nil
}

func (r *mockMenteeRepo) ListBySlotHolder(ctx context.Context, slot models.DelegationSlot, mentorID string) ([]*models.MenteeProfile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.MenteeProfile
	for _, profile := range r.m.profiles {
		holder := profile.SlotHolder(slot)
		if holder != nil && *holder == mentorID {
			out = append(out, profile)
		}
	}
	return out, nil
}

func (r *mockMenteeRepo) SetPrimaryMentor(ctx context.Context, accountID string, mentorID *string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	profile, ok := r.m.profiles[accountID]
	if !ok {
		return repositories.ErrNotFound
	}
	profile.PrimaryMentorID = mentorID
	return nil
}

func (r *mockMenteeRepo) SetSlot(ctx context.Context, accountID string, slot models.DelegationSlot, holderID *string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	profile, ok := r.m.profiles[accountID]
	if !ok {
		return repositories.ErrNotFound
	}
	if slot == models.SlotGuide {
		profile.GuideID = holderID
	} else {
		profile.CoGuideID = holderID
	}
	return nil
}

func (r *mockMenteeRepo) ReplaceGrant(ctx context.Context, accountID string, grant models.ProfileEditGrant) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	profile, ok := r.m.profiles[accountID]
	if !ok {
		return repositories.ErrNotFound
	}
	profile.EditGrant = grant
	return nil
}

func (r *mockMenteeRepo) SetGrantConsumed(ctx context.Context, accountID string, consumed bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	profile, ok := r.m.profiles[accountID]
	if !ok {
		return repositories.ErrNotFound
	}
	profile.EditGrant.Consumed = consumed
	return nil
}

func (r *mockMenteeRepo) ExistsByEnrollment(ctx context.Context, enrollmentNo string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, profile := range r.m.profiles {
		if profile.EnrollmentNo == enrollmentNo {
			return true, nil
		}
	}
	return false, nil
}

// ---- classes ----

type mockClassRepo struct{ m *MockRepository }

func (r *mockClassRepo) Create(ctx context.Context, class *models.MentorClass) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	class.ID = r.m.allocID()
	r.m.classes[class.ID] = class
	return nil
}

func (r *mockClassRepo) GetByID(ctx context.Context, id uint) (*models.MentorClass, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	class, ok := r.m.classes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return class, nil
}

func (r *mockClassRepo) Update(ctx context.Context, class *models.MentorClass) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.classes[class.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.m.classes[class.ID] = class
	return nil
}

func (r *mockClassRepo) Delete(ctx context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.classes, id)
	for _, profile := range r.m.profiles {
		if profile.ClassID != nil && *profile.ClassID == id {
			profile.ClassID = nil
		}
	}
	return nil
}

func (r *mockClassRepo) ListByMentor(ctx context.Context, mentorID string) ([]*models.MentorClass, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.MentorClass
	for _, class := range r.m.classes {
		if class.MentorID == mentorID {
			out = append(out, class)
		}
	}
	return out, nil
}

// ---- reports ----

type mockReportRepo struct{ m *MockRepository }

func (r *mockReportRepo) Create(ctx context.Context, report *models.Report) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	report.ID = r.m.allocID()
	for i := range report.Recipients {
		report.Recipients[i].ReportID = report.ID
	}
	r.m.reports[report.ID] = report
	return nil
}

func (r *mockReportRepo) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	report, ok := r.m.reports[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return report, nil
}

func (r *mockReportRepo) UpdateReview(ctx context.Context, id uint, status models.ReportStatus, feedback *string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	report, ok := r.m.reports[id]
	if !ok {
		return repositories.ErrNotFound
	}
	report.Status = status
	report.Feedback = feedback
	return nil
}

func (r *mockReportRepo) UpdateFeedback(ctx context.Context, id uint, feedback *string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	report, ok := r.m.reports[id]
	if !ok {
		return repositories.ErrNotFound
	}
	report.Feedback = feedback
	return nil
}

func (r *mockReportRepo) MarkViewed(ctx context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	report, ok := r.m.reports[id]
	if !ok {
		return repositories.ErrNotFound
	}
	report.Viewed = true
	return nil
}

func (r *mockReportRepo) ListForRecipient(ctx context.Context, accountID string, filters repositories.ReportFilters) ([]*models.Report, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Report
	for _, report := range r.m.reports {
		if !report.HasRecipient(accountID) {
			continue
		}
		if filters.Status != nil && report.Status != *filters.Status {
			continue
		}
		out = append(out, report)
	}
	return out, int64(len(out)), nil
}

func (r *mockReportRepo) ListByAuthor(ctx context.Context, authorID string, filters repositories.ReportFilters) ([]*models.Report, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Report
	for _, report := range r.m.reports {
		if report.AuthorID != authorID {
			continue
		}
		if filters.Status != nil && report.Status != *filters.Status {
			continue
		}
		out = append(out, report)
	}
	return out, int64(len(out)), nil
}

func (r *mockReportRepo) GetStats(ctx context.Context, recipientID string) (*repositories.ReportStats, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stats := &repositories.ReportStats{
		StatusBreakdown: make(map[models.ReportStatus]int),
		ByRole:          make(map[models.RecipientRole]int),
	}
	for _, report := range r.m.reports {
		for _, rec := range report.Recipients {
			if rec.AccountID != recipientID {
				continue
			}
			stats.Total++
			stats.StatusBreakdown[report.Status]++
			stats.ByRole[rec.Role]++
			if !report.Viewed {
				stats.UnviewedCount++
			}
		}
	}
	return stats, nil
}

// ---- queries ----

type mockQueryRepo struct{ m *MockRepository }

func (r *mockQueryRepo) Create(ctx context.Context, query *models.Query) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	query.ID = r.m.allocID()
	r.m.queries[query.ID] = query
	return nil
}

func (r *mockQueryRepo) GetByID(ctx context.Context, id uint) (*models.Query, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	query, ok := r.m.queries[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return query, nil
}

func (r *mockQueryRepo) SetAnswer(ctx context.Context, id uint, answer string, status models.QueryStatus) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	query, ok := r.m.queries[id]
	if !ok {
		return repositories.ErrNotFound
	}
	query.Answer = &answer
	query.Status = status
	if status == models.QueryAnswered && query.AnsweredAt == nil {
		now := time.Now()
		query.AnsweredAt = &now
	}
	return nil
}

func (r *mockQueryRepo) ListByMentor(ctx context.Context, mentorID string, filters repositories.QueryFilters) ([]*models.Query, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Query
	for _, query := range r.m.queries {
		if query.MentorID != mentorID {
			continue
		}
		if filters.Status != nil && query.Status != *filters.Status {
			continue
		}
		out = append(out, query)
	}
	return out, int64(len(out)), nil
}

func (r *mockQueryRepo) ListByMentee(ctx context.Context, menteeID string, filters repositories.QueryFilters) ([]*models.Query, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Query
	for _, query := range r.m.queries {
		if query.MenteeID != menteeID {
			continue
		}
		if filters.Status != nil && query.Status != *filters.Status {
			continue
		}
		out = append(out, query)
	}
	return out, int64(len(out)), nil
}

// ---- audits ----

type mockAuditRepo struct{ m *MockRepository }

func (r *mockAuditRepo) Record(ctx context.Context, event *models.AuditEvent) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	event.ID = r.m.allocID()
	r.m.audits = append(r.m.audits, event)
	return nil
}

func (r *mockAuditRepo) List(ctx context.Context, filters repositories.AuditFilters) ([]*models.AuditEvent, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.AuditEvent
	for _, event := range r.m.audits {
		if filters.Type != nil && event.Type != *filters.Type {
			continue
		}
		if filters.ActorID != nil && event.ActorID != *filters.ActorID {
			continue
		}
		out = append(out, event)
	}
	return out, int64(len(out)), nil
}

// ---- identity provider fake ----

type mockAuthenticator struct {
	mu      sync.Mutex
	secrets map[string]string // email -> secret
	ids     map[string]string // email -> provider id
	nextID  int
}

func newMockAuthenticator() *mockAuthenticator {
	return &mockAuthenticator{
		secrets: make(map[string]string),
		ids:     make(map[string]string),
	}
}

func (a *mockAuthenticator) register(email, secret string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	id := fmt.Sprintf("idp-%d", a.nextID)
	a.secrets[email] = secret
	a.ids[email] = id
	return id
}

func (a *mockAuthenticator) CreateIdentity(ctx context.Context, identity auth.NewIdentity) (string, error) {
	return a.register(identity.Email, identity.Secret), nil
}

func (a *mockAuthenticator) Authenticate(ctx context.Context, email, secret string) (*auth.Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if stored, ok := a.secrets[email]; !ok || stored != secret {
		return nil, auth.ErrInvalidCredentials
	}
	return &auth.Identity{ID: a.ids[email], Email: email}, nil
}

func (a *mockAuthenticator) DeleteIdentity(ctx context.Context, id string) error { return nil }

func (a *mockAuthenticator) ParseToken(ctx context.Context, token string) (*auth.Identity, error) {
	return nil, auth.ErrInvalidCredentials
}

// ---- session store fake ----

type mockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*auth.Session
	nextID   int
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]*auth.Session)}
}

func (s *mockSessionStore) NewSession(accountID, email, role string) *auth.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := time.Now()
	return &auth.Session{
		Token:     fmt.Sprintf("token-%d", s.nextID),
		AccountID: accountID,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(12 * time.Hour),
	}
}

func (s *mockSessionStore) Create(ctx context.Context, session *auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	return nil
}

func (s *mockSessionStore) Get(ctx context.Context, token string) (*auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, auth.ErrSessionNotFound
	}
	return session, nil
}

func (s *mockSessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// ---- fixtures ----

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func strPtr(s string) *string { return &s }

func newTestValidator() *validator.Validator { return validator.New() }

func auditFiltersFor(eventType string) repositories.AuditFilters {
	return repositories.AuditFilters{Type: &eventType, Limit: 100}
}

// seedEnv populates the mock repository with a standard cast: one admin,
// two mentors and one mentee assigned to mentor-1.
func seedEnv(repo *MockRepository) {
	repo.accounts["admin-1"] = &models.Account{ID: "admin-1", FullName: "Ada Admin", Email: "ada@mentortrack.io", Role: models.RoleAdmin}
	repo.accounts["mentor-1"] = &models.Account{ID: "mentor-1", FullName: "Mina Mentor", Email: "mina@mentortrack.io", Role: models.RoleMentor}
	repo.accounts["mentor-2"] = &models.Account{ID: "mentor-2", FullName: "Max Mentor", Email: "max@mentortrack.io", Role: models.RoleMentor}
	repo.accounts["mentee-1"] = &models.Account{ID: "mentee-1", FullName: "Mya Mentee", Email: "mya@mentortrack.io", Role: models.RoleMentee}
	repo.profiles["mentee-1"] = &models.MenteeProfile{
		AccountID:       "mentee-1",
		EnrollmentNo:    "EN2301",
		Year:            "2023",
		PrimaryMentorID: strPtr("mentor-1"),
	}
}

func newTestDeps() (*MockRepository, *events.MockEventPublisher, *validator.Validator, *slog.Logger) {
	repo := NewMockRepository()
	seedEnv(repo)
	logger := testLogger()
	publisher := events.NewMockEventPublisher(logger)
	return repo, publisher, validator.New(), logger
}
