package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mentortrack/mentorship-service/internal/events"
	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
	"github.com/mentortrack/mentorship-service/internal/validator"
)

type queryService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewQueryService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) QueryService {
	return &queryService{
		repo:           repo,
		eventPublisher: publisher,
		logger:         logger,
		validator:      v,
	}
}

// Ask routes a question to the mentee's primary mentor. The mentor is
// frozen onto the query at ask time; reassigning the mentee later does
// not move the open question.
func (s *queryService) Ask(ctx context.Context, req *AskQueryRequest, menteeID string) (*QueryResponse, error) {
	s.logger.Info("Asking query", "mentee_id", menteeID, "subject", req.Subject)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	profile, err := s.repo.Mentee().GetProfile(ctx, menteeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMenteeNotFound
		}
		return nil, err
	}
	if profile.PrimaryMentorID == nil {
		return nil, ErrNoMentorAssigned
	}

	query := &models.Query{
		MenteeID: menteeID,
		MentorID: *profile.PrimaryMentorID,
		Subject:  req.Subject,
		Question: req.Question,
		Status:   models.QueryPending,
		AskedAt:  time.Now(),
	}

	if err := s.repo.Query().Create(ctx, query); err != nil {
		return nil, fmt.Errorf("failed to create query: %w", err)
	}

	s.publish(ctx, events.EventQueryAsked, map[string]interface{}{
		"query_id":  query.ID,
		"mentee_id": menteeID,
		"mentor_id": query.MentorID,
	})

	return &QueryResponse{Query: query}, nil
}

// Answer records the frozen mentor's reply and moves the query to
// answered. Answering again only replaces the text; the status and the
// first answered timestamp stay put.
func (s *queryService) Answer(ctx context.Context, queryID uint, req *AnswerQueryRequest, mentorID string) (*QueryResponse, error) {
	s.logger.Info("Answering query", "query_id", queryID, "mentor_id", mentorID)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	query, err := s.repo.Query().GetByID(ctx, queryID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQueryNotFound
		}
		return nil, err
	}
	if query.MentorID != mentorID {
		return nil, NewPermissionError(mentorID, queryID, "query", "answer", "query is routed to a different mentor")
	}

	if err := s.repo.Query().SetAnswer(ctx, queryID, req.Answer, models.QueryAnswered); err != nil {
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}

	s.publish(ctx, events.EventQueryAnswered, map[string]interface{}{
		"query_id":  queryID,
		"mentee_id": query.MenteeID,
		"mentor_id": mentorID,
	})

	query.Answer = &req.Answer
	query.Status = models.QueryAnswered
	return &QueryResponse{Query: query}, nil
}

// GetByID returns the query to either participant.
func (s *queryService) GetByID(ctx context.Context, queryID uint, viewerID string) (*QueryResponse, error) {
	query, err := s.repo.Query().GetByID(ctx, queryID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQueryNotFound
		}
		return nil, err
	}
	if query.MenteeID != viewerID && query.MentorID != viewerID {
		return nil, NewPermissionError(viewerID, queryID, "query", "read", "not a participant")
	}

	return &QueryResponse{Query: query, CanAnswer: query.MentorID == viewerID}, nil
}

func (s *queryService) ListForMentor(ctx context.Context, mentorID string, filters repositories.QueryFilters) (*QueryListResponse, error) {
	queries, total, err := s.repo.Query().ListByMentor(ctx, mentorID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}
	return queryListResponse(queries, total, filters, true), nil
}

func (s *queryService) ListForMentee(ctx context.Context, menteeID string, filters repositories.QueryFilters) (*QueryListResponse, error) {
	queries, total, err := s.repo.Query().ListByMentee(ctx, menteeID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}
	return queryListResponse(queries, total, filters, false), nil
}

func (s *queryService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "error", err, "event_type", eventType)
	}
}

func queryListResponse(queries []*models.Query, total int64, filters repositories.QueryFilters, asMentor bool) *QueryListResponse {
	items := make([]*QueryResponse, len(queries))
	for i, q := range queries {
		items[i] = &QueryResponse{Query: q, CanAnswer: asMentor}
	}
	return &QueryListResponse{
		Queries: items,
		Total:   total,
		Page:    pageFromOffset(filters.Offset, filters.Limit),
		Size:    filters.Limit,
	}
}
