package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mentortrack/mentorship-service/internal/events"
	"github.com/mentortrack/mentorship-service/internal/models"
)

func newQueryService(repo *MockRepository, publisher *events.MockEventPublisher) *queryService {
	return &queryService{
		repo:           repo,
		eventPublisher: publisher,
		logger:         testLogger(),
		validator:      newTestValidator(),
	}
}

func askReq() *AskQueryRequest {
	return &AskQueryRequest{Subject: "Thesis scope", Question: "Should chapter 2 cover related work?"}
}

func TestAskQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("routes to the current primary mentor", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newQueryService(repo, publisher)

		resp, err := service.Ask(ctx, askReq(), "mentee-1")
		if err != nil {
			t.Fatalf("Ask failed: %v", err)
		}
		if resp.MentorID != "mentor-1" {
			t.Errorf("Expected mentor-1, got %s", resp.MentorID)
		}
		if resp.Status != models.QueryPending {
			t.Errorf("Expected pending status, got %s", resp.Status)
		}
		if got := publisher.EventsOfType(events.EventQueryAsked); len(got) != 1 {
			t.Errorf("Expected 1 query-asked event, got %d", len(got))
		}
	})

	t.Run("unassigned mentee cannot ask", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		repo.profiles["mentee-1"].PrimaryMentorID = nil
		service := newQueryService(repo, publisher)

		_, err := service.Ask(ctx, askReq(), "mentee-1")
		if !errors.Is(err, ErrNoMentorAssigned) {
			t.Errorf("Expected ErrNoMentorAssigned, got %v", err)
		}
	})

	t.Run("open query stays with the mentor after reassignment", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newQueryService(repo, publisher)

		resp, err := service.Ask(ctx, askReq(), "mentee-1")
		if err != nil {
			t.Fatalf("Ask failed: %v", err)
		}

		repo.profiles["mentee-1"].PrimaryMentorID = strPtr("mentor-2")

		stored, _ := repo.Query().GetByID(ctx, resp.ID)
		if stored.MentorID != "mentor-1" {
			t.Errorf("Expected query to stay with mentor-1, got %s", stored.MentorID)
		}
	})
}

func TestAnswerQuery(t *testing.T) {
	ctx := context.Background()

	ask := func(repo *MockRepository, publisher *events.MockEventPublisher) uint {
		service := newQueryService(repo, publisher)
		resp, err := service.Ask(ctx, askReq(), "mentee-1")
		if err != nil {
			panic(err)
		}
		publisher.ClearEvents()
		return resp.ID
	}

	t.Run("frozen mentor answers", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		queryID := ask(repo, publisher)
		service := newQueryService(repo, publisher)

		resp, err := service.Answer(ctx, queryID, &AnswerQueryRequest{Answer: "Yes, keep it short."}, "mentor-1")
		if err != nil {
			t.Fatalf("Answer failed: %v", err)
		}
		if resp.Status != models.QueryAnswered {
			t.Errorf("Expected answered status, got %s", resp.Status)
		}
		if got := publisher.EventsOfType(events.EventQueryAnswered); len(got) != 1 {
			t.Errorf("Expected 1 query-answered event, got %d", len(got))
		}
	})

	t.Run("other mentors cannot answer", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		queryID := ask(repo, publisher)
		service := newQueryService(repo, publisher)

		_, err := service.Answer(ctx, queryID, &AnswerQueryRequest{Answer: "Not mine"}, "mentor-2")
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})

	t.Run("revised answer keeps the first answered timestamp", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		queryID := ask(repo, publisher)
		service := newQueryService(repo, publisher)

		if _, err := service.Answer(ctx, queryID, &AnswerQueryRequest{Answer: "First draft"}, "mentor-1"); err != nil {
			t.Fatalf("First answer failed: %v", err)
		}
		first, _ := repo.Query().GetByID(ctx, queryID)
		firstAnsweredAt := *first.AnsweredAt

		if _, err := service.Answer(ctx, queryID, &AnswerQueryRequest{Answer: "Second draft"}, "mentor-1"); err != nil {
			t.Fatalf("Second answer failed: %v", err)
		}

		stored, _ := repo.Query().GetByID(ctx, queryID)
		if stored.Answer == nil || *stored.Answer != "Second draft" {
			t.Errorf("Expected revised answer text, got %v", stored.Answer)
		}
		if stored.Status != models.QueryAnswered {
			t.Errorf("Expected status to stay answered, got %s", stored.Status)
		}
		if !stored.AnsweredAt.Equal(firstAnsweredAt) {
			t.Errorf("Expected answered timestamp to stay %v, got %v", firstAnsweredAt, stored.AnsweredAt)
		}
	})
}

func TestGetQuery(t *testing.T) {
	ctx := context.Background()

	repo, publisher, _, _ := newTestDeps()
	service := newQueryService(repo, publisher)

	resp, err := service.Ask(ctx, askReq(), "mentee-1")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	t.Run("mentor participant can answer", func(t *testing.T) {
		got, err := service.GetByID(ctx, resp.ID, "mentor-1")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if !got.CanAnswer {
			t.Error("Expected mentor to hold answer rights")
		}
	})

	t.Run("mentee participant cannot answer", func(t *testing.T) {
		got, err := service.GetByID(ctx, resp.ID, "mentee-1")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.CanAnswer {
			t.Error("Expected mentee to have no answer rights")
		}
	})

	t.Run("outsider is rejected", func(t *testing.T) {
		_, err := service.GetByID(ctx, resp.ID, "mentor-2")
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})
}
