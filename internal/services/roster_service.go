package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
)

type rosterService struct {
	repo      repositories.Repository
	directory DirectoryService
	logger    *slog.Logger
}

func NewRosterService(repo repositories.Repository, directory DirectoryService, logger *slog.Logger) RosterService {
	return &rosterService{repo: repo, directory: directory, logger: logger}
}

// ImportMenteeRoster registers mentees from an xlsx upload, one row per
// mentee. Rows are processed independently; a rejected row is reported
// by enrollment number and does not stop the rest.
func (s *rosterService) ImportMenteeRoster(ctx context.Context, data []byte, actorID string) (*RosterImportResult, error) {
	if s.directory == nil {
		return nil, fmt.Errorf("%w: directory service not configured", ErrBadRequest)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid xlsx workbook", ErrBadRequest)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: workbook has no data rows", ErrBadRequest)
	}

	s.logger.Info("Importing mentee roster", "actor_id", actorID, "rows", len(rows)-1)

	result := &RosterImportResult{Failed: make(map[string]string)}
	for i, row := range rows[1:] {
		req, err := menteeRowToRequest(row)
		if err != nil {
			result.Failed[fmt.Sprintf("row %d", i+2)] = err.Error()
			continue
		}

		if _, err := s.directory.CreateMentee(ctx, req, actorID); err != nil {
			result.Failed[req.EnrollmentNo] = err.Error()
			continue
		}
		result.Created = append(result.Created, req.EnrollmentNo)
	}

	return result, nil
}

// Import columns: Enrollment No, Full Name, Email, Secret, Year,
// Semester (optional), Mentor ID (optional).
func menteeRowToRequest(row []string) (*CreateMenteeRequest, error) {
	cell := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	req := &CreateMenteeRequest{
		EnrollmentNo: cell(0),
		FullName:     cell(1),
		Email:        cell(2),
		Secret:       cell(3),
		Year:         cell(4),
	}
	if req.EnrollmentNo == "" || req.FullName == "" || req.Email == "" || req.Secret == "" || req.Year == "" {
		return nil, fmt.Errorf("missing required columns")
	}
	if semester := cell(5); semester != "" {
		req.Semester = &semester
	}
	if mentorID := cell(6); mentorID != "" {
		req.MentorID = &mentorID
	}
	return req, nil
}

// ExportMenteeRoster renders the mentor's mentees as an xlsx workbook:
// one row per mentee with enrollment, cohort and the current delegation
// holders.
func (s *rosterService) ExportMenteeRoster(ctx context.Context, mentorID string) ([]byte, error) {
	s.logger.Info("Exporting mentee roster", "mentor_id", mentorID)

	profiles, err := s.repo.Mentee().ListByMentor(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mentees: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Roster"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Enrollment No", "Full Name", "Email", "Year", "Semester", "Class", "Guide", "Co-Guide"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	holders := s.resolveHolders(ctx, profiles)
	for row, p := range profiles {
		values := []interface{}{
			p.EnrollmentNo,
			accountName(p.Account),
			accountEmail(p.Account),
			p.Year,
			optionalString(p.Semester),
			className(p.Class),
			holderName(holders, p.GuideID),
			holderName(holders, p.CoGuideID),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render roster: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportReportSummary renders the reports addressed to the recipient,
// one row per report with its review state.
func (s *rosterService) ExportReportSummary(ctx context.Context, recipientID string, filters repositories.ReportFilters) ([]byte, error) {
	s.logger.Info("Exporting report summary", "recipient_id", recipientID)

	reports, _, err := s.repo.Report().ListForRecipient(ctx, recipientID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Reports"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Title", "Author", "Submitted At", "Status", "Viewed", "Feedback"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, r := range reports {
		feedback := ""
		if r.Feedback != nil {
			feedback = *r.Feedback
		}
		values := []interface{}{
			r.ID,
			r.Title,
			accountName(r.Author),
			r.SubmittedAt.Format(time.RFC3339),
			string(r.Status),
			r.Viewed,
			feedback,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render report summary: %w", err)
	}
	return buf.Bytes(), nil
}

// resolveHolders batch-loads the accounts behind the delegation slots so
// the export shows names instead of IDs.
func (s *rosterService) resolveHolders(ctx context.Context, profiles []*models.MenteeProfile) map[string]string {
	idSet := make(map[string]struct{})
	for _, p := range profiles {
		if p.GuideID != nil {
			idSet[*p.GuideID] = struct{}{}
		}
		if p.CoGuideID != nil {
			idSet[*p.CoGuideID] = struct{}{}
		}
	}
	if len(idSet) == 0 {
		return nil
	}

	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	accounts, err := s.repo.Account().GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to resolve slot holders for export", "error", err)
		return nil
	}

	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.FullName
	}
	return names
}

func accountName(a *models.Account) string {
	if a == nil {
		return ""
	}
	return a.FullName
}

func accountEmail(a *models.Account) string {
	if a == nil {
		return ""
	}
	return a.Email
}

func className(c *models.MentorClass) string {
	if c == nil {
		return ""
	}
	return c.Name
}

func optionalString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func holderName(names map[string]string, id *string) string {
	if id == nil {
		return ""
	}
	if name, ok := names[*id]; ok {
		return name
	}
	return *id
}
