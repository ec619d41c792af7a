package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
	"github.com/mentortrack/mentorship-service/internal/validator"
)

func rosterWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{"Enrollment No", "Full Name", "Email", "Secret", "Year", "Semester", "Mentor ID"}
	all := append([][]interface{}{header}, rows...)
	for r, row := range all {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			f.SetCellValue("Sheet1", cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to render workbook: %v", err)
	}
	return buf.Bytes()
}

func TestImportMenteeRoster(t *testing.T) {
	ctx := context.Background()

	t.Run("rows are processed independently", func(t *testing.T) {
		repo, publisher, _, logger := newTestDeps()
		authenticator := newMockAuthenticator()
		directory := newDirectoryService(repo, authenticator, publisher)
		service := &rosterService{repo: repo, directory: directory, logger: logger}

		data := rosterWorkbook(t, [][]interface{}{
			{"EN2302", "Nia Newmentee", "nia@mentortrack.io", "roster-secret-1", "2023", "S1", "mentor-1"},
			{"EN2301", "Dup Enrollment", "dup@mentortrack.io", "roster-secret-2", "2023"},
			{"EN2303", "No Secret"},
		})

		result, err := service.ImportMenteeRoster(ctx, data, "admin-1")
		if err != nil {
			t.Fatalf("ImportMenteeRoster failed: %v", err)
		}

		if len(result.Created) != 1 || result.Created[0] != "EN2302" {
			t.Errorf("Expected EN2302 created, got %v", result.Created)
		}
		if _, ok := result.Failed["EN2301"]; !ok {
			t.Errorf("Expected the duplicate enrollment row to fail, got %v", result.Failed)
		}
		if _, ok := result.Failed["row 4"]; !ok {
			t.Errorf("Expected the incomplete row to fail, got %v", result.Failed)
		}

		var created *models.MenteeProfile
		for _, p := range repo.profiles {
			if p.EnrollmentNo == "EN2302" {
				created = p
			}
		}
		if created == nil {
			t.Fatal("Expected an imported mentee profile")
		}
		if created.PrimaryMentorID == nil || *created.PrimaryMentorID != "mentor-1" {
			t.Errorf("Expected imported mentee assigned to mentor-1, got %v", created.PrimaryMentorID)
		}
	})

	t.Run("rejects a non-workbook upload", func(t *testing.T) {
		repo, publisher, _, logger := newTestDeps()
		directory := newDirectoryService(repo, newMockAuthenticator(), publisher)
		service := &rosterService{repo: repo, directory: directory, logger: logger}

		if _, err := service.ImportMenteeRoster(ctx, []byte("not a workbook"), "admin-1"); !errors.Is(err, ErrBadRequest) {
			t.Errorf("Expected ErrBadRequest, got %v", err)
		}
	})
}

func TestExportMenteeRoster(t *testing.T) {
	ctx := context.Background()

	repo, _, _, logger := newTestDeps()
	repo.profiles["mentee-1"].GuideID = strPtr("mentor-2")
	service := &rosterService{repo: repo, logger: logger}

	data, err := service.ExportMenteeRoster(ctx, "mentor-1")
	if err != nil {
		t.Fatalf("ExportMenteeRoster failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Expected a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Roster")
	if err != nil {
		t.Fatalf("Expected a Roster sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected header plus one mentee row, got %d rows", len(rows))
	}
	if rows[0][0] != "Enrollment No" {
		t.Errorf("Expected Enrollment No header, got %s", rows[0][0])
	}
	if rows[1][0] != "EN2301" {
		t.Errorf("Expected enrollment EN2301 in the first data row, got %s", rows[1][0])
	}
	if rows[1][6] != "Max Mentor" {
		t.Errorf("Expected guide resolved to a name, got %s", rows[1][6])
	}
}

func TestExportReportSummary(t *testing.T) {
	ctx := context.Background()

	repo, publisher, _, logger := newTestDeps()
	reportSvc := &reportService{repo: repo, eventPublisher: publisher, logger: logger, validator: validator.New()}
	if _, err := reportSvc.Submit(ctx, submitReq("Week 1"), "mentee-1"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	service := &rosterService{repo: repo, logger: logger}
	data, err := service.ExportReportSummary(ctx, "mentor-1", repositories.ReportFilters{Limit: 100})
	if err != nil {
		t.Fatalf("ExportReportSummary failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Expected a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Reports")
	if err != nil {
		t.Fatalf("Expected a Reports sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected header plus one report row, got %d rows", len(rows))
	}
	if rows[1][1] != "Week 1" {
		t.Errorf("Expected report title in the export, got %s", rows[1][1])
	}
	if rows[1][4] != string(models.ReportPending) {
		t.Errorf("Expected pending status, got %s", rows[1][4])
	}
}
