package analyses

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"energydocs-backend/internal/facts"
)

var analysisTestColumns = []string{
	"id", "original_filename", "status", "notes",
	"project_name", "project_type", "capacity_mw", "location_address", "project_area_size",
	"technology_details", "number_of_units",
	"developer_name", "developer_external_summary", "purchaser_or_offtaker",
	"offtaker_external_summary", "seller_or_provider", "key_counterparties",
	"agreement_type", "agreement_effective_date", "term_length_years",
	"contract_price_details", "guaranteed_output_or_availability",
	"liquidated_damages_mention", "delivery_point", "environmental_attributes_ownership",
	"lead_regulatory_agency", "assessment_type", "key_permits_mentioned",
	"key_environmental_concerns", "mitigation_mentioned", "key_project_dates",
	"summary", "risk_flags", "extracted_text_preview", "created_at", "updated_at",
}

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	name := "Sunrise Solar"
	analysis := Analysis{
		ID:               "analysis-1",
		OriginalFilename: "ppa.pdf",
		Status:           StatusProcessing,
		Facts: &facts.ProjectFacts{
			ProjectName: &name,
			CapacityMW:  facts.Num(150),
		},
		RiskFlags: []string{},
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO document_analyses").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), analysis); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDScan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	rows := sqlmock.NewRows(analysisTestColumns).AddRow(
		"analysis-1", "ppa.pdf", StatusPartial, "summarization failed: timeout",
		"Sunrise Solar", "Solar PV", "150", nil, "850 acres",
		nil, nil,
		"Acme Renewables", "Acme is a large developer.", "Metro Utility",
		nil, nil, []byte(`["EPC Co"]`),
		"Power Purchase Agreement", "2025-01-01", "about twenty",
		nil, nil,
		true, nil, nil,
		nil, nil, []byte(`[]`),
		[]byte(`[]`), nil, []byte(`[]`),
		nil, []byte(`["SHORT_PPA_TERM: short"]`), "Preview text", now, now,
	)
	mock.ExpectQuery("SELECT (.+) FROM document_analyses").
		WithArgs("analysis-1").
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	analysis, err := repo.GetByID(context.Background(), "analysis-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if analysis.Status != StatusPartial {
		t.Fatalf("status = %q", analysis.Status)
	}
	if len(analysis.Notes) != 1 || analysis.Notes[0] != "summarization failed: timeout" {
		t.Fatalf("notes = %v", analysis.Notes)
	}
	if analysis.Facts == nil {
		t.Fatal("facts should be reconstructed")
	}
	if analysis.Facts.ProjectName == nil || *analysis.Facts.ProjectName != "Sunrise Solar" {
		t.Fatalf("project_name = %v", analysis.Facts.ProjectName)
	}
	if !analysis.Facts.CapacityMW.Valid || analysis.Facts.CapacityMW.Value != 150 {
		t.Fatalf("capacity = %+v", analysis.Facts.CapacityMW)
	}
	// Text that never parsed as a number survives the round trip.
	if analysis.Facts.TermLengthYears.Valid || analysis.Facts.TermLengthYears.Raw != "about twenty" {
		t.Fatalf("term = %+v", analysis.Facts.TermLengthYears)
	}
	if analysis.Facts.LiquidatedDamagesMention == nil || !*analysis.Facts.LiquidatedDamagesMention {
		t.Fatalf("liquidated_damages = %v", analysis.Facts.LiquidatedDamagesMention)
	}
	if len(analysis.Facts.KeyCounterparties) != 1 || analysis.Facts.KeyCounterparties[0] != "EPC Co" {
		t.Fatalf("counterparties = %v", analysis.Facts.KeyCounterparties)
	}
	if len(analysis.RiskFlags) != 1 {
		t.Fatalf("risk flags = %v", analysis.RiskFlags)
	}
	if analysis.DeveloperExternalSummary != "Acme is a large developer." {
		t.Fatalf("developer summary = %q", analysis.DeveloperExternalSummary)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM document_analyses").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("UPDATE document_analyses").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	if err := repo.Update(context.Background(), Analysis{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
