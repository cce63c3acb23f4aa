package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/davidalcaide/proposalia/internal/core/domain"
)

func TestDocumentRepositoryGetByIDDecodesJSONColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewDocumentRepository(db)
	rows := sqlmock.NewRows([]string{
		"id", "agency_id", "filename", "storage_path", "status", "briefing", "available_programs",
		"output_language", "additional_context", "processing_error", "metadata", "page_count",
		"text_preview", "created_at", "updated_at",
	}).AddRow(
		"d-1", "a-1", "catalog.pdf", "documents/d-1.pdf", string(domain.StatusProcessed),
		[]byte(`{"title":"Master en IA"}`),
		[]byte(`[{"title":"Master en IA"}]`),
		"es", "", "", []byte(`{"stage":"deep_extraction_complete","message":"done"}`), 12,
		"preview", time.Now(), time.Now(),
	)

	mock.ExpectQuery("FROM documents").
		WithArgs("d-1").
		WillReturnRows(rows)

	doc, err := repo.GetByID(context.Background(), "d-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if doc.Briefing == nil || doc.Briefing.Title != "Master en IA" {
		t.Fatalf("expected decoded briefing, got %+v", doc.Briefing)
	}
	if len(doc.AvailablePrograms) != 1 {
		t.Fatalf("expected 1 available program, got %d", len(doc.AvailablePrograms))
	}
	if doc.Metadata.Stage != "deep_extraction_complete" {
		t.Fatalf("expected decoded metadata, got %+v", doc.Metadata)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewDocumentRepository(db)
	mock.ExpectQuery("FROM documents").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentRepositorySaveBriefingWithoutCarriedKeepsPrograms(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewDocumentRepository(db)
	mock.ExpectExec("UPDATE documents").
		WithArgs("d-1", sqlmock.AnyArg(), string(domain.StatusProcessed), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	meta := domain.StageMetadata{Stage: "deep_extraction_complete", Message: "done", UpdatedAt: time.Now()}
	err = repo.SaveBriefing(context.Background(), "d-1", domain.Briefing{Title: "t"}, nil, meta)
	if err != nil {
		t.Fatalf("SaveBriefing() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentRepositorySaveBriefingWithCarriedRewritesPrograms(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewDocumentRepository(db)
	mock.ExpectExec("UPDATE documents").
		WithArgs("d-1", sqlmock.AnyArg(), sqlmock.AnyArg(), string(domain.StatusProcessed), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	carried := []domain.ProgramSummary{{Title: "Master en IA"}}
	meta := domain.StageMetadata{Stage: "deep_extraction_complete", Message: "done", UpdatedAt: time.Now()}
	err = repo.SaveBriefing(context.Background(), "d-1", domain.Briefing{Title: "t"}, carried, meta)
	if err != nil {
		t.Fatalf("SaveBriefing() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentRepositoryDeleteReturnsErrorWhenNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewDocumentRepository(db)
	mock.ExpectExec("DELETE FROM documents").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Delete(context.Background(), "missing")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
