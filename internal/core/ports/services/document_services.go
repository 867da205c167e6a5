package services

import (
	"context"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
)

// DocumentReaderSvc defines read operations for posted documents
type DocumentReaderSvc interface {
	// GetDocument retrieves a document of the given type with its items.
	GetDocument(ctx context.Context, docType domain.DocumentType, documentID string) (*domain.Document, error)

	// ListDocuments retrieves a page of headers and the total match count.
	ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error)
}

// DocumentPostingSvc defines the ledger-posting workflow
type DocumentPostingSvc interface {
	// CreateDocument validates and posts a document atomically.
	CreateDocument(ctx context.Context, docType domain.DocumentType, req dto.CreateDocumentRequest, userID string) (*domain.Document, error)

	// UpdateDocument patches header fields and re-applies any balance difference.
	UpdateDocument(ctx context.Context, docType domain.DocumentType, documentID string, req dto.UpdateDocumentRequest, userID string) (*domain.Document, error)

	// ReplaceDocumentItems swaps the lines of a document, offsetting the old stock effect.
	ReplaceDocumentItems(ctx context.Context, docType domain.DocumentType, documentID string, items []dto.DocumentItemRequest, userID string) (*domain.Document, error)

	// CancelDocument marks a document cancelled. Cancelling twice is not an error.
	CancelDocument(ctx context.Context, docType domain.DocumentType, documentID string, userID string) (*domain.Document, error)

	// BulkCancelDocuments cancels every id or none and returns how many changed.
	BulkCancelDocuments(ctx context.Context, docType domain.DocumentType, documentIDs []string, userID string) (int, error)
}

// DocumentSvcFacade combines all document-related service interfaces
type DocumentSvcFacade interface {
	DocumentReaderSvc
	DocumentPostingSvc
}
