package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/domain"
	"github.com/saadsaiyed/pdf-to-shopify/pkg/errors"
)

type submissionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *sql.DB, logger *zap.Logger) *submissionRepository {
	return &submissionRepository{db: db, logger: logger}
}

const submissionColumns = `id, shop_name, customer_name, customer_id, po_number, source,
		draft_order_id, line_item_count, unresolved_codes, created_at`

func (r *submissionRepository) Create(ctx context.Context, s *domain.Submission) error {
	query := `
		INSERT INTO po_submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	unresolved := s.UnresolvedCodes
	if unresolved == nil {
		unresolved = []string{}
	}

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.ShopName, s.CustomerName, s.CustomerID, s.PONumber, string(s.Source),
		s.DraftOrderID, s.LineItemCount, pq.Array(unresolved), s.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create submission", zap.Error(err), zap.String("po_number", s.PONumber))
		return err
	}
	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM po_submissions WHERE id = $1`
	s, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "submission", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get submission", zap.Error(err), zap.String("submission_id", id.String()))
		return nil, err
	}
	return s, nil
}

func (r *submissionRepository) ListRecent(ctx context.Context, shopName string, limit int) ([]*domain.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM po_submissions
		WHERE shop_name = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, shopName, limit)
	if err != nil {
		r.logger.Error("Failed to list submissions", zap.Error(err), zap.String("shop_name", shopName))
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row rowScanner) (*domain.Submission, error) {
	var s domain.Submission
	var source string
	var draftOrderID sql.NullString
	var unresolved pq.StringArray
	if err := row.Scan(
		&s.ID, &s.ShopName, &s.CustomerName, &s.CustomerID, &s.PONumber, &source,
		&draftOrderID, &s.LineItemCount, &unresolved, &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	s.Source = domain.SubmissionSource(source)
	if draftOrderID.Valid {
		s.DraftOrderID = &draftOrderID.String
	}
	s.UnresolvedCodes = []string(unresolved)
	return &s, nil
}
