package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// AuditRepository stores the append-only audit trail. There is no update or
// delete path: entries are immutable once written.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	ListByComplaint(ctx context.Context, complaintID string, limit, offset int) ([]domain.AuditEntry, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository builds the repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO audit_log (tenant_id, complaint_id, user_id, action, detail, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TenantID,
		entry.ComplaintID,
		entry.UserID,
		entry.Action,
		entry.Detail,
		entry.OldValue,
		entry.NewValue,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditRepository) ListByComplaint(ctx context.Context, complaintID string, limit, offset int) ([]domain.AuditEntry, error) {
	const query = `
        SELECT id, tenant_id, complaint_id, user_id, action, detail, old_value, new_value, created_at
        FROM audit_log WHERE complaint_id=$1
        ORDER BY created_at ASC LIMIT $2 OFFSET $3`

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, query, complaintID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TenantID,
			&entry.ComplaintID,
			&entry.UserID,
			&entry.Action,
			&entry.Detail,
			&entry.OldValue,
			&entry.NewValue,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
