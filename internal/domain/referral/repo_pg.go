package referral

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rmdhealth/rmd/internal/platform/apperr"
	"github.com/rmdhealth/rmd/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const referralCols = `id, organization_id, patient_id, case_id, status, priority,
	details, documents, created_at, updated_at`

func scanReferral(row pgx.Row) (*Referral, error) {
	var ref Referral
	err := row.Scan(&ref.ID, &ref.OrganizationID, &ref.PatientID, &ref.CaseID,
		&ref.Status, &ref.Priority, &ref.Details, &ref.Documents,
		&ref.CreatedAt, &ref.UpdatedAt)
	return &ref, err
}

func (r *repoPG) Create(ctx context.Context, ref *Referral) error {
	ref.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO referrals (id, organization_id, patient_id, case_id, status,
			priority, details, documents)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		ref.ID, ref.OrganizationID, ref.PatientID, ref.CaseID, ref.Status,
		ref.Priority, ref.Details, ref.Documents)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, orgID, id uuid.UUID) (*Referral, error) {
	ref, err := scanReferral(r.conn(ctx).QueryRow(ctx,
		`SELECT `+referralCols+` FROM referrals WHERE id = $1 AND organization_id = $2`,
		id, orgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("referral")
	}
	return ref, err
}

func (r *repoPG) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Referral, error) {
	query := `SELECT ` + referralCols + ` FROM referrals WHERE organization_id = $1 ORDER BY created_at DESC`
	args := []interface{}{orgID}
	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	return r.queryMany(ctx, query, args...)
}

func (r *repoPG) ListByPatient(ctx context.Context, orgID, patientID uuid.UUID, limit, offset int) ([]*Referral, error) {
	query := `SELECT ` + referralCols + ` FROM referrals
		WHERE organization_id = $1 AND patient_id = $2 ORDER BY created_at DESC`
	args := []interface{}{orgID, patientID}
	if limit > 0 {
		query += ` LIMIT $3 OFFSET $4`
		args = append(args, limit, offset)
	}
	return r.queryMany(ctx, query, args...)
}

func (r *repoPG) queryMany(ctx context.Context, query string, args ...interface{}) ([]*Referral, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Referral{}
	for rows.Next() {
		ref, err := scanReferral(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ref)
	}
	return items, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, ref *Referral) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE referrals SET status=$3, priority=$4, details=$5, documents=$6,
			updated_at=NOW()
		WHERE id = $1 AND organization_id = $2`,
		ref.ID, ref.OrganizationID, ref.Status, ref.Priority, ref.Details, ref.Documents)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("referral")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM referrals WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("referral")
	}
	return nil
}
