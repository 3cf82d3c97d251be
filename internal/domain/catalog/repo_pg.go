package catalog

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

const locationCols = `id, organization_id, name, address, phone, active, created_at, updated_at`
const providerCols = `id, organization_id, name, specialty, email, phone, active, created_at, updated_at`
const serviceCols = `id, organization_id, name, description, active, created_at, updated_at`

func scanLocation(row pgx.Row) (*Location, error) {
	var l Location
	err := row.Scan(&l.ID, &l.OrganizationID, &l.Name, &l.Address, &l.Phone,
		&l.Active, &l.CreatedAt, &l.UpdatedAt)
	return &l, err
}

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.OrganizationID, &p.Name, &p.Specialty, &p.Email,
		&p.Phone, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func scanService(row pgx.Row) (*MedicalService, error) {
	var s MedicalService
	err := row.Scan(&s.ID, &s.OrganizationID, &s.Name, &s.Description,
		&s.Active, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

// -- Locations --

func (r *repoPG) CreateLocation(ctx context.Context, l *Location) error {
	l.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO locations (id, organization_id, name, address, phone, active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		l.ID, l.OrganizationID, l.Name, l.Address, l.Phone, l.Active)
	return err
}

func (r *repoPG) GetLocation(ctx context.Context, orgID, id uuid.UUID) (*Location, error) {
	l, err := scanLocation(r.conn(ctx).QueryRow(ctx,
		`SELECT `+locationCols+` FROM locations WHERE id = $1 AND organization_id = $2`,
		id, orgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("location")
	}
	return l, err
}

func (r *repoPG) ListLocations(ctx context.Context, orgID uuid.UUID) ([]*Location, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+locationCols+` FROM locations WHERE organization_id = $1 ORDER BY name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

func (r *repoPG) UpdateLocation(ctx context.Context, l *Location) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE locations SET name=$3, address=$4, phone=$5, active=$6, updated_at=NOW()
		WHERE id = $1 AND organization_id = $2`,
		l.ID, l.OrganizationID, l.Name, l.Address, l.Phone, l.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("location")
	}
	return nil
}

func (r *repoPG) DeleteLocation(ctx context.Context, orgID, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM locations WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("location")
	}
	return nil
}

// -- Providers --

func (r *repoPG) CreateProvider(ctx context.Context, p *Provider) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO providers (id, organization_id, name, specialty, email, phone, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.OrganizationID, p.Name, p.Specialty, p.Email, p.Phone, p.Active)
	return err
}

func (r *repoPG) GetProvider(ctx context.Context, orgID, id uuid.UUID) (*Provider, error) {
	p, err := scanProvider(r.conn(ctx).QueryRow(ctx,
		`SELECT `+providerCols+` FROM providers WHERE id = $1 AND organization_id = $2`,
		id, orgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("provider")
	}
	return p, err
}

func (r *repoPG) ListProviders(ctx context.Context, orgID uuid.UUID) ([]*Provider, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+providerCols+` FROM providers WHERE organization_id = $1 ORDER BY name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) UpdateProvider(ctx context.Context, p *Provider) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE providers SET name=$3, specialty=$4, email=$5, phone=$6, active=$7, updated_at=NOW()
		WHERE id = $1 AND organization_id = $2`,
		p.ID, p.OrganizationID, p.Name, p.Specialty, p.Email, p.Phone, p.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("provider")
	}
	return nil
}

func (r *repoPG) DeleteProvider(ctx context.Context, orgID, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM providers WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("provider")
	}
	return nil
}

// -- Medical services --

func (r *repoPG) CreateService(ctx context.Context, s *MedicalService) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_services (id, organization_id, name, description, active)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.OrganizationID, s.Name, s.Description, s.Active)
	return err
}

func (r *repoPG) GetService(ctx context.Context, orgID, id uuid.UUID) (*MedicalService, error) {
	s, err := scanService(r.conn(ctx).QueryRow(ctx,
		`SELECT `+serviceCols+` FROM medical_services WHERE id = $1 AND organization_id = $2`,
		id, orgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("medical service")
	}
	return s, err
}

func (r *repoPG) ListServices(ctx context.Context, orgID uuid.UUID) ([]*MedicalService, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+serviceCols+` FROM medical_services WHERE organization_id = $1 ORDER BY name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*MedicalService{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *repoPG) UpdateService(ctx context.Context, s *MedicalService) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_services SET name=$3, description=$4, active=$5, updated_at=NOW()
		WHERE id = $1 AND organization_id = $2`,
		s.ID, s.OrganizationID, s.Name, s.Description, s.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("medical service")
	}
	return nil
}

func (r *repoPG) DeleteService(ctx context.Context, orgID, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM medical_services WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("medical service")
	}
	return nil
}

// -- Edges --

func (r *repoPG) LinkLocationService(ctx context.Context, locationID, serviceID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO location_services (location_id, service_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`, locationID, serviceID)
	return err
}

func (r *repoPG) UnlinkLocationService(ctx context.Context, locationID, serviceID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM location_services WHERE location_id = $1 AND service_id = $2`,
		locationID, serviceID)
	return err
}

func (r *repoPG) ListLocationServices(ctx context.Context, orgID, locationID uuid.UUID) ([]*MedicalService, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT s.id, s.organization_id, s.name, s.description, s.created_at, s.updated_at
		FROM medical_services s
		JOIN location_services ls ON ls.service_id = s.id
		WHERE ls.location_id = $1 AND s.organization_id = $2
		ORDER BY s.name`, locationID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*MedicalService{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *repoPG) LinkProviderLocation(ctx context.Context, providerID, locationID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO provider_locations (provider_id, location_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`, providerID, locationID)
	return err
}

func (r *repoPG) UnlinkProviderLocation(ctx context.Context, providerID, locationID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM provider_locations WHERE provider_id = $1 AND location_id = $2`,
		providerID, locationID)
	return err
}

func (r *repoPG) ListProviderLocations(ctx context.Context, orgID, providerID uuid.UUID) ([]*Location, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT l.id, l.organization_id, l.name, l.address, l.phone, l.created_at, l.updated_at
		FROM locations l
		JOIN provider_locations pl ON pl.location_id = l.id
		WHERE pl.provider_id = $1 AND l.organization_id = $2
		ORDER BY l.name`, providerID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

func (r *repoPG) LinkProviderService(ctx context.Context, providerID, serviceID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO provider_services (provider_id, service_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`, providerID, serviceID)
	return err
}

func (r *repoPG) UnlinkProviderService(ctx context.Context, providerID, serviceID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM provider_services WHERE provider_id = $1 AND service_id = $2`,
		providerID, serviceID)
	return err
}

func (r *repoPG) ListProviderServices(ctx context.Context, orgID, providerID uuid.UUID) ([]*MedicalService, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT s.id, s.organization_id, s.name, s.description, s.created_at, s.updated_at
		FROM medical_services s
		JOIN provider_services ps ON ps.service_id = s.id
		WHERE ps.provider_id = $1 AND s.organization_id = $2
		ORDER BY s.name`, providerID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*MedicalService{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
