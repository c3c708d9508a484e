package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/taskboard/taskboard/internal/db/models"
)

// OrganizationRepository handles organization database operations.
type OrganizationRepository struct {
	db *sqlx.DB
}

// NewOrganizationRepository creates a new OrganizationRepository.
func NewOrganizationRepository(db *sqlx.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// CreateOrganization inserts a new organization and fills in the generated ID.
func (r *OrganizationRepository) CreateOrganization(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (name)
		VALUES ($1)
		RETURNING id, created_at
	`
	return r.db.QueryRowxContext(ctx, query, org.Name).Scan(&org.ID, &org.CreatedAt)
}

// GetOrganizationByID retrieves an organization by ID. Returns (nil, nil)
// when absent.
func (r *OrganizationRepository) GetOrganizationByID(ctx context.Context, orgID int64) (*models.Organization, error) {
	query := `SELECT id, name, created_at FROM organizations WHERE id = $1`

	org := &models.Organization{}
	err := r.db.GetContext(ctx, org, query, orgID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return org, nil
}

// ListOrganizations retrieves all organizations, oldest first.
func (r *OrganizationRepository) ListOrganizations(ctx context.Context) ([]*models.Organization, error) {
	orgs := make([]*models.Organization, 0)
	err := r.db.SelectContext(ctx, &orgs, `SELECT id, name, created_at FROM organizations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return orgs, nil
}
