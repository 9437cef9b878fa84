package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/petspot/petspot-backend/internal/announcement/domain"
	"github.com/petspot/petspot-backend/pkg/database"
	"github.com/petspot/petspot-backend/pkg/errors"
)

// Schema holds the DDL for the announcements table, applied at startup
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS announcements (
		id UUID PRIMARY KEY,
		pet_name VARCHAR(100),
		species VARCHAR(20) NOT NULL,
		breed VARCHAR(100),
		sex VARCHAR(10) NOT NULL,
		age INTEGER,
		description TEXT,
		microchip_number VARCHAR(15),
		location_latitude DOUBLE PRECISION NOT NULL,
		location_longitude DOUBLE PRECISION NOT NULL,
		email VARCHAR(254),
		phone VARCHAR(32),
		photo_url TEXT,
		last_seen_date DATE NOT NULL,
		status VARCHAR(10) NOT NULL,
		reward VARCHAR(120),
		management_password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT announcements_status_valid CHECK (status IN ('MISSING', 'FOUND')),
		CONSTRAINT announcements_sex_valid CHECK (sex IN ('MALE', 'FEMALE', 'UNKNOWN')),
		CONSTRAINT announcements_latitude_range CHECK (location_latitude BETWEEN -90 AND 90),
		CONSTRAINT announcements_longitude_range CHECK (location_longitude BETWEEN -180 AND 180)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS announcements_microchip_number_key
		ON announcements (microchip_number)
		WHERE microchip_number IS NOT NULL AND microchip_number <> ''`,
	`CREATE INDEX IF NOT EXISTS announcements_created_at_idx ON announcements (created_at DESC)`,
}

const selectColumns = `
	id, pet_name, species, breed, sex, age, description, microchip_number,
	location_latitude, location_longitude, email, phone, photo_url,
	to_char(last_seen_date, 'YYYY-MM-DD') AS last_seen_date, status, reward,
	management_password_hash, created_at, updated_at`

// AnnouncementRepository handles announcement persistence
type AnnouncementRepository struct {
	db *database.DB
}

// NewAnnouncementRepository creates a new announcement repository
func NewAnnouncementRepository(db *database.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// Create inserts a new announcement. A duplicate microchip number is reported
// as DUPLICATE_MICROCHIP.
func (r *AnnouncementRepository) Create(ctx context.Context, a *domain.Announcement) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	query := `
		INSERT INTO announcements (
			id, pet_name, species, breed, sex, age, description, microchip_number,
			location_latitude, location_longitude, email, phone, photo_url,
			last_seen_date, status, reward, management_password_hash
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		a.ID,
		a.PetName,
		a.Species,
		a.Breed,
		a.Sex,
		a.Age,
		a.Description,
		a.MicrochipNumber,
		a.LocationLatitude,
		a.LocationLongitude,
		a.Email,
		a.Phone,
		a.PhotoURL,
		a.LastSeenDate,
		a.Status,
		a.Reward,
		a.ManagementPasswordHash,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return fmt.Errorf("insert announcement: %w", err)
	}

	return nil
}

// GetByID gets an announcement by ID
func (r *AnnouncementRepository) GetByID(ctx context.Context, id string) (*domain.Announcement, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.NotFound("announcement")
	}

	var a domain.Announcement
	query := `SELECT ` + selectColumns + ` FROM announcements WHERE id = $1`
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("announcement")
		}
		return nil, fmt.Errorf("get announcement: %w", err)
	}

	return &a, nil
}

// List returns announcements newest first, optionally filtered by status
func (r *AnnouncementRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Announcement, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + selectColumns + ` FROM announcements`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	announcements := make([]*domain.Announcement, 0)
	if err := r.db.SelectContext(ctx, &announcements, query, args...); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}

	return announcements, nil
}

// UpdatePhotoURL records the stored photo location
func (r *AnnouncementRepository) UpdatePhotoURL(ctx context.Context, id, photoURL string) error {
	query := `UPDATE announcements SET photo_url = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, photoURL)
	if err != nil {
		return fmt.Errorf("update photo url: %w", err)
	}

	return requireAffected(result)
}

// Delete removes an announcement
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.NotFound("announcement")
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}

	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("announcement")
	}
	return nil
}
