package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/spacelink/internal/model"
)

// PropertyRepo persists rentable listings.
type PropertyRepo struct {
	db *sqlx.DB
}

func NewPropertyRepo(db *sqlx.DB) *PropertyRepo { return &PropertyRepo{db: db} }

// propertyRow mirrors the properties table.  rent_types is stored as a
// comma separated list such as "hourly,monthly".
type propertyRow struct {
	ID          string    `db:"id"`
	OwnerID     string    `db:"owner_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Location    string    `db:"location"`
	Price       float64   `db:"price"`
	RentTypes   string    `db:"rent_types"`
	IsDisabled  bool      `db:"is_disabled"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

const propertyColumns = `id, owner_id, title, description, location, price, rent_types, is_disabled, created_at, updated_at`

func (row propertyRow) toModel() *model.Property {
	p := &model.Property{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		Title:       row.Title,
		Description: row.Description,
		Location:    row.Location,
		Price:       row.Price,
		RentTypes:   []model.BookingType{},
		IsDisabled:  row.IsDisabled,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	for _, t := range strings.Split(row.RentTypes, ",") {
		if t = strings.TrimSpace(t); t != "" {
			p.RentTypes = append(p.RentTypes, model.BookingType(t))
		}
	}
	return p
}

func joinRentTypes(types []model.BookingType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

// Create inserts p, filling in its id and timestamps.
func (r *PropertyRepo) Create(ctx context.Context, p *model.Property) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO properties (`+propertyColumns+`)
		 VALUES (:id, :owner_id, :title, :description, :location, :price, :rent_types, :is_disabled, :created_at, :updated_at)`,
		propertyRow{
			ID:          p.ID,
			OwnerID:     p.OwnerID,
			Title:       p.Title,
			Description: p.Description,
			Location:    p.Location,
			Price:       p.Price,
			RentTypes:   joinRentTypes(p.RentTypes),
			IsDisabled:  p.IsDisabled,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	return err
}

// GetByID fetches a property whether or not it is disabled.
func (r *PropertyRepo) GetByID(ctx context.Context, id string) (*model.Property, error) {
	var row propertyRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+propertyColumns+` FROM properties WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

// List returns enabled properties, newest first.
func (r *PropertyRepo) List(ctx context.Context, limit, offset int) ([]model.Property, error) {
	return r.selectMany(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE is_disabled = FALSE ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset)
}

// ListByOwner returns every property the owner lists, disabled ones included.
func (r *PropertyRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Property, error) {
	return r.selectMany(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
}

func (r *PropertyRepo) selectMany(ctx context.Context, q string, args ...any) ([]model.Property, error) {
	var rows []propertyRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]model.Property, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.toModel())
	}
	return out, nil
}

// SetDisabled toggles whether new bookings may be placed on the property.
func (r *PropertyRepo) SetDisabled(ctx context.Context, id string, disabled bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE properties SET is_disabled = ?, updated_at = ? WHERE id = ?`,
		disabled, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return err
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT COUNT(*) FROM properties WHERE id = ?`, id); err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	return nil
}
