package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// ProductRepo reads and seeds the concession catalogue.
type ProductRepo struct{ db *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

// CreateTx inserts p and fills in its ID.
func (r *ProductRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Product) error {
	res, err := tx.ExecContext(ctx, "INSERT INTO products (name, type, price_cents) VALUES (?, ?, ?)",
		p.Name, string(p.Type), model.ToCents(p.Price))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// List returns every product, snacks and drinks grouped, by name.
func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, type, price_cents FROM products ORDER BY type, name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Product, 0)
	for rows.Next() {
		var (
			p     model.Product
			typ   string
			cents int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &typ, &cents); err != nil {
			return nil, err
		}
		p.Type = model.ProductType(typ)
		p.Price = model.FromCents(cents)
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID fetches one product.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (*model.Product, error) {
	var (
		p     model.Product
		typ   string
		cents int64
	)
	err := r.db.QueryRowContext(ctx, "SELECT id, name, type, price_cents FROM products WHERE id = ?", id).
		Scan(&p.ID, &p.Name, &typ, &cents)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	p.Type = model.ProductType(typ)
	p.Price = model.FromCents(cents)
	return &p, nil
}
