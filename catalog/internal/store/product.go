package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/revizorapp/revizor/dbopen"
)

const productColumns = `id, name, description, ean, upc, brand_id, category_id,
	prompt_id, analysis_result, user_id, created_at, updated_at`

// productSortColumns whitelists sort_by values. Anything else falls
// back to created_at rather than interpolating user input into SQL.
var productSortColumns = map[string]string{
	"name":       "name",
	"ean":        "ean",
	"upc":        "upc",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// InsertProduct adds a new product.
func (s *Store) InsertProduct(ctx context.Context, p *Product) error {
	now := time.Now().UnixMilli()
	if p.CreatedAt == 0 {
		p.CreatedAt = now
	}
	if p.UpdatedAt == 0 {
		p.UpdatedAt = now
	}
	_, err := dbopen.Exec(ctx, s.DB,
		`INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.EAN, p.UPC, p.BrandID, p.CategoryID,
		p.PromptID, p.AnalysisResult, p.UserID, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetProduct retrieves a product by ID, optionally scoped to a user.
// An empty userID skips the ownership check.
func (s *Store) GetProduct(ctx context.Context, id, userID string) (*Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = ?`
	args := []any{id}
	if userID != "" {
		q += ` AND user_id = ?`
		args = append(args, userID)
	}
	return scanProduct(s.DB.QueryRowContext(ctx, q, args...))
}

// UpdateProduct updates a product's mutable fields.
func (s *Store) UpdateProduct(ctx context.Context, p *Product) error {
	p.UpdatedAt = time.Now().UnixMilli()
	_, err := dbopen.Exec(ctx, s.DB,
		`UPDATE products SET name=?, description=?, ean=?, upc=?, brand_id=?,
		category_id=?, prompt_id=?, analysis_result=?, updated_at=?
		WHERE id=?`,
		p.Name, p.Description, p.EAN, p.UPC, p.BrandID,
		p.CategoryID, p.PromptID, p.AnalysisResult, p.UpdatedAt, p.ID,
	)
	return err
}

// DeleteProduct removes a product (cascades to its reviews).
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	_, err := dbopen.Exec(ctx, s.DB, `DELETE FROM products WHERE id = ?`, id)
	return err
}

// ListProducts returns one page of products matching the filter plus
// the total match count for pagination. An empty userID lists across
// all users.
func (s *Store) ListProducts(ctx context.Context, userID string, f ProductFilter) ([]*Product, int, error) {
	var where []string
	var args []any

	if userID != "" {
		where = append(where, "user_id = ?")
		args = append(args, userID)
	}
	if f.Name != "" {
		where = append(where, "name LIKE ? COLLATE NOCASE")
		args = append(args, "%"+f.Name+"%")
	}
	if f.EAN != "" {
		where = append(where, "ean LIKE ?")
		args = append(args, "%"+f.EAN+"%")
	}
	if f.UPC != "" {
		where = append(where, "upc LIKE ?")
		args = append(args, "%"+f.UPC+"%")
	}
	if f.BrandID != "" {
		where = append(where, "brand_id = ?")
		args = append(args, f.BrandID)
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol, ok := productSortColumns[f.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortDir, "asc") {
		dir = "ASC"
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	q := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s %s LIMIT ? OFFSET ?`,
		productColumns, cond, sortCol, dir)
	rows, err := s.DB.QueryContext(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProductRows(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func scanProduct(row *sql.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.EAN, &p.UPC,
		&p.BrandID, &p.CategoryID, &p.PromptID, &p.AnalysisResult,
		&p.UserID, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProductRows(rows *sql.Rows) (*Product, error) {
	var p Product
	err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.EAN, &p.UPC,
		&p.BrandID, &p.CategoryID, &p.PromptID, &p.AnalysisResult,
		&p.UserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
