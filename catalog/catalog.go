// Package catalog is the product-review management service: products,
// brands, categories, prompts, and per-product reviews, with bulk review
// import through the reviewpipe ingestion pipeline.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/revizorapp/revizor/catalog/internal/store"
	"github.com/revizorapp/revizor/idgen"
	"github.com/revizorapp/revizor/reviewpipe"
)

// Re-exported store types: the store package is internal, these are the
// service's public data shapes.
type (
	Product       = store.Product
	Directory     = store.Directory
	Review        = store.Review
	ProductFilter = store.ProductFilter
	ReviewFilter  = store.ReviewFilter
)

// ProductPage is one page of a filtered product listing.
type ProductPage struct {
	Items []*Product `json:"items"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

// ImportResult is the outcome of one bulk review import, shaped for the
// upload UI: inserted records, batch counters, rendered row errors and
// the product's review total after the import.
type ImportResult struct {
	Status       string    `json:"status"`
	Items        []*Review `json:"items"`
	SuccessCount int       `json:"success_count"`
	TotalRows    int       `json:"total_rows"`
	EmptyRows    int       `json:"empty_rows"`
	Errors       []string  `json:"errors"`
	Total        int       `json:"total"`
}

// Service is the main catalog orchestrator.
type Service struct {
	store  *store.Store
	pipe   *reviewpipe.Pipeline
	logger *slog.Logger
	config *Config

	newProductID  func() string
	newReviewID   func() string
	newBrandID    func() string
	newCategoryID func() string
	newPromptID   func() string
	now           func() int64
}

// Schema is the catalog's SQL schema; pass it to dbopen.WithSchema
// when opening the database.
const Schema = store.Schema

// New creates a catalog Service over an open database with the schema
// already applied.
func New(db *sql.DB, cfg *Config, logger *slog.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store: store.NewStore(db),
		pipe: reviewpipe.New(reviewpipe.Config{
			MaxFileSize: cfg.MaxUploadBytes(),
			Logger:      logger,
		}),
		logger:        logger,
		config:        cfg,
		newProductID:  idgen.Prefixed("prd_", idgen.Default),
		newReviewID:   idgen.Prefixed("rev_", idgen.Default),
		newBrandID:    idgen.Prefixed("brd_", idgen.Default),
		newCategoryID: idgen.Prefixed("cat_", idgen.Default),
		newPromptID:   idgen.Prefixed("prm_", idgen.Default),
		now:           func() int64 { return time.Now().UnixMilli() },
	}
}

// --- Products ---

// AddProduct validates and inserts a new product for a user.
func (svc *Service) AddProduct(ctx context.Context, userID string, p *Product) (*Product, error) {
	if err := validateProductInput(p); err != nil {
		return nil, err
	}
	p.ID = svc.newProductID()
	p.UserID = userID
	p.CreatedAt = svc.now()
	p.UpdatedAt = p.CreatedAt
	if err := svc.store.InsertProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	svc.logger.Info("product created", "product_id", p.ID, "user_id", userID)
	return p, nil
}

// GetProduct returns a user's product by ID.
func (svc *Service) GetProduct(ctx context.Context, userID, id string) (*Product, error) {
	p, err := svc.store.GetProduct(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return p, nil
}

// UpdateProduct updates a product's mutable fields. Unset fields keep
// their stored values.
func (svc *Service) UpdateProduct(ctx context.Context, userID string, p *Product) (*Product, error) {
	existing, err := svc.GetProduct(ctx, userID, p.ID)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = existing.Name
	}
	if p.Description == "" {
		p.Description = existing.Description
	}
	if p.EAN == "" {
		p.EAN = existing.EAN
	}
	if p.UPC == "" {
		p.UPC = existing.UPC
	}
	if p.BrandID == nil {
		p.BrandID = existing.BrandID
	}
	if p.CategoryID == nil {
		p.CategoryID = existing.CategoryID
	}
	if p.PromptID == nil {
		p.PromptID = existing.PromptID
	}
	if p.AnalysisResult == "" {
		p.AnalysisResult = existing.AnalysisResult
	}
	if err := validateProductInput(p); err != nil {
		return nil, err
	}
	p.UserID = existing.UserID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = svc.now()
	if err := svc.store.UpdateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// DeleteProduct removes a product and, by cascade, its reviews.
func (svc *Service) DeleteProduct(ctx context.Context, userID, id string) error {
	if _, err := svc.GetProduct(ctx, userID, id); err != nil {
		return err
	}
	if err := svc.store.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	svc.logger.Info("product deleted", "product_id", id, "user_id", userID)
	return nil
}

// ListProducts returns a filtered, sorted, paginated product listing.
func (svc *Service) ListProducts(ctx context.Context, userID string, f ProductFilter) (*ProductPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = svc.config.DefaultPageSize
	}
	items, total, err := svc.store.ListProducts(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if items == nil {
		items = []*Product{}
	}
	return &ProductPage{Items: items, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// --- Reviews ---

// ListReviews returns a product's reviews matching the filter.
func (svc *Service) ListReviews(ctx context.Context, userID, productID string, f ReviewFilter) ([]*Review, error) {
	if _, err := svc.GetProduct(ctx, userID, productID); err != nil {
		return nil, err
	}
	reviews, err := svc.store.ListReviews(ctx, productID, f)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []*Review{}
	}
	return reviews, nil
}

// AddReview normalizes and validates a single review row and inserts it.
// The raw row goes through the same pipeline as bulk import so manual
// entry and file upload agree on coercion and bounds.
func (svc *Service) AddReview(ctx context.Context, userID, productID string, raw reviewpipe.RawRow) (*Review, error) {
	if _, err := svc.GetProduct(ctx, userID, productID); err != nil {
		return nil, err
	}
	rev, rowErrs := svc.pipe.ProcessRow(1, raw)
	if len(rowErrs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, rowErrs[0].Render())
	}
	rec := svc.toRecord(rev, productID, userID)
	if err := svc.store.InsertReview(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}
	return rec, nil
}

// UpdateReview replaces a review's fields after re-running normalization
// and validation on the submitted row.
func (svc *Service) UpdateReview(ctx context.Context, userID, reviewID string, raw reviewpipe.RawRow) (*Review, error) {
	existing, err := svc.store.GetReview(ctx, reviewID, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: review %s", ErrNotFound, reviewID)
	}
	rev, rowErrs := svc.pipe.ProcessRow(1, raw)
	if len(rowErrs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, rowErrs[0].Render())
	}
	rec := svc.toRecord(rev, existing.ProductID, existing.UserID)
	rec.ID = existing.ID
	rec.CreatedAt = existing.CreatedAt
	if err := svc.store.UpdateReview(ctx, rec); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	return rec, nil
}

// DeleteReview removes one review.
func (svc *Service) DeleteReview(ctx context.Context, userID, reviewID string) error {
	ok, err := svc.store.DeleteReview(ctx, reviewID, userID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: review %s", ErrNotFound, reviewID)
	}
	return nil
}

// ClearReviews removes all of a user's reviews on a product and returns
// the number deleted.
func (svc *Service) ClearReviews(ctx context.Context, userID, productID string) (int64, error) {
	if _, err := svc.GetProduct(ctx, userID, productID); err != nil {
		return 0, err
	}
	n, err := svc.store.DeleteProductReviews(ctx, productID, userID)
	if err != nil {
		return 0, fmt.Errorf("clear reviews: %w", err)
	}
	svc.logger.Info("reviews cleared", "product_id", productID, "user_id", userID, "count", n)
	return n, nil
}

// ImportReviews runs a review file through the ingestion pipeline and
// persists every validated row in a single transaction, so a storage
// failure mid-batch leaves no stray rows. Row errors do not abort the
// import;
// a batch-fatal file (bad format, corrupt content) yields zero inserts
// and a single error entry.
func (svc *Service) ImportReviews(ctx context.Context, userID, productID, filename string, data []byte) (*ImportResult, error) {
	if _, err := svc.GetProduct(ctx, userID, productID); err != nil {
		return nil, err
	}

	batch := svc.pipe.Ingest(ctx, filename, data)

	items := make([]*Review, 0, len(batch.Reviews))
	for i := range batch.Reviews {
		items = append(items, svc.toRecord(batch.Reviews[i], productID, userID))
	}
	if err := svc.store.InsertReviews(ctx, items); err != nil {
		return nil, fmt.Errorf("insert reviews: %w", err)
	}

	total, err := svc.store.CountProductReviews(ctx, productID, userID)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	res := &ImportResult{
		Status:       importStatus(batch),
		Items:        items,
		SuccessCount: batch.SuccessCount,
		TotalRows:    batch.TotalRows,
		EmptyRows:    batch.EmptyRows,
		Errors:       batch.Errors,
		Total:        total,
	}
	if res.Errors == nil {
		res.Errors = []string{}
	}
	svc.logger.Info("reviews imported",
		"product_id", productID, "user_id", userID, "filename", filename,
		"success", res.SuccessCount, "total_rows", res.TotalRows,
		"empty", res.EmptyRows, "errors", len(res.Errors))
	return res, nil
}

func importStatus(batch *reviewpipe.BatchResult) string {
	switch {
	case len(batch.Errors) == 0:
		return "success"
	case batch.SuccessCount > 0:
		return "partial"
	default:
		return "error"
	}
}

func (svc *Service) toRecord(rev reviewpipe.Review, productID, userID string) *Review {
	return &Review{
		ID:               svc.newReviewID(),
		ProductID:        productID,
		UserID:           userID,
		Importance:       rev.Importance,
		Source:           rev.Source,
		Text:             rev.Text,
		Advantages:       rev.Advantages,
		Disadvantages:    rev.Disadvantages,
		RawRating:        rev.RawRating,
		Rating:           rev.Rating,
		MaxRating:        rev.MaxRating,
		NormalizedRating: rev.NormalizedRating,
		CreatedAt:        svc.now(),
	}
}

// --- Directories (brands, categories, prompts) ---

func (svc *Service) directoryID(kind string) string {
	switch kind {
	case "brands":
		return svc.newBrandID()
	case "categories":
		return svc.newCategoryID()
	default:
		return svc.newPromptID()
	}
}

// AddDirectory inserts a taxonomy entry of the given kind.
func (svc *Service) AddDirectory(ctx context.Context, kind, userID string, d *Directory) (*Directory, error) {
	if err := validateDirectoryInput(kind, d); err != nil {
		return nil, err
	}
	d.ID = svc.directoryID(kind)
	d.UserID = userID
	d.CreatedAt = svc.now()
	d.UpdatedAt = d.CreatedAt
	if err := svc.store.InsertDirectory(ctx, kind, d); err != nil {
		return nil, fmt.Errorf("insert %s: %w", kind, err)
	}
	return d, nil
}

// ListDirectory returns a user's taxonomy entries of the given kind.
func (svc *Service) ListDirectory(ctx context.Context, kind, userID string) ([]*Directory, error) {
	entries, err := svc.store.ListDirectory(ctx, kind, userID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	if entries == nil {
		entries = []*Directory{}
	}
	return entries, nil
}

// UpdateDirectory updates a taxonomy entry's name (and text, for prompts).
func (svc *Service) UpdateDirectory(ctx context.Context, kind, userID string, d *Directory) (*Directory, error) {
	existing, err := svc.store.GetDirectory(ctx, kind, d.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil || (userID != "" && existing.UserID != userID) {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, d.ID)
	}
	if d.Name == "" {
		d.Name = existing.Name
	}
	if d.Text == "" {
		d.Text = existing.Text
	}
	if err := validateDirectoryInput(kind, d); err != nil {
		return nil, err
	}
	d.UserID = existing.UserID
	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = svc.now()
	if err := svc.store.UpdateDirectory(ctx, kind, d); err != nil {
		return nil, fmt.Errorf("update %s: %w", kind, err)
	}
	return d, nil
}

// DeleteDirectory removes a taxonomy entry. Product links to it become
// NULL rather than cascading.
func (svc *Service) DeleteDirectory(ctx context.Context, kind, userID, id string) error {
	existing, err := svc.store.GetDirectory(ctx, kind, id)
	if err != nil {
		return err
	}
	if existing == nil || (userID != "" && existing.UserID != userID) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	if err := svc.store.DeleteDirectory(ctx, kind, id); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return nil
}
