package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/revizorapp/revizor/dbopen"
	"github.com/revizorapp/revizor/reviewpipe"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	return New(db, DefaultConfig(), nil)
}

func addTestProduct(t *testing.T, svc *Service, userID, name string) *Product {
	t.Helper()
	p, err := svc.AddProduct(context.Background(), userID, &Product{Name: name})
	if err != nil {
		t.Fatalf("add product: %v", err)
	}
	return p
}

func TestAddProduct_Validation(t *testing.T) {
	// WHAT: A product without a name is rejected with ErrInvalidInput.
	// WHY: The handler maps this sentinel to 400; it must survive wrapping.
	svc := newTestService(t)
	_, err := svc.AddProduct(context.Background(), "usr-1", &Product{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestProductLifecycle(t *testing.T) {
	// WHAT: Create, partial update, then delete a product.
	// WHY: Update merges unset fields from the stored record.
	svc := newTestService(t)
	ctx := context.Background()

	p := addTestProduct(t, svc, "usr-1", "Кофеварка")
	if !strings.HasPrefix(p.ID, "prd_") {
		t.Errorf("product ID prefix: %q", p.ID)
	}

	updated, err := svc.UpdateProduct(ctx, "usr-1", &Product{ID: p.ID, EAN: "4600000000017"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Кофеварка" || updated.EAN != "4600000000017" {
		t.Errorf("merge: %+v", updated)
	}

	if err := svc.DeleteProduct(ctx, "usr-1", p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetProduct(ctx, "usr-1", p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete: got %v, want ErrNotFound", err)
	}
}

func TestProductOwnership(t *testing.T) {
	// WHAT: A user cannot read or delete another user's product.
	svc := newTestService(t)
	ctx := context.Background()

	p := addTestProduct(t, svc, "usr-1", "Товар")
	if _, err := svc.GetProduct(ctx, "usr-2", p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign get: got %v, want ErrNotFound", err)
	}
	if err := svc.DeleteProduct(ctx, "usr-2", p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign delete: got %v, want ErrNotFound", err)
	}
}

func TestImportReviews_CSV(t *testing.T) {
	// WHAT: A clean CSV file imports fully: records persisted, counters
	// filled, status "success".
	svc := newTestService(t)
	ctx := context.Background()
	p := addTestProduct(t, svc, "usr-1", "Товар")

	csv := "source,text,rating,max_rating\n" +
		"Ozon,Отличный товар,4.5,5\n" +
		"Wildberries,Так себе,3,5\n"
	res, err := svc.ImportReviews(ctx, "usr-1", p.ID, "reviews.csv", []byte(csv))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Status != "success" {
		t.Errorf("status: %q", res.Status)
	}
	if res.SuccessCount != 2 || res.TotalRows != 2 || res.EmptyRows != 0 || len(res.Errors) != 0 {
		t.Errorf("counts: %+v", res)
	}
	if res.Total != 2 {
		t.Errorf("total after import: %d", res.Total)
	}
	if len(res.Items) != 2 || !strings.HasPrefix(res.Items[0].ID, "rev_") {
		t.Fatalf("items: %v", res.Items)
	}
	if res.Items[0].NormalizedRating != 90 {
		t.Errorf("normalized: %d", res.Items[0].NormalizedRating)
	}

	// Records really hit the store.
	reviews, err := svc.ListReviews(ctx, "usr-1", p.ID, ReviewFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reviews) != 2 {
		t.Errorf("persisted: %d", len(reviews))
	}
}

func TestImportReviews_Partial(t *testing.T) {
	// WHAT: A file with one bad row imports the good rows and reports
	// status "partial" with a rendered row error.
	svc := newTestService(t)
	ctx := context.Background()
	p := addTestProduct(t, svc, "usr-1", "Товар")

	data := `[
		{"text": "хороший", "rating": 5, "max_rating": 5},
		{"text": "плохой", "importance": 0, "rating": 1, "max_rating": 5}
	]`
	res, err := svc.ImportReviews(ctx, "usr-1", p.ID, "reviews.json", []byte(data))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Status != "partial" {
		t.Errorf("status: %q", res.Status)
	}
	if res.SuccessCount != 1 || res.TotalRows != 2 || len(res.Errors) != 1 {
		t.Errorf("counts: %+v", res)
	}
	if !strings.Contains(res.Errors[0], "Строка #2") {
		t.Errorf("error text: %q", res.Errors[0])
	}
}

func TestImportReviews_BadFormat(t *testing.T) {
	// WHAT: An unsupported extension yields status "error", zero inserts
	// and no change to the product's review total.
	svc := newTestService(t)
	ctx := context.Background()
	p := addTestProduct(t, svc, "usr-1", "Товар")

	res, err := svc.ImportReviews(ctx, "usr-1", p.ID, "reviews.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Status != "error" || res.SuccessCount != 0 || res.Total != 0 {
		t.Errorf("got %+v", res)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], ".json, .csv или .xlsx") {
		t.Errorf("errors: %v", res.Errors)
	}
}

func TestImportReviews_ProductNotFound(t *testing.T) {
	// WHAT: Importing into a missing product fails before any parsing.
	svc := newTestService(t)
	_, err := svc.ImportReviews(context.Background(), "usr-1", "prd_missing", "r.csv", []byte("text\nx\n"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestAddReview_SingleRow(t *testing.T) {
	// WHAT: Manual review entry passes through the same normalizer as
	// bulk import: "4,7 из 5" resolves into numeric fields.
	svc := newTestService(t)
	ctx := context.Background()
	p := addTestProduct(t, svc, "usr-1", "Товар")

	row := reviewpipe.NewRawRow()
	row.Set("text", "Норм")
	row.Set("raw_rating", "4,7 из 5")
	rec, err := svc.AddReview(ctx, "usr-1", p.ID, row)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if rec.Rating == nil || *rec.Rating != 4.7 || rec.NormalizedRating != 94 {
		t.Errorf("got %+v", rec)
	}
}

func TestAddReview_Invalid(t *testing.T) {
	// WHAT: A row failing validation surfaces ErrInvalidInput with the
	// rendered Russian message.
	svc := newTestService(t)
	ctx := context.Background()
	p := addTestProduct(t, svc, "usr-1", "Товар")

	row := reviewpipe.NewRawRow()
	row.Set("text", "x")
	row.Set("importance", 0)
	_, err := svc.AddReview(ctx, "usr-1", p.ID, row)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
	if !strings.Contains(err.Error(), "importance") {
		t.Errorf("message: %v", err)
	}
}

func TestUpdateAndDeleteReview(t *testing.T) {
	// WHAT: Update replaces fields, keeps identity; delete of a foreign
	// or missing review is ErrNotFound.
	svc := newTestService(t)
	ctx := context.Background()
	p := addTestProduct(t, svc, "usr-1", "Товар")

	row := reviewpipe.NewRawRow()
	row.Set("text", "было")
	rec, err := svc.AddReview(ctx, "usr-1", p.ID, row)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	upd := reviewpipe.NewRawRow()
	upd.Set("text", "стало")
	upd.Set("rating", 5)
	upd.Set("max_rating", 5)
	rec2, err := svc.UpdateReview(ctx, "usr-1", rec.ID, upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if rec2.ID != rec.ID || *rec2.Text != "стало" || rec2.NormalizedRating != 100 {
		t.Errorf("got %+v", rec2)
	}

	if err := svc.DeleteReview(ctx, "usr-2", rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign delete: got %v", err)
	}
	if err := svc.DeleteReview(ctx, "usr-1", rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteReview(ctx, "usr-1", rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v", err)
	}
}

func TestClearReviews(t *testing.T) {
	// WHAT: ClearReviews removes all of the user's reviews on a product.
	svc := newTestService(t)
	ctx := context.Background()
	p := addTestProduct(t, svc, "usr-1", "Товар")

	csv := "text\nодин\nдва\nтри\n"
	if _, err := svc.ImportReviews(ctx, "usr-1", p.ID, "r.csv", []byte(csv)); err != nil {
		t.Fatalf("import: %v", err)
	}
	n, err := svc.ClearReviews(ctx, "usr-1", p.ID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 3 {
		t.Errorf("deleted: %d", n)
	}
}

func TestDirectory_PromptRequiresText(t *testing.T) {
	// WHAT: Prompts need text; brands and categories do not.
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddDirectory(ctx, "prompts", "usr-1", &Directory{Name: "Сводка"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("prompt without text: got %v", err)
	}
	b, err := svc.AddDirectory(ctx, "brands", "usr-1", &Directory{Name: "Bosch"})
	if err != nil {
		t.Fatalf("brand: %v", err)
	}
	if !strings.HasPrefix(b.ID, "brd_") {
		t.Errorf("brand ID prefix: %q", b.ID)
	}
}

func TestDirectory_UpdateOwnership(t *testing.T) {
	// WHAT: Updating or deleting another user's directory entry is
	// ErrNotFound, never a silent write.
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.AddDirectory(ctx, "categories", "usr-1", &Directory{Name: "Техника"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.UpdateDirectory(ctx, "categories", "usr-2", &Directory{ID: c.ID, Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign update: got %v", err)
	}
	if err := svc.DeleteDirectory(ctx, "categories", "usr-2", c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign delete: got %v", err)
	}
	if err := svc.DeleteDirectory(ctx, "categories", "usr-1", c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
