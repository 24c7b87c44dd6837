package catalog

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/revizorapp/revizor/reviewpipe"
)

// userIDHeader carries the acting user's identity, supplied by the
// fronting auth layer. The service treats it as an opaque value.
const userIDHeader = "X-User-ID"

// Routes returns the service's HTTP API as a chi router, mountable
// under the server root.
func (svc *Service) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requireUser)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", svc.handleListProducts)
		r.Post("/", svc.handleAddProduct)
		r.Route("/{productID}", func(r chi.Router) {
			r.Get("/", svc.handleGetProduct)
			r.Put("/", svc.handleUpdateProduct)
			r.Delete("/", svc.handleDeleteProduct)
			r.Get("/reviews", svc.handleListReviews)
			r.Post("/reviews", svc.handleAddReview)
			r.Delete("/reviews", svc.handleClearReviews)
			r.Post("/reviews/import", svc.handleImportReviews)
		})
	})

	r.Put("/api/reviews/{reviewID}", svc.handleUpdateReview)
	r.Delete("/api/reviews/{reviewID}", svc.handleDeleteReview)

	for _, kind := range []string{"brands", "categories", "prompts"} {
		kind := kind
		r.Route("/api/"+kind, func(r chi.Router) {
			r.Get("/", svc.handleListDirectory(kind))
			r.Post("/", svc.handleAddDirectory(kind))
			r.Put("/{id}", svc.handleUpdateDirectory(kind))
			r.Delete("/{id}", svc.handleDeleteDirectory(kind))
		})
	}

	return r
}

// requireUser rejects requests without a user identity header.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(userIDHeader) == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "заголовок X-User-ID обязателен"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userID(r *http.Request) string {
	return r.Header.Get(userIDHeader)
}

// --- Products ---

func (svc *Service) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ProductFilter{
		Name:       q.Get("name"),
		EAN:        q.Get("ean"),
		UPC:        q.Get("upc"),
		BrandID:    q.Get("brand_id"),
		CategoryID: q.Get("category_id"),
		SortBy:     q.Get("sort_by"),
		SortDir:    q.Get("sort_dir"),
		Page:       queryInt(r, "page", 1),
		Limit:      queryInt(r, "limit", 0),
	}
	page, err := svc.ListProducts(r.Context(), userID(r), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (svc *Service) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var p Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := svc.AddProduct(r.Context(), userID(r), &p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (svc *Service) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := svc.GetProduct(r.Context(), userID(r), chi.URLParam(r, "productID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (svc *Service) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var p Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p.ID = chi.URLParam(r, "productID")
	updated, err := svc.UpdateProduct(r.Context(), userID(r), &p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (svc *Service) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := svc.DeleteProduct(r.Context(), userID(r), chi.URLParam(r, "productID")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Reviews ---

func (svc *Service) handleListReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ReviewFilter{
		Importance:    queryInt(r, "importance", 0),
		Source:        q.Get("source"),
		Text:          q.Get("text"),
		Advantages:    q.Get("advantages"),
		Disadvantages: q.Get("disadvantages"),
		RatingMin:     queryInt(r, "rating_min", 0),
		RatingMax:     queryInt(r, "rating_max", 0),
	}
	reviews, err := svc.ListReviews(r.Context(), userID(r), chi.URLParam(r, "productID"), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (svc *Service) handleAddReview(w http.ResponseWriter, r *http.Request) {
	raw, ok := readRawRow(w, r)
	if !ok {
		return
	}
	rec, err := svc.AddReview(r.Context(), userID(r), chi.URLParam(r, "productID"), raw)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (svc *Service) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	raw, ok := readRawRow(w, r)
	if !ok {
		return
	}
	rec, err := svc.UpdateReview(r.Context(), userID(r), chi.URLParam(r, "reviewID"), raw)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (svc *Service) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := svc.DeleteReview(r.Context(), userID(r), chi.URLParam(r, "reviewID")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (svc *Service) handleClearReviews(w http.ResponseWriter, r *http.Request) {
	n, err := svc.ClearReviews(r.Context(), userID(r), chi.URLParam(r, "productID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "cleared", "deleted": n})
}

// handleImportReviews accepts a multipart upload ("file" part) and runs
// the bulk ingestion pipeline. Row errors come back in the response
// body rather than failing the request: a 200 with status "partial" or
// "error" is still a completed import attempt.
func (svc *Service) handleImportReviews(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(svc.config.MaxUploadBytes()); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "файл не передан (поле 'file')"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, svc.config.MaxUploadBytes()+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := svc.ImportReviews(r.Context(), userID(r), chi.URLParam(r, "productID"), header.Filename, data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- Directories ---

func (svc *Service) handleListDirectory(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.ListDirectory(r.Context(), kind, userID(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func (svc *Service) handleAddDirectory(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var d Directory
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		created, err := svc.AddDirectory(r.Context(), kind, userID(r), &d)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func (svc *Service) handleUpdateDirectory(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var d Directory
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		d.ID = chi.URLParam(r, "id")
		updated, err := svc.UpdateDirectory(r.Context(), kind, userID(r), &d)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (svc *Service) handleDeleteDirectory(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteDirectory(r.Context(), kind, userID(r), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// --- Helpers ---

// readRawRow decodes the request body as one flat JSON object,
// preserving key order for error rendering.
func readRawRow(w http.ResponseWriter, r *http.Request) (reviewpipe.RawRow, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return reviewpipe.RawRow{}, false
	}
	raw, err := reviewpipe.RowFromJSON(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return reviewpipe.RawRow{}, false
	}
	return raw, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// writeServiceError maps service sentinels onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
