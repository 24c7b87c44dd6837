package store

// Product is a curated product with optional taxonomy links.
type Product struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	EAN            string  `json:"ean"`
	UPC            string  `json:"upc"`
	BrandID        *string `json:"brand_id"`
	CategoryID     *string `json:"category_id"`
	PromptID       *string `json:"prompt_id"`
	AnalysisResult string  `json:"analysis_result"`
	UserID         string  `json:"user_id"`
	CreatedAt      int64   `json:"created_at"`
	UpdatedAt      int64   `json:"updated_at"`
}

// Directory is a named taxonomy entry (brand, category or prompt).
// Prompts additionally carry the prompt text.
type Directory struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Text      string `json:"text,omitempty"`
	UserID    string `json:"user_id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// Review is a persisted review record. Pointer fields are NULL in the
// database when the imported row carried no value.
type Review struct {
	ID               string   `json:"id"`
	ProductID        string   `json:"product_id"`
	UserID           string   `json:"user_id"`
	Importance       *int     `json:"importance"`
	Source           *string  `json:"source"`
	Text             *string  `json:"text"`
	Advantages       *string  `json:"advantages"`
	Disadvantages    *string  `json:"disadvantages"`
	RawRating        *string  `json:"raw_rating"`
	Rating           *float64 `json:"rating"`
	MaxRating        *float64 `json:"max_rating"`
	NormalizedRating int      `json:"normalized_rating"`
	CreatedAt        int64    `json:"created_at"`
}

// ProductFilter narrows, orders and pages a product listing.
// Zero values mean "no constraint".
type ProductFilter struct {
	Name       string // substring match
	EAN        string // substring match
	UPC        string // substring match
	BrandID    string
	CategoryID string
	SortBy     string // whitelisted column, default "created_at"
	SortDir    string // "asc" or "desc", default "desc"
	Page       int    // 1-based
	Limit      int
}

// ReviewFilter narrows a per-product review listing.
type ReviewFilter struct {
	Importance    int    // exact match when > 0
	Source        string // substring match
	Text          string // substring match
	Advantages    string // substring match
	Disadvantages string // substring match
	RatingMin     int    // normalized_rating lower bound when > 0
	RatingMax     int    // normalized_rating upper bound when > 0
}
