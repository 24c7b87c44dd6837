package store

// Schema is the complete catalog schema, idempotent so it can run on
// every start (dbopen.WithSchema). All timestamps are Unix
// milliseconds. user_id columns carry the opaque ID supplied by the
// embedding application; the store does not manage accounts.
const Schema = `
-- Directory entities
CREATE TABLE IF NOT EXISTS brands (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    user_id    TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_brands_user ON brands(user_id);

CREATE TABLE IF NOT EXISTS categories (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    user_id    TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_categories_user ON categories(user_id);

-- Prompts used when sending review batches to the analysis service
CREATE TABLE IF NOT EXISTS prompts (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    text       TEXT NOT NULL DEFAULT '',
    user_id    TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_prompts_user ON prompts(user_id);

-- Products
CREATE TABLE IF NOT EXISTS products (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL DEFAULT '',
    description     TEXT NOT NULL DEFAULT '',
    ean             TEXT NOT NULL DEFAULT '',
    upc             TEXT NOT NULL DEFAULT '',
    brand_id        TEXT REFERENCES brands(id) ON DELETE SET NULL,
    category_id     TEXT REFERENCES categories(id) ON DELETE SET NULL,
    prompt_id       TEXT REFERENCES prompts(id) ON DELETE SET NULL,
    analysis_result TEXT NOT NULL DEFAULT '',
    user_id         TEXT NOT NULL DEFAULT '',
    created_at      INTEGER NOT NULL,
    updated_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_user ON products(user_id);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);
CREATE INDEX IF NOT EXISTS idx_products_brand ON products(brand_id);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);

-- Imported reviews. Nullable columns mirror the pipeline's optional
-- fields: NULL means the source file carried no value.
CREATE TABLE IF NOT EXISTS reviews (
    id                TEXT PRIMARY KEY,
    product_id        TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    user_id           TEXT NOT NULL DEFAULT '',
    importance        INTEGER,
    source            TEXT,
    text              TEXT,
    advantages        TEXT,
    disadvantages     TEXT,
    raw_rating        TEXT,
    rating            REAL,
    max_rating        REAL,
    normalized_rating INTEGER NOT NULL DEFAULT 0,
    created_at        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reviews_product ON reviews(product_id);
CREATE INDEX IF NOT EXISTS idx_reviews_rating ON reviews(normalized_rating);
`
