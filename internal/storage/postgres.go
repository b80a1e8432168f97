package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/metadata"
)

const (
	DefaultMaxOpenConns    = 10
	DefaultMaxIdleConns    = 2
	DefaultConnMaxLifetime = 5 * time.Minute
	DefaultPingTimeout     = 5 * time.Second
)

// Schema creates the brand table and its child tables. Child rows are
// replaced wholesale on every write, keyed by brand_id.
const Schema = `
CREATE TABLE IF NOT EXISTS brands (
	id                   BIGSERIAL PRIMARY KEY,
	domain               TEXT NOT NULL UNIQUE,
	brand_name           TEXT NOT NULL,
	website_url          TEXT NOT NULL,
	description          TEXT NOT NULL DEFAULT '',
	about                TEXT NOT NULL DEFAULT '',
	total_products       INTEGER NOT NULL DEFAULT 0,
	extraction_success   BOOLEAN NOT NULL DEFAULT FALSE,
	extraction_timestamp TIMESTAMPTZ NOT NULL,
	fingerprint          TEXT NOT NULL DEFAULT '',
	warnings             TEXT[] NOT NULL DEFAULT '{}',
	field_report         JSONB NOT NULL DEFAULT '{}',
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS products (
	brand_id     BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
	position     INTEGER NOT NULL,
	product_id   TEXT NOT NULL,
	handle       TEXT NOT NULL,
	title        TEXT NOT NULL,
	vendor       TEXT NOT NULL DEFAULT '',
	product_type TEXT NOT NULL DEFAULT '',
	url          TEXT NOT NULL DEFAULT '',
	tags         TEXT[] NOT NULL DEFAULT '{}',
	images       TEXT[] NOT NULL DEFAULT '{}',
	variants     JSONB NOT NULL DEFAULT '[]',
	created_at   TIMESTAMPTZ,
	updated_at   TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS hero_products (
	brand_id BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	handle   TEXT NOT NULL,
	title    TEXT NOT NULL,
	url      TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS social_handles (
	brand_id BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
	platform TEXT NOT NULL,
	url      TEXT NOT NULL,
	username TEXT
);
CREATE TABLE IF NOT EXISTS contact_info (
	brand_id BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
	kind     TEXT NOT NULL,
	value    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tags (
	brand_id BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
	tag      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS policies (
	brand_id BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
	kind     TEXT NOT NULL,
	title    TEXT NOT NULL,
	content  TEXT NOT NULL,
	markdown TEXT NOT NULL,
	url      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS faqs (
	brand_id BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	question TEXT NOT NULL,
	answer   TEXT NOT NULL,
	category TEXT
);
CREATE TABLE IF NOT EXISTS important_links (
	brand_id BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
	label    TEXT NOT NULL,
	text     TEXT NOT NULL,
	url      TEXT NOT NULL
);
`

// childTables are cleared in this order before a document is re-inserted.
//
//nolint:gochecknoglobals // static table list
var childTables = []string{
	"products",
	"hero_products",
	"social_handles",
	"contact_info",
	"tags",
	"policies",
	"faqs",
	"important_links",
}

const upsertBrandQuery = `
	INSERT INTO brands (
		domain, brand_name, website_url, description, about, total_products,
		extraction_success, extraction_timestamp, fingerprint, warnings, field_report, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	ON CONFLICT (domain) DO UPDATE SET
		brand_name = EXCLUDED.brand_name,
		website_url = EXCLUDED.website_url,
		description = EXCLUDED.description,
		about = EXCLUDED.about,
		total_products = EXCLUDED.total_products,
		extraction_success = EXCLUDED.extraction_success,
		extraction_timestamp = EXCLUDED.extraction_timestamp,
		fingerprint = EXCLUDED.fingerprint,
		warnings = EXCLUDED.warnings,
		field_report = EXCLUDED.field_report,
		updated_at = NOW()
	RETURNING id
`

const insertProductQuery = `
	INSERT INTO products (
		brand_id, position, product_id, handle, title, vendor, product_type,
		url, tags, images, variants, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`

const insertPolicyQuery = `
	INSERT INTO policies (brand_id, kind, title, content, markdown, url)
	VALUES (:brand_id, :kind, :title, :content, :markdown, :url)
`

type policyRow struct {
	BrandID  int64  `db:"brand_id"`
	Kind     string `db:"kind"`
	Title    string `db:"title"`
	Content  string `db:"content"`
	Markdown string `db:"markdown"`
	URL      string `db:"url"`
}

// NewPostgresConnection opens a pooled connection and verifies it with a ping.
func NewPostgresConnection(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}
	return db, nil
}

// PostgresSink stores one brand row per domain plus its child rows.
type PostgresSink struct {
	db           *sqlx.DB
	metadataSink metadata.MetadataSink
}

func NewPostgresSink(db *sqlx.DB, metadataSink metadata.MetadataSink) *PostgresSink {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &PostgresSink{db: db, metadataSink: metadataSink}
}

// EnsureSchema creates missing tables.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *PostgresSink) Write(ctx context.Context, doc insight.Document) (WriteResult, error) {
	brandID, err := s.write(ctx, doc)
	if err != nil {
		storageErr := &StorageError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseDatabaseFailure,
		}
		s.metadataSink.RecordError(
			time.Now(),
			"storage",
			"PostgresSink.Write",
			mapStorageErrorToMetadataCause(storageErr),
			storageErr.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrDomain, doc.Domain),
			},
		)
		return WriteResult{}, storageErr
	}

	key := strconv.FormatInt(brandID, 10)
	s.metadataSink.RecordArtifact(
		metadata.ArtifactDatabase,
		"brands/"+key,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrDomain, doc.Domain),
		},
	)
	return NewWriteResult(key, "brands/"+key, doc.Fingerprint), nil
}

func (s *PostgresSink) write(ctx context.Context, doc insight.Document) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	brandID, err := upsertBrand(ctx, tx, doc)
	if err != nil {
		return 0, err
	}

	for _, table := range childTables {
		if _, delErr := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE brand_id = $1", brandID); delErr != nil {
			return 0, fmt.Errorf("failed to clear %s: %w", table, delErr)
		}
	}

	if err := insertChildren(ctx, tx, brandID, doc); err != nil {
		return 0, err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return 0, fmt.Errorf("failed to commit brand %s: %w", doc.Domain, commitErr)
	}
	return brandID, nil
}

func upsertBrand(ctx context.Context, tx *sqlx.Tx, doc insight.Document) (int64, error) {
	report, err := json.Marshal(doc.FieldReport)
	if err != nil {
		return 0, fmt.Errorf("failed to encode field report: %w", err)
	}

	var brandID int64
	err = tx.QueryRowxContext(ctx, upsertBrandQuery,
		doc.Domain,
		doc.BrandName,
		doc.WebsiteURL,
		doc.BrandContext.Description,
		doc.BrandContext.About,
		doc.TotalProducts,
		doc.ExtractionSuccess,
		doc.ExtractionTimestamp,
		doc.Fingerprint,
		pq.Array(doc.Warnings),
		report,
	).Scan(&brandID)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert brand %s: %w", doc.Domain, err)
	}
	return brandID, nil
}

func insertChildren(ctx context.Context, tx *sqlx.Tx, brandID int64, doc insight.Document) error {
	for i, p := range doc.ProductCatalog {
		variants, err := json.Marshal(p.Normalize().Variants)
		if err != nil {
			return fmt.Errorf("failed to encode variants of %s: %w", p.Handle, err)
		}
		if _, err := tx.ExecContext(ctx, insertProductQuery,
			brandID, i, p.ID, p.Handle, p.Title, p.Vendor, p.ProductType,
			p.URL, pq.Array(p.Tags), pq.Array(p.Images), variants, p.CreatedAt, p.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert product %s: %w", p.Handle, err)
		}
	}

	for i, p := range doc.HeroProducts {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO hero_products (brand_id, position, handle, title, url) VALUES ($1, $2, $3, $4, $5)",
			brandID, i, p.Handle, p.Title, p.URL,
		); err != nil {
			return fmt.Errorf("failed to insert hero product %s: %w", p.Handle, err)
		}
	}

	for _, h := range doc.SocialHandles {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO social_handles (brand_id, platform, url, username) VALUES ($1, $2, $3, $4)",
			brandID, string(h.Platform), h.URL, h.Username,
		); err != nil {
			return fmt.Errorf("failed to insert %s handle: %w", h.Platform, err)
		}
	}

	for _, c := range contactRows(doc.ContactInfo) {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO contact_info (brand_id, kind, value) VALUES ($1, $2, $3)",
			brandID, c[0], c[1],
		); err != nil {
			return fmt.Errorf("failed to insert contact %s: %w", c[0], err)
		}
	}

	for _, tag := range doc.Tags {
		if _, err := tx.ExecContext(ctx, "INSERT INTO tags (brand_id, tag) VALUES ($1, $2)", brandID, tag); err != nil {
			return fmt.Errorf("failed to insert tag %q: %w", tag, err)
		}
	}

	for _, p := range doc.Policies {
		row := policyRow{
			BrandID:  brandID,
			Kind:     string(p.Kind),
			Title:    p.Title,
			Content:  p.Content,
			Markdown: p.Markdown,
			URL:      p.SourceURL,
		}
		if _, err := tx.NamedExecContext(ctx, insertPolicyQuery, row); err != nil {
			return fmt.Errorf("failed to insert %s policy: %w", p.Kind, err)
		}
	}

	for i, f := range doc.FAQs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO faqs (brand_id, position, question, answer, category) VALUES ($1, $2, $3, $4, $5)",
			brandID, i, f.Question, f.Answer, f.Category,
		); err != nil {
			return fmt.Errorf("failed to insert faq: %w", err)
		}
	}

	for _, l := range doc.ImportantLinks {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO important_links (brand_id, label, text, url) VALUES ($1, $2, $3, $4)",
			brandID, l.Label, l.Text, l.URL,
		); err != nil {
			return fmt.Errorf("failed to insert link %s: %w", l.Label, err)
		}
	}
	return nil
}

// contactRows flattens contact info into (kind, value) pairs.
func contactRows(c insight.ContactInfo) [][2]string {
	var rows [][2]string
	for _, e := range c.Emails {
		rows = append(rows, [2]string{"email", e})
	}
	for _, p := range c.Phones {
		rows = append(rows, [2]string{"phone", p})
	}
	if c.ContactFormURL != nil {
		rows = append(rows, [2]string{"form", *c.ContactFormURL})
	}
	return rows
}
