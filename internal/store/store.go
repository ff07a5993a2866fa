package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Store manages the PostgreSQL connection for the conversion catalog.
type Store struct {
	conn *pgx.Conn
}

// Encoding is one completed conversion.
type Encoding struct {
	ID                   string
	InputDir             string
	OutputPath           string
	FrameRate            int
	FrameCount           int64
	HorizontalResolution int
	VerticalResolution   int
	VectorCount          int64
	ByteSize             int64
	Digest               string
	EncodedAt            time.Time
}

// New establishes a connection to the database and ensures the schema is initialized.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Initialize schema (Auto-Migration)
	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

// initSchema creates the catalog table if it doesn't exist (Auto-Migration).
func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS bvf_encodings (
			id TEXT PRIMARY KEY,
			input_dir TEXT NOT NULL,
			output_path TEXT NOT NULL,
			frame_rate SMALLINT NOT NULL,
			frame_count BIGINT NOT NULL,
			horizontal_resolution SMALLINT NOT NULL,
			vertical_resolution SMALLINT NOT NULL,
			vector_count BIGINT NOT NULL,
			byte_size BIGINT NOT NULL,
			digest TEXT NOT NULL,
			encoded_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS bvf_encodings_digest_idx ON bvf_encodings (digest);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (s *Store) Close(ctx context.Context) {
	s.conn.Close(ctx)
}

// RecordEncoding saves a completed conversion. EncodedAt is set by the database.
func (s *Store) RecordEncoding(ctx context.Context, e Encoding) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO bvf_encodings (id, input_dir, output_path, frame_rate, frame_count,
			horizontal_resolution, vertical_resolution, vector_count, byte_size, digest)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, e.ID, e.InputDir, e.OutputPath, e.FrameRate, e.FrameCount,
		e.HorizontalResolution, e.VerticalResolution, e.VectorCount, e.ByteSize, e.Digest)
	return err
}

const selectEncodings = `
	SELECT id, input_dir, output_path, frame_rate, frame_count,
		horizontal_resolution, vertical_resolution, vector_count, byte_size, digest, encoded_at
	FROM bvf_encodings`

func scanEncoding(row pgx.Row) (Encoding, error) {
	var e Encoding
	err := row.Scan(&e.ID, &e.InputDir, &e.OutputPath, &e.FrameRate, &e.FrameCount,
		&e.HorizontalResolution, &e.VerticalResolution, &e.VectorCount, &e.ByteSize, &e.Digest, &e.EncodedAt)
	return e, err
}

// ListEncodings returns every recorded conversion, newest first.
func (s *Store) ListEncodings(ctx context.Context) ([]Encoding, error) {
	rows, err := s.conn.Query(ctx, selectEncodings+" ORDER BY encoded_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Encoding
	for rows.Next() {
		e, err := scanEncoding(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// FindByDigest returns the conversions that produced a stream with the given digest.
// An unknown digest yields an empty slice.
func (s *Store) FindByDigest(ctx context.Context, digest string) ([]Encoding, error) {
	rows, err := s.conn.Query(ctx, selectEncodings+" WHERE digest = $1 ORDER BY encoded_at DESC", digest)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Encoding
	for rows.Next() {
		e, err := scanEncoding(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetEncoding fetches a single conversion by id.
func (s *Store) GetEncoding(ctx context.Context, id string) (Encoding, bool, error) {
	e, err := scanEncoding(s.conn.QueryRow(ctx, selectEncodings+" WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Encoding{}, false, nil
	}
	if err != nil {
		return Encoding{}, false, err
	}
	return e, true, nil
}

// Reset drops the catalog table.
// This is useful for development to force a schema refresh without migrations.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, `DROP TABLE IF EXISTS bvf_encodings CASCADE;`)
	return err
}
