package wardrobe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultProfile = "default"

// PostgresBackend stores one snapshot per profile key in a JSONB column.
type PostgresBackend struct {
	sql     *sql.DB
	profile string
	legacy  string
	logger  *zap.Logger
}

// OpenPostgres connects, pings and creates the snapshot table.
func OpenPostgres(ctx context.Context, dsn, profile, legacyProfile string, logger *zap.Logger) (*PostgresBackend, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	b := NewPostgresBackend(db, profile, legacyProfile, logger)
	if err := b.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

// NewPostgresBackend wraps an open database handle.
func NewPostgresBackend(db *sql.DB, profile, legacyProfile string, logger *zap.Logger) *PostgresBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	profile = strings.TrimSpace(profile)
	if profile == "" {
		profile = defaultProfile
	}
	return &PostgresBackend{
		sql:     db,
		profile: profile,
		legacy:  strings.TrimSpace(legacyProfile),
		logger:  logger,
	}
}

var _ Backend = (*PostgresBackend)(nil)

// Close closes the database handle.
func (b *PostgresBackend) Close() error {
	return b.sql.Close()
}

func (b *PostgresBackend) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS wardrobe_snapshots (
			profile TEXT PRIMARY KEY,
			data JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := b.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (b *PostgresBackend) Load(ctx context.Context) (*Snapshot, error) {
	data, err := b.read(ctx, b.profile)
	if err != nil {
		return nil, err
	}
	if data != nil {
		return decodeSnapshot(data, "profile "+b.profile)
	}

	if b.legacy == "" || b.legacy == b.profile {
		return nil, nil
	}

	data, err = b.read(ctx, b.legacy)
	if err != nil || data == nil {
		return nil, err
	}

	snap, err := decodeSnapshot(data, "profile "+b.legacy)
	if err != nil {
		return nil, err
	}
	if err := b.write(ctx, data); err != nil {
		return nil, fmt.Errorf("migrating legacy profile: %w", err)
	}
	b.logger.Info("migrated legacy wardrobe profile",
		zap.String("from", b.legacy),
		zap.String("to", b.profile),
	)
	return snap, nil
}

func (b *PostgresBackend) Save(ctx context.Context, s *Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding wardrobe: %w", err)
	}
	return b.write(ctx, data)
}

func (b *PostgresBackend) read(ctx context.Context, profile string) ([]byte, error) {
	var data []byte
	err := b.sql.QueryRowContext(ctx,
		"SELECT data FROM wardrobe_snapshots WHERE profile=$1;", profile,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select wardrobe %q: %w", profile, err)
	}
	return data, nil
}

func (b *PostgresBackend) write(ctx context.Context, data []byte) error {
	_, err := b.sql.ExecContext(ctx,
		`INSERT INTO wardrobe_snapshots(profile, data, updated_at) VALUES($1, $2, $3)
		ON CONFLICT (profile) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at;`,
		b.profile, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert wardrobe %q: %w", b.profile, err)
	}
	return nil
}
