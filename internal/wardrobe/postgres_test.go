package wardrobe

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

var (
	selectSnapshot = regexp.QuoteMeta("SELECT data FROM wardrobe_snapshots WHERE profile=$1;")
	upsertSnapshot = regexp.QuoteMeta("INSERT INTO wardrobe_snapshots(profile, data, updated_at)")
)

func newMockBackend(t *testing.T, profile, legacy string) (*PostgresBackend, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})

	return NewPostgresBackend(db, profile, legacy, nil), mock
}

func TestNewPostgresBackendProfiles(t *testing.T) {
	// sql.Open does not connect, so no database is needed here.
	db, err := sql.Open("postgres", "postgres://closai@127.0.0.1:1/closai?sslmode=disable")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	b := NewPostgresBackend(db, "  ", " valyou ", nil)
	if b.profile != defaultProfile || b.legacy != "valyou" {
		t.Fatalf("unexpected profiles: %q %q", b.profile, b.legacy)
	}

	b = NewPostgresBackend(db, "alice", "", nil)
	if b.profile != "alice" || b.legacy != "" {
		t.Fatalf("unexpected profiles: %q %q", b.profile, b.legacy)
	}
}

func TestOpenPostgresUnreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := OpenPostgres(ctx, "postgres://closai@127.0.0.1:1/closai?sslmode=disable&connect_timeout=1", "", "", nil); err == nil {
		t.Fatal("expected an error for an unreachable database")
	}
}

func TestPostgresBackendMigratesLegacyProfileOnce(t *testing.T) {
	ctx := context.Background()
	b, mock := newMockBackend(t, "", "valyou")
	legacyDoc := `{"items":[{"goodsNo":"9","title":"Old coat"}],"userStats":{"height":"180","weight":"75"}}`

	mock.ExpectQuery(selectSnapshot).WithArgs("default").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(selectSnapshot).WithArgs("valyou").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(legacyDoc)))
	mock.ExpectExec(upsertSnapshot).WithArgs("default", legacyDoc, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewStore(b, nil)
	snap, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if snap.Len() != 1 || snap.Items[0].GoodsNo != "9" || snap.UserStats.Height != "180" {
		t.Fatalf("unexpected migrated snapshot %+v", snap)
	}

	// Once the primary row exists the legacy profile is not read again.
	mock.ExpectQuery(selectSnapshot).WithArgs("default").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(legacyDoc)))

	if _, err := store.Get(ctx); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestPostgresBackendEmpty(t *testing.T) {
	b, mock := newMockBackend(t, "alice", "valyou")

	mock.ExpectQuery(selectSnapshot).WithArgs("alice").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(selectSnapshot).WithArgs("valyou").WillReturnError(sql.ErrNoRows)

	snap, err := b.Load(context.Background())
	if err != nil || snap != nil {
		t.Fatalf("expected nothing stored, got %+v, %v", snap, err)
	}
}

func TestPostgresBackendQueryErrorIsUnreadable(t *testing.T) {
	b, mock := newMockBackend(t, "", "")

	mock.ExpectQuery(selectSnapshot).WithArgs("default").WillReturnError(errors.New("connection reset"))

	_, err := NewStore(b, nil).Get(context.Background())
	if !errors.Is(err, ErrUnreadable) {
		t.Fatalf("expected ErrUnreadable, got %v", err)
	}
}

func TestPostgresBackendSaveUpserts(t *testing.T) {
	b, mock := newMockBackend(t, "alice", "")

	mock.ExpectQuery(selectSnapshot).WithArgs("alice").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(upsertSnapshot).WithArgs("alice", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectSnapshot).WithArgs("alice").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(upsertSnapshot).WithArgs("alice", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("disk full"))

	store := NewStore(b, nil)
	if _, err := store.UpdateStats(context.Background(), "170", "60"); err != nil {
		t.Fatalf("UpdateStats: %v", err)
	}
	if _, err := store.UpdateStats(context.Background(), "171", "61"); !errors.Is(err, ErrUnwritable) {
		t.Fatalf("expected ErrUnwritable, got %v", err)
	}
}
