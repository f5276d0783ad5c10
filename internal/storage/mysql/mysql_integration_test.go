//go:build integration

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"hostbook/internal/domain"
	mysqlrepo "hostbook/internal/storage/mysql"
)

func pstr(s string) *string { return &s }

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=hostbook"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/hostbook?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = mysqlrepo.Open(context.Background(), dsn)
		return e
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func TestRepo_MySQL_OwnerScopedCRUD(t *testing.T) {
	repo := mysqlrepo.New(startMySQL(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	for _, o := range []domain.Owner{
		{ID: "o1", Email: "a@example.com", PasswordHash: "h", PasswordSalt: "s", CreatedAt: now},
		{ID: "o2", Email: "b@example.com", PasswordHash: "h", PasswordSalt: "s", CreatedAt: now},
	} {
		if err := repo.CreateOwner(ctx, o); err != nil {
			t.Fatalf("CreateOwner: %v", err)
		}
	}
	if err := repo.CreateOwner(ctx, domain.Owner{ID: "o3", Email: "a@example.com", PasswordHash: "h", PasswordSalt: "s", CreatedAt: now}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate email: want conflict, got %v", err)
	}
	ids, err := repo.ListOwnerIDs(ctx)
	if err != nil || len(ids) != 2 {
		t.Fatalf("ListOwnerIDs: %v %v", ids, err)
	}

	if err := repo.CreateGuest(ctx, domain.Guest{ID: "g1", OwnerID: "o1", Name: "Zed", Email: "z@example.com", Phone: "1"}); err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}
	if err := repo.CreateGuest(ctx, domain.Guest{ID: "g2", OwnerID: "o1", Name: "Amy", Email: "amy@example.com", Phone: "2", Notes: pstr("vip")}); err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}
	if err := repo.CreateGuest(ctx, domain.Guest{ID: "g3", OwnerID: "o2", Name: "Other", Email: "o@example.com", Phone: "3"}); err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}

	gs, err := repo.ListGuests(ctx, "o1")
	if err != nil || len(gs) != 2 || gs[0].Name != "Amy" || gs[0].Notes == nil || *gs[0].Notes != "vip" {
		t.Fatalf("ListGuests: %+v %v", gs, err)
	}
	if n, _ := repo.CountGuests(ctx, "o1"); n != 2 {
		t.Fatalf("CountGuests = %d", n)
	}

	day := func(s string) time.Time { d, _ := time.Parse("2006-01-02", s); return d }
	if err := repo.CreateBooking(ctx, domain.Booking{ID: "b2", OwnerID: "o1", GuestID: "g1", CheckIn: day("2024-04-01"), CheckOut: day("2024-04-05"), Price: 400}); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if err := repo.CreateBooking(ctx, domain.Booking{ID: "b1", OwnerID: "o1", GuestID: "g2", CheckIn: day("2024-03-01"), CheckOut: day("2024-03-03"), Price: 199.99}); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	// guest of another owner
	if err := repo.CreateBooking(ctx, domain.Booking{ID: "bx", OwnerID: "o1", GuestID: "g3", CheckIn: day("2024-03-01"), CheckOut: day("2024-03-03"), Price: 1}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign guest: want not found, got %v", err)
	}

	bs, err := repo.ListBookings(ctx, "o1")
	if err != nil || len(bs) != 2 {
		t.Fatalf("ListBookings: %+v %v", bs, err)
	}
	if bs[0].ID != "b1" || !bs[0].CheckIn.Equal(day("2024-03-01")) || bs[0].Price != 199.99 || bs[0].Guest == nil || bs[0].Guest.Name != "Amy" {
		t.Fatalf("unexpected first booking: %+v", bs[0])
	}
	if other, _ := repo.ListBookings(ctx, "o2"); len(other) != 0 {
		t.Fatalf("o2 sees %d bookings", len(other))
	}

	b := bs[0]
	b.Price = 250
	if err := repo.UpdateBooking(ctx, b); err != nil {
		t.Fatalf("UpdateBooking: %v", err)
	}
	// identical update still succeeds
	if err := repo.UpdateBooking(ctx, b); err != nil {
		t.Fatalf("UpdateBooking (no change): %v", err)
	}
	b.OwnerID = "o2"
	if err := repo.UpdateBooking(ctx, b); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign update: want not found, got %v", err)
	}
	if _, err := repo.GetBooking(ctx, "o2", "b1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign get: want not found, got %v", err)
	}

	if err := repo.DeleteGuest(ctx, "o1", "g1"); err != nil {
		t.Fatalf("DeleteGuest: %v", err)
	}
	if _, err := repo.GetBooking(ctx, "o1", "b2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("booking should cascade with guest, got %v", err)
	}
	if err := repo.DeleteBooking(ctx, "o1", "b2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("DeleteBooking missing: %v", err)
	}
}
