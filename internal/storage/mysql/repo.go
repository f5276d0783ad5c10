package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	drv "github.com/go-sql-driver/mysql"

	"hostbook/internal/domain"
)

const dateLayout = "2006-01-02"

// errDuplicateEntry is MySQL's ER_DUP_ENTRY.
const errDuplicateEntry = 1062

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func ptrNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func mapErr(err error) error {
	var me *drv.MySQLError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrNotFound
	case errors.As(err, &me) && me.Number == errDuplicateEntry:
		return domain.ErrConflict
	}
	return err
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Open connects with the pool settings the services run with.
// The DSN must carry parseTime=true so DATE and TIMESTAMP columns scan into time.Time.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := drv.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

// rowExists answers whether query (a SELECT 1 ...) yields a row.
func (r *Repo) rowExists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// ---- owners ----

func (r *Repo) CreateOwner(ctx context.Context, o domain.Owner) error {
	_, err := r.db.ExecContext(ctx, insertOwnerSQL, string(o.ID), o.Email, o.PasswordHash, o.PasswordSalt, o.CreatedAt)
	return mapErr(err)
}

func (r *Repo) GetOwnerByEmail(ctx context.Context, email string) (domain.Owner, error) {
	var o domain.Owner
	var id string
	err := r.db.QueryRowContext(ctx, getOwnerByEmailSQL, email).
		Scan(&id, &o.Email, &o.PasswordHash, &o.PasswordSalt, &o.CreatedAt)
	if err != nil {
		return domain.Owner{}, mapErr(err)
	}
	o.ID = domain.OwnerID(id)
	return o, nil
}

func (r *Repo) ListOwnerIDs(ctx context.Context) ([]domain.OwnerID, error) {
	rows, err := r.db.QueryContext(ctx, listOwnerIDsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OwnerID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, domain.OwnerID(id))
	}
	return out, rows.Err()
}

// ---- guests ----

type scanner interface{ Scan(dest ...any) error }

func scanGuest(s scanner) (domain.Guest, error) {
	var g domain.Guest
	var owner string
	var notes sql.NullString
	if err := s.Scan(&g.ID, &owner, &g.Name, &g.Email, &g.Phone, &notes, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return domain.Guest{}, err
	}
	g.OwnerID = domain.OwnerID(owner)
	g.Notes = ptrNull(notes)
	return g, nil
}

func (r *Repo) ListGuests(ctx context.Context, owner domain.OwnerID) ([]domain.Guest, error) {
	rows, err := r.db.QueryContext(ctx, listGuestsSQL, string(owner))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Guest, 0)
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Repo) GetGuest(ctx context.Context, owner domain.OwnerID, id string) (domain.Guest, error) {
	g, err := scanGuest(r.db.QueryRowContext(ctx, getGuestSQL, string(owner), id))
	if err != nil {
		return domain.Guest{}, mapErr(err)
	}
	return g, nil
}

func (r *Repo) CountGuests(ctx context.Context, owner domain.OwnerID) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countGuestsSQL, string(owner)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repo) CreateGuest(ctx context.Context, g domain.Guest) error {
	_, err := r.db.ExecContext(ctx, insertGuestSQL, g.ID, string(g.OwnerID), g.Name, g.Email, g.Phone, valStr(g.Notes))
	return mapErr(err)
}

func (r *Repo) UpdateGuest(ctx context.Context, g domain.Guest) error {
	res, err := r.db.ExecContext(ctx, updateGuestSQL, g.Name, g.Email, g.Phone, valStr(g.Notes), string(g.OwnerID), g.ID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	// MySQL reports changed rows, so an identical update also affects zero.
	ok, err := r.rowExists(ctx, `SELECT 1 FROM guests WHERE owner_id = ? AND id = ?`, string(g.OwnerID), g.ID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteGuest(ctx context.Context, owner domain.OwnerID, id string) error {
	res, err := r.db.ExecContext(ctx, deleteGuestSQL, string(owner), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ---- bookings ----

func scanBooking(s scanner) (domain.Booking, error) {
	var b domain.Booking
	var owner string
	var notes sql.NullString
	var g domain.GuestRef
	if err := s.Scan(&b.ID, &owner, &b.GuestID, &b.CheckIn, &b.CheckOut, &b.Price, &notes,
		&b.CreatedAt, &b.UpdatedAt, &g.Name, &g.Email, &g.Phone); err != nil {
		return domain.Booking{}, err
	}
	b.OwnerID = domain.OwnerID(owner)
	b.CheckIn, b.CheckOut = b.CheckIn.UTC(), b.CheckOut.UTC()
	b.Notes = ptrNull(notes)
	b.Guest = &g
	return b, nil
}

func (r *Repo) ListBookings(ctx context.Context, owner domain.OwnerID) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, listBookingsSQL, string(owner))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) GetBooking(ctx context.Context, owner domain.OwnerID, id string) (domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, getBookingSQL, string(owner), id))
	if err != nil {
		return domain.Booking{}, mapErr(err)
	}
	return b, nil
}

func (r *Repo) CreateBooking(ctx context.Context, b domain.Booking) error {
	res, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.ID,
		b.CheckIn.Format(dateLayout),
		b.CheckOut.Format(dateLayout),
		b.Price,
		valStr(b.Notes),
		string(b.OwnerID), b.GuestID,
	)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) UpdateBooking(ctx context.Context, b domain.Booking) error {
	res, err := r.db.ExecContext(ctx, updateBookingSQL,
		b.GuestID,
		b.CheckIn.Format(dateLayout),
		b.CheckOut.Format(dateLayout),
		b.Price,
		valStr(b.Notes),
		string(b.OwnerID), b.ID,
	)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	// zero rows: either nothing changed, or the booking or guest is not the owner's
	ok, err := r.rowExists(ctx, `
SELECT 1 FROM bookings b JOIN guests g ON g.id = ? AND g.owner_id = b.owner_id
WHERE b.owner_id = ? AND b.id = ?`, b.GuestID, string(b.OwnerID), b.ID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteBooking(ctx context.Context, owner domain.OwnerID, id string) error {
	res, err := r.db.ExecContext(ctx, deleteBookingSQL, string(owner), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
