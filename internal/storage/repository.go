// Package storage implements the ledger store ports over SQLite. Schema is
// managed by embedded golang-migrate migrations; timestamps are stored as
// RFC 3339 text so ordering in SQL matches ordering in Go.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"clubledger/internal/core"
	"clubledger/internal/ledger"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w: %w", core.ErrDependency, err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const timeFormat = time.RFC3339Nano

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func decodeTime(s string) time.Time {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// members

func (r *SQLiteRepository) CreateMember(ctx context.Context, m core.Member) (core.Member, error) {
	if err := m.Validate(); err != nil {
		return core.Member{}, err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Photo == "" {
		m.Photo = core.DefaultMemberPhoto
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO members (id, name, phone, photo, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Phone, m.Photo, m.Active, encodeTime(m.CreatedAt), encodeTime(m.UpdatedAt))
	if err != nil {
		return core.Member{}, fmt.Errorf("insert member: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) GetMember(ctx context.Context, id string) (core.Member, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, phone, photo, active, created_at, updated_at
		 FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Member{}, fmt.Errorf("member %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Member{}, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) UpdateMember(ctx context.Context, m core.Member) (core.Member, error) {
	if err := m.Validate(); err != nil {
		return core.Member{}, err
	}
	existing, err := r.GetMember(ctx, m.ID)
	if err != nil {
		return core.Member{}, err
	}
	if m.Photo == "" {
		m.Photo = existing.Photo
	}
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = time.Now().UTC()

	_, err = r.db.ExecContext(ctx,
		`UPDATE members SET name = ?, phone = ?, photo = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		m.Name, m.Phone, m.Photo, m.Active, encodeTime(m.UpdatedAt), m.ID)
	if err != nil {
		return core.Member{}, fmt.Errorf("update member: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) DeleteMember(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("member %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) ListMembers(ctx context.Context) ([]core.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, phone, photo, active, created_at, updated_at
		 FROM members ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []core.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(s scanner) (core.Member, error) {
	var m core.Member
	var created, updated string
	if err := s.Scan(&m.ID, &m.Name, &m.Phone, &m.Photo, &m.Active, &created, &updated); err != nil {
		return core.Member{}, err
	}
	m.CreatedAt = decodeTime(created)
	m.UpdatedAt = decodeTime(updated)
	return m, nil
}

// payments

func (r *SQLiteRepository) UpsertPayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()

	// Delete-then-insert in one transaction: the unique index never sees two
	// records for the key and readers never see zero.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Payment{}, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM payments WHERE member_id = ? AND week_number = ? AND year = ?`,
		p.Member.ID, p.WeekNumber, p.Year); err != nil {
		return core.Payment{}, fmt.Errorf("delete prior payment: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO payments (id, member_id, amount, week_number, year, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Member.ID, p.Amount, p.WeekNumber, p.Year, encodeTime(p.CreatedAt)); err != nil {
		return core.Payment{}, fmt.Errorf("insert payment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Payment{}, fmt.Errorf("commit upsert: %w", err)
	}

	if m, err := r.GetMember(ctx, p.Member.ID); err == nil {
		p.Member.Name = m.Name
		p.Member.Phone = m.Phone
	}
	return p, nil
}

func (r *SQLiteRepository) GetPayment(ctx context.Context, id string) (core.Payment, error) {
	var p core.Payment
	var name, phone sql.NullString
	var created string
	err := r.db.QueryRowContext(ctx,
		`SELECT p.id, p.member_id, m.name, m.phone, p.amount, p.week_number, p.year, p.created_at
		 FROM payments p LEFT JOIN members m ON m.id = p.member_id WHERE p.id = ?`,
		id).Scan(&p.ID, &p.Member.ID, &name, &phone, &p.Amount, &p.WeekNumber, &p.Year, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Payment{}, fmt.Errorf("payment %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Payment{}, fmt.Errorf("get payment: %w", err)
	}
	p.Member.Name = name.String
	p.Member.Phone = phone.String
	p.CreatedAt = decodeTime(created)
	return p, nil
}

func (r *SQLiteRepository) DeletePayment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("payment %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) ListPayments(ctx context.Context, f ledger.PaymentFilter) ([]core.Payment, error) {
	query := `SELECT p.id, p.member_id, m.name, m.phone, p.amount, p.week_number, p.year, p.created_at
		 FROM payments p LEFT JOIN members m ON m.id = p.member_id WHERE 1=1`
	var args []any
	if f.MemberID != "" {
		query += ` AND p.member_id = ?`
		args = append(args, f.MemberID)
	}
	if f.WeekNumber != 0 {
		query += ` AND p.week_number = ?`
		args = append(args, f.WeekNumber)
	}
	if f.Year != 0 {
		query += ` AND p.year = ?`
		args = append(args, f.Year)
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []core.Payment
	for rows.Next() {
		var p core.Payment
		var name, phone sql.NullString
		var created string
		if err := rows.Scan(&p.ID, &p.Member.ID, &name, &phone, &p.Amount, &p.WeekNumber, &p.Year, &created); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Member.Name = name.String
		p.Member.Phone = phone.String
		p.CreatedAt = decodeTime(created)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *SQLiteRepository) HasPayment(ctx context.Context, memberID string, weekNumber, year int) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM payments WHERE member_id = ? AND week_number = ? AND year = ?`,
		memberID, weekNumber, year).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("payment status: %w", err)
	}
	return true, nil
}

// expenses

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.ID = uuid.NewString()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount, created_at) VALUES (?, ?, ?, ?)`,
		e.ID, e.Description, e.Amount, encodeTime(e.CreatedAt))
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	var e core.Expense
	var created string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, description, amount, created_at FROM expenses WHERE id = ?`,
		id).Scan(&e.ID, &e.Description, &e.Amount, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	e.CreatedAt = decodeTime(created)
	return e, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount, created_at FROM expenses
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var e core.Expense
		var created string
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount, &created); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.CreatedAt = decodeTime(created)
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// donations

func (r *SQLiteRepository) CreateDonation(ctx context.Context, d core.Donation) (core.Donation, error) {
	if err := d.Validate(); err != nil {
		return core.Donation{}, err
	}
	d.ID = uuid.NewString()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO donations (id, donor_name, amount, created_at) VALUES (?, ?, ?, ?)`,
		d.ID, d.DonorName, d.Amount, encodeTime(d.CreatedAt))
	if err != nil {
		return core.Donation{}, fmt.Errorf("insert donation: %w", err)
	}
	return d, nil
}

func (r *SQLiteRepository) GetDonation(ctx context.Context, id string) (core.Donation, error) {
	var d core.Donation
	var created string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, donor_name, amount, created_at FROM donations WHERE id = ?`,
		id).Scan(&d.ID, &d.DonorName, &d.Amount, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Donation{}, fmt.Errorf("donation %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Donation{}, fmt.Errorf("get donation: %w", err)
	}
	d.CreatedAt = decodeTime(created)
	return d, nil
}

func (r *SQLiteRepository) ListDonations(ctx context.Context) ([]core.Donation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, donor_name, amount, created_at FROM donations
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var donations []core.Donation
	for rows.Next() {
		var d core.Donation
		var created string
		if err := rows.Scan(&d.ID, &d.DonorName, &d.Amount, &created); err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		d.CreatedAt = decodeTime(created)
		donations = append(donations, d)
	}
	return donations, rows.Err()
}

// users

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	if _, err := r.GetUserByEmail(ctx, u.Email); err == nil {
		return core.User{}, fmt.Errorf("user %s: %w", u.Email, core.ErrConflict)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Role, encodeTime(u.CreatedAt))
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var u core.User
	var created string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, created_at FROM users WHERE email = ?`,
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %s: %w", email, core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = decodeTime(created)
	return u, nil
}
