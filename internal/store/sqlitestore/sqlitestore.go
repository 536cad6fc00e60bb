// Package sqlitestore backs the catalog store with SQLite via sqlx and the
// pure-Go modernc driver. The schema is ensured on open, so ":memory:" DSNs
// work for tests without any migration step.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"minimart/internal/domain"
	"minimart/internal/store"
)

type SQLite struct {
	db *sqlx.DB
}

func Open(dsn string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// A single connection keeps the uniqueness check and the insert on the
	// same SQLite handle; the driver serializes writers anyway.
	db.SetMaxOpenConns(1)
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS users(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  age INTEGER NOT NULL CHECK (age >= 0),
  password TEXT NOT NULL,
  token TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL CHECK (role IN ('admin','user'))
);
CREATE INDEX IF NOT EXISTS idx_users_token ON users(token);

CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  price INTEGER NOT NULL CHECK (price >= 0)
);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(LOWER(name));

-- Present for schema parity with the other backends; nothing writes here.
CREATE TABLE IF NOT EXISTS orders(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id),
  product_id INTEGER NOT NULL REFERENCES products(id),
  quantity INTEGER NOT NULL CHECK (quantity >= 1)
);
`
	_, err := db.Exec(schema)
	return err
}

func (s *SQLite) Users() store.UserStore       { return &sqliteUsers{db: s.db} }
func (s *SQLite) Products() store.ProductStore { return &sqliteProducts{db: s.db} }

func (s *SQLite) Close(ctx context.Context) error { return s.db.Close() }

// DB exposes the underlying handle for tests.
func (s *SQLite) DB() *sqlx.DB { return s.db }

type sqliteUsers struct{ db *sqlx.DB }

func (r *sqliteUsers) Create(ctx context.Context, u *domain.User) error {
	u.Token = store.NewToken()
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users(name,age,password,token,role) VALUES(?,?,?,?,?) RETURNING id`,
		u.Name, u.Age, u.Password, u.Token, u.Role).Scan(&u.ID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.name") {
			return store.ErrDuplicateName
		}
		return err
	}
	return nil
}

func (r *sqliteUsers) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *sqliteUsers) ByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `SELECT id,name,age,password,token,role FROM users WHERE id=?`, id)
}

func (r *sqliteUsers) ByToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT id,name,age,password,token,role FROM users WHERE token=?`, token)
}

func (r *sqliteUsers) ByName(ctx context.Context, name string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT id,name,age,password,token,role FROM users WHERE name=?`, name)
}

func (r *sqliteUsers) List(ctx context.Context) ([]domain.User, error) {
	out := []domain.User{}
	err := r.db.SelectContext(ctx, &out, `SELECT id,name,age,password,token,role FROM users ORDER BY id`)
	return out, err
}

func (r *sqliteUsers) ListByName(ctx context.Context) ([]domain.User, error) {
	out := []domain.User{}
	err := r.db.SelectContext(ctx, &out, `SELECT id,name,age,password,token,role FROM users ORDER BY name`)
	return out, err
}

func (r *sqliteUsers) Update(ctx context.Context, id int64, name string, age int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET name=?, age=? WHERE id=?`, name, age, id)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: users.name") {
		return store.ErrDuplicateName
	}
	return err
}

func (r *sqliteUsers) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	return err
}

func (r *sqliteUsers) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`)
	return n, err
}

func (r *sqliteUsers) HasRole(ctx context.Context, role domain.Role) (bool, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE role=?`, role); err != nil {
		return false, err
	}
	return n > 0, nil
}

type sqliteProducts struct{ db *sqlx.DB }

func (r *sqliteProducts) Create(ctx context.Context, p *domain.Product) error {
	return r.db.QueryRowxContext(ctx,
		`INSERT INTO products(name,price) VALUES(?,?) RETURNING id`,
		p.Name, p.Price).Scan(&p.ID)
}

func (r *sqliteProducts) ByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT id,name,price FROM products WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *sqliteProducts) List(ctx context.Context) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, `SELECT id,name,price FROM products ORDER BY price, id`)
	return out, err
}

func (r *sqliteProducts) SearchByName(ctx context.Context, query string) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.List(ctx)
	}
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT id,name,price FROM products WHERE LOWER(name) LIKE ? ORDER BY price, id`,
		"%"+strings.ToLower(query)+"%")
	return out, err
}

func (r *sqliteProducts) Update(ctx context.Context, id int64, name string, price int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE products SET name=?, price=? WHERE id=?`, name, price, id)
	return err
}

func (r *sqliteProducts) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=?`, id)
	return err
}

func (r *sqliteProducts) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`)
	return n, err
}
