// Package pgstore backs the catalog store with PostgreSQL through pgx.
// Duplicate names surface as unique-violation errors from the database, so
// concurrent registrations race safely without an app-level lock.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"minimart/internal/domain"
	"minimart/internal/store"
)

const uniqueViolation = "23505"

type Postgres struct {
	pool *pgxpool.Pool
}

func Open(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Postgres{pool: pool}, nil
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	schema := `
CREATE TABLE IF NOT EXISTS users(
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  age INTEGER NOT NULL CHECK (age >= 0),
  password TEXT NOT NULL,
  token TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL CHECK (role IN ('admin','user'))
);

CREATE TABLE IF NOT EXISTS products(
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  price BIGINT NOT NULL CHECK (price >= 0)
);

CREATE TABLE IF NOT EXISTS orders(
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id),
  product_id BIGINT NOT NULL REFERENCES products(id),
  quantity INTEGER NOT NULL CHECK (quantity >= 1)
);
`
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Postgres) Users() store.UserStore       { return &pgUsers{pool: s.pool} }
func (s *Postgres) Products() store.ProductStore { return &pgProducts{pool: s.pool} }

func (s *Postgres) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type pgUsers struct{ pool *pgxpool.Pool }

func (r *pgUsers) Create(ctx context.Context, u *domain.User) error {
	u.Token = store.NewToken()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users(name,age,password,token,role) VALUES($1,$2,$3,$4,$5) RETURNING id`,
		u.Name, u.Age, u.Password, u.Token, string(u.Role)).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicateName
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *pgUsers) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	var role string
	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Age, &u.Password, &u.Token, &role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func (r *pgUsers) ByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `SELECT id,name,age,password,token,role FROM users WHERE id=$1`, id)
}

func (r *pgUsers) ByToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT id,name,age,password,token,role FROM users WHERE token=$1`, token)
}

func (r *pgUsers) ByName(ctx context.Context, name string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT id,name,age,password,token,role FROM users WHERE name=$1`, name)
}

func (r *pgUsers) list(ctx context.Context, query string) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		var u domain.User
		var role string
		if err := rows.Scan(&u.ID, &u.Name, &u.Age, &u.Password, &u.Token, &role); err != nil {
			return nil, err
		}
		u.Role = domain.Role(role)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *pgUsers) List(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, `SELECT id,name,age,password,token,role FROM users ORDER BY id`)
}

func (r *pgUsers) ListByName(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, `SELECT id,name,age,password,token,role FROM users ORDER BY name`)
}

func (r *pgUsers) Update(ctx context.Context, id int64, name string, age int) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET name=$1, age=$2 WHERE id=$3`, name, age, id)
	if isUniqueViolation(err) {
		return store.ErrDuplicateName
	}
	return err
}

func (r *pgUsers) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	return err
}

func (r *pgUsers) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *pgUsers) HasRole(ctx context.Context, role domain.Role) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE role=$1)`, string(role)).Scan(&ok)
	return ok, err
}

type pgProducts struct{ pool *pgxpool.Pool }

func (r *pgProducts) Create(ctx context.Context, p *domain.Product) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products(name,price) VALUES($1,$2) RETURNING id`,
		p.Name, p.Price).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *pgProducts) ByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx, `SELECT id,name,price FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

func (r *pgProducts) list(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *pgProducts) List(ctx context.Context) ([]domain.Product, error) {
	return r.list(ctx, `SELECT id,name,price FROM products ORDER BY price, id`)
}

func (r *pgProducts) SearchByName(ctx context.Context, query string) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.List(ctx)
	}
	return r.list(ctx,
		`SELECT id,name,price FROM products WHERE name ILIKE '%' || $1 || '%' ORDER BY price, id`,
		query)
}

func (r *pgProducts) Update(ctx context.Context, id int64, name string, price int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE products SET name=$1, price=$2 WHERE id=$3`, name, price, id)
	return err
}

func (r *pgProducts) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	return err
}

func (r *pgProducts) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}
