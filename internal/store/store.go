// Package store defines the catalog store contract: users, products and the
// schema-only orders, with the same semantics over every backend. The labs
// this app descends from ran the identical core against SQLite, PostgreSQL,
// MongoDB and plain in-memory lists, so the contract lives here and each
// backend is a subpackage.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"minimart/internal/domain"
)

// ErrDuplicateName is returned by UserStore.Create when the name is already
// taken. It is the only store failure a caller renders to the end user.
var ErrDuplicateName = errors.New("user name already taken")

type Store interface {
	Users() UserStore
	Products() ProductStore
	Close(ctx context.Context) error
}

// UserStore owns user records. Lookups return (nil, nil) when nothing
// matches: a stale token or unknown name is ordinary control flow here, not
// an error. Update and Delete on a missing id are silent no-ops.
type UserStore interface {
	// Create assigns a fresh ID and session token to u. The name/token
	// uniqueness check is serialized against the write path, so two
	// concurrent creates with the same name cannot both succeed.
	Create(ctx context.Context, u *domain.User) error
	ByID(ctx context.Context, id int64) (*domain.User, error)
	ByToken(ctx context.Context, token string) (*domain.User, error)
	ByName(ctx context.Context, name string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// ListByName is List ordered by name ascending (admin "sorted users" view).
	ListByName(ctx context.Context) ([]domain.User, error)
	// Update returns ErrDuplicateName when the new name belongs to another
	// user; renaming a user to its current name is fine.
	Update(ctx context.Context, id int64, name string, age int) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	HasRole(ctx context.Context, role domain.Role) (bool, error)
}

// ProductStore owns catalog items. List is ordered by ascending price, the
// storefront's one fixed sort. Search matches a case-insensitive name
// substring; an empty query degrades to List.
type ProductStore interface {
	Create(ctx context.Context, p *domain.Product) error
	ByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	SearchByName(ctx context.Context, query string) ([]domain.Product, error)
	Update(ctx context.Context, id int64, name string, price int64) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// NewToken mints an opaque session token. UUIDv4 keeps tokens unique by
// construction; every backend additionally enforces a unique index.
func NewToken() string {
	return uuid.NewString()
}
