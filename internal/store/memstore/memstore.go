// Package memstore keeps the catalog in process memory. It replaces the
// global mutable lists of the in-memory lab variant with an injected store
// object; one mutex serializes every check-then-insert so uniqueness holds
// under concurrent registration.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"minimart/internal/domain"
	"minimart/internal/store"
)

type Mem struct {
	mu       sync.Mutex
	users    map[int64]domain.User
	products map[int64]domain.Product
	orders   map[int64]domain.Order

	nextUserID    int64
	nextProductID int64
	nextOrderID   int64
}

func New() *Mem {
	return &Mem{
		users:    make(map[int64]domain.User),
		products: make(map[int64]domain.Product),
		orders:   make(map[int64]domain.Order),
	}
}

func (m *Mem) Users() store.UserStore       { return (*memUsers)(m) }
func (m *Mem) Products() store.ProductStore { return (*memProducts)(m) }

func (m *Mem) Close(ctx context.Context) error { return nil }

type memUsers Mem

func (s *memUsers) Create(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if other.Name == u.Name {
			return store.ErrDuplicateName
		}
	}
	s.nextUserID++
	u.ID = s.nextUserID
	u.Token = store.NewToken()
	s.users[u.ID] = *u
	return nil
}

func (s *memUsers) ByID(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *memUsers) ByToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Token == token {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s *memUsers) ByName(ctx context.Context, name string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Name == name {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s *memUsers) List(ctx context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	// Stable listing order; maps would shuffle the admin panel on refresh.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memUsers) ListByName(ctx context.Context) ([]domain.User, error) {
	out, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memUsers) Update(ctx context.Context, id int64, name string, age int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	for _, other := range s.users {
		if other.ID != id && other.Name == name {
			return store.ErrDuplicateName
		}
	}
	u.Name = name
	u.Age = age
	s.users[id] = u
	return nil
}

func (s *memUsers) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

func (s *memUsers) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

func (s *memUsers) HasRole(ctx context.Context, role domain.Role) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

type memProducts Mem

func (s *memProducts) Create(ctx context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextProductID++
	p.ID = s.nextProductID
	s.products[p.ID] = *p
	return nil
}

func (s *memProducts) ByID(ctx context.Context, id int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *memProducts) List(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memProducts) SearchByName(ctx context.Context, query string) ([]domain.Product, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all, nil
	}
	out := all[:0]
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), query) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memProducts) Update(ctx context.Context, id int64, name string, price int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil
	}
	p.Name = name
	p.Price = price
	s.products[id] = p
	return nil
}

func (s *memProducts) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
	return nil
}

func (s *memProducts) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.products)), nil
}
