package controllers

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/stockkeeper/internal/client/repositories/products"
	"github.com/dmitrijs2005/stockkeeper/internal/live"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/optional"
)

type fakeProducts struct {
	products.Repository

	mu sync.Mutex

	listStream  live.Stream[[]models.Product]
	totalStream live.Stream[float64]
	listCalls   int
	totalCalls  int

	byID     map[string]models.Product
	getErr   error
	getGate  chan struct{}
	getCalls []string

	mutErr    error
	deletePan any
	inserted  []models.Product
	updated   []models.Product
	deleted   []string
}

func (f *fakeProducts) AllProducts() live.Stream[[]models.Product] {
	return func(ctx context.Context, emit func([]models.Product)) error {
		f.mu.Lock()
		f.listCalls++
		s := f.listStream
		f.mu.Unlock()
		return s(ctx, emit)
	}
}

func (f *fakeProducts) TotalInventoryValue() live.Stream[float64] {
	return func(ctx context.Context, emit func(float64)) error {
		f.mu.Lock()
		f.totalCalls++
		s := f.totalStream
		f.mu.Unlock()
		return s(ctx, emit)
	}
}

func (f *fakeProducts) ProductByID(ctx context.Context, id string) (optional.Option[models.Product], error) {
	f.mu.Lock()
	f.getCalls = append(f.getCalls, id)
	gate := f.getGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return optional.None[models.Product](), ctx.Err()
		}
	}
	if f.getErr != nil {
		return optional.None[models.Product](), f.getErr
	}
	p, ok := f.byID[id]
	if !ok {
		return optional.None[models.Product](), nil
	}
	return optional.Some(p), nil
}

func (f *fakeProducts) InsertProduct(ctx context.Context, p models.Product) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, p)
	return "new-id", f.mutErr
}

func (f *fakeProducts) UpdateProduct(ctx context.Context, p models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, p)
	return f.mutErr
}

func (f *fakeProducts) DeleteProduct(ctx context.Context, id string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	pan, err := f.deletePan, f.mutErr
	f.mu.Unlock()

	if pan != nil {
		panic(pan)
	}
	return err
}

func (f *fakeProducts) counts() (list, total, gets, deletes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.totalCalls, len(f.getCalls), len(f.deleted)
}

// feed is a controllable live source: every value pushed is emitted and
// fail ends the stream with an error.
type feed[T any] struct {
	values chan T
	fail   chan error
}

func newFeed[T any]() *feed[T] {
	return &feed[T]{values: make(chan T), fail: make(chan error)}
}

func (f *feed[T]) stream(ctx context.Context, emit func(T)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-f.fail:
			return err
		case v := <-f.values:
			emit(v)
		}
	}
}

type fakeAuth struct {
	user *models.User
	err  error

	calls int
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (models.User, error) {
	f.calls++
	if f.err != nil {
		return models.User{}, f.err
	}
	u := models.User{ID: "u1", Email: email}
	f.user = &u
	return u, nil
}

func (f *fakeAuth) Register(ctx context.Context, email, password string) (models.User, error) {
	return f.Login(ctx, email, password)
}

func (f *fakeAuth) IsUserLoggedIn() bool                      { return f.user != nil }
func (f *fakeAuth) CurrentUser() optional.Option[models.User] { return optional.FromPtr(f.user) }
func (f *fakeAuth) Logout()                                   { f.user = nil }

func signedIn() *fakeAuth {
	return &fakeAuth{user: &models.User{ID: "u1", Email: "a@b.c"}}
}
