package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/electrokart/electrokart_api/internal/catalog"
	"github.com/electrokart/electrokart_api/internal/models"
	"github.com/electrokart/electrokart_api/internal/utils"
)

var testEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func product(id int, name, brand, category string, price float64) models.Product {
	p := models.Product{
		ID:           id,
		Name:         name,
		Brand:        brand,
		Price:        price,
		Description:  strings.ToLower(name),
		CountInStock: 10,
		CreatedAt:    testEpoch.Add(time.Duration(id) * time.Hour),
	}
	if category != "" {
		p.Category = &models.CategoryRef{ID: categoryIDs[category], Name: category}
	}
	return p
}

var categoryIDs = map[string]int{
	"Laptops":     1,
	"Smartphones": 2,
	"Accessories": 3,
	"Electronics": 4,
}

// fakeProducts is an in-memory ProductRepository.
type fakeProducts struct {
	mu     sync.Mutex
	items  []models.Product
	err    error
	finds  int
	nextID int
}

func newFakeProducts(items ...models.Product) *fakeProducts {
	return &fakeProducts{items: items, nextID: 100}
}

func (f *fakeProducts) Find(_ context.Context, q catalog.Query) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++
	if f.err != nil {
		return nil, f.err
	}
	return q.Run(append([]models.Product(nil), f.items...)), nil
}

func (f *fakeProducts) Count(_ context.Context, filter catalog.Filter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return len(catalog.Apply(filter, f.items)), nil
}

func (f *fakeProducts) GetByID(_ context.Context, id int) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.items {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, utils.ErrProductNotFound
}

func (f *fakeProducts) Create(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = testEpoch.Add(time.Duration(p.ID) * time.Hour)
	f.items = append(f.items, *p)
	return nil
}

func (f *fakeProducts) Update(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == p.ID {
			f.items[i] = *p
			return nil
		}
	}
	return utils.ErrProductNotFound
}

func (f *fakeProducts) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return utils.ErrProductNotFound
}

func (f *fakeProducts) findCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finds
}

// fakeReviews enforces one review per user and product and keeps the
// product's rating in sync, like the SQL store.
type fakeReviews struct {
	products *fakeProducts
	reviews  []models.Review
}

func (f *fakeReviews) ListByProduct(_ context.Context, productID int) ([]models.Review, error) {
	var out []models.Review
	for _, r := range f.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviews) Add(ctx context.Context, review *models.Review) error {
	p, err := f.products.GetByID(ctx, review.ProductID)
	if err != nil {
		return err
	}
	sum, n := 0, 0
	for _, r := range f.reviews {
		if r.ProductID != review.ProductID {
			continue
		}
		if r.UserID == review.UserID {
			return utils.ErrAlreadyReviewed
		}
		sum += r.Rating
		n++
	}
	review.ID = len(f.reviews) + 1
	f.reviews = append(f.reviews, *review)
	p.NumReviews = n + 1
	p.Rating = float64(sum+review.Rating) / float64(n+1)
	return f.products.Update(ctx, p)
}

type fakeCoPurchases map[int][]int

func (f fakeCoPurchases) CoPurchased(_ context.Context, productID, limit int) ([]int, error) {
	ids := f[productID]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// fakeOrders is an in-memory OrderRepository.
type fakeOrders struct {
	orders []models.Order
}

func (f *fakeOrders) Create(_ context.Context, o *models.Order) error {
	o.ID = len(f.orders) + 1
	f.orders = append(f.orders, *o)
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id int) (*models.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, utils.ErrOrderNotFound
}

func (f *fakeOrders) ListByUser(_ context.Context, userID int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) List(context.Context) ([]models.Order, error) {
	return f.orders, nil
}

func (f *fakeOrders) MarkPaid(_ context.Context, id int, at time.Time) error {
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].IsPaid, f.orders[i].PaidAt = true, &at
			return nil
		}
	}
	return utils.ErrOrderNotFound
}

func (f *fakeOrders) MarkDelivered(_ context.Context, id int, at time.Time) error {
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].IsDelivered, f.orders[i].DeliveredAt = true, &at
			return nil
		}
	}
	return utils.ErrOrderNotFound
}

func (f *fakeOrders) CountOrders(context.Context) (int, error) {
	return len(f.orders), nil
}

func (f *fakeOrders) TotalSales(context.Context) (float64, error) {
	total := 0.0
	for _, o := range f.orders {
		total += o.TotalPrice
	}
	return total, nil
}

// fakeUsers is an in-memory UserRepository.
type fakeUsers struct {
	users []models.User
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, utils.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, utils.ErrUserNotFound
}

func (f *fakeUsers) List(context.Context) ([]models.User, error) {
	out := append([]models.User(nil), f.users...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	if _, err := f.GetByEmail(context.Background(), user.Email); err == nil {
		return utils.ErrEmailTaken
	}
	user.ID = len(f.users) + 1
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUsers) Update(_ context.Context, user *models.User) error {
	for i := range f.users {
		if f.users[i].ID == user.ID {
			f.users[i] = *user
			return nil
		}
	}
	return utils.ErrUserNotFound
}
