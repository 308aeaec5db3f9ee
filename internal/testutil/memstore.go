package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	orderdto "github.com/fekuna/omnipos-replenishment-service/internal/order/dto"
	productdto "github.com/fekuna/omnipos-replenishment-service/internal/product/dto"
)

type key struct {
	tenant string
	id     string
}

// MemStore holds products and orders in memory with the same uniqueness
// rules as the Postgres schema. It satisfies product.Repository and
// order.Repository through its Products and Orders views.
type MemStore struct {
	mu sync.Mutex

	products    map[key]model.Product
	productSeq  map[key]int
	orders      map[key]model.Order
	orderSeq    map[key]int
	sequences   map[string]int64
	insertCount int
}

func NewMemStore() *MemStore {
	return &MemStore{
		products:   map[key]model.Product{},
		productSeq: map[key]int{},
		orders:     map[key]model.Order{},
		orderSeq:   map[key]int{},
		sequences:  map[string]int64{},
	}
}

func (s *MemStore) Products() *MemProducts { return &MemProducts{s: s} }
func (s *MemStore) Orders() *MemOrders     { return &MemOrders{s: s} }

type MemProducts struct {
	s *MemStore
}

func (r *MemProducts) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *MemProducts) Create(ctx context.Context, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := key{p.TenantID, p.Batch}
	if _, ok := r.s.products[k]; ok {
		return model.ErrBatchExists
	}
	r.s.insertCount++
	r.s.products[k] = *p
	r.s.productSeq[k] = r.s.insertCount
	return nil
}

func (r *MemProducts) FindByBatch(ctx context.Context, tenantID, batch string) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[key{tenantID, batch}]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *MemProducts) FindByBatchForUpdate(ctx context.Context, tenantID, batch string) (*model.Product, error) {
	return r.FindByBatch(ctx, tenantID, batch)
}

func (r *MemProducts) FindAll(ctx context.Context, f *productdto.ProductFilters) ([]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q := strings.ToLower(f.SearchQuery)
	out := []model.Product{}
	for k, p := range r.s.products {
		if k.tenant != f.TenantID {
			continue
		}
		if f.QuantityBelow > 0 && p.Quantity >= f.QuantityBelow {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Batch), q) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return r.s.productSeq[key{out[i].TenantID, out[i].Batch}] < r.s.productSeq[key{out[j].TenantID, out[j].Batch}]
	})
	return out, nil
}

func (r *MemProducts) UpdateQuantity(ctx context.Context, tenantID, batch string, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := key{tenantID, batch}
	p, ok := r.s.products[k]
	if !ok {
		return model.ErrProductNotFound
	}
	p.Quantity = quantity
	p.UpdatedAt = time.Now()
	r.s.products[k] = p
	return nil
}

func (r *MemProducts) Delete(ctx context.Context, tenantID, batch string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := key{tenantID, batch}
	if _, ok := r.s.products[k]; !ok {
		return model.ErrBatchNotFound
	}
	delete(r.s.products, k)
	delete(r.s.productSeq, k)
	return nil
}

type MemOrders struct {
	s *MemStore
}

func (r *MemOrders) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *MemOrders) Create(ctx context.Context, o *model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := key{o.TenantID, o.OrderID}
	if _, ok := r.s.orders[k]; ok {
		return model.ErrOrderIDExists
	}
	if o.Status == model.OrderStatusDraft {
		for other, existing := range r.s.orders {
			if other.tenant == o.TenantID && existing.Batch == o.Batch && existing.IsDraft() {
				return model.ErrDraftExists
			}
		}
	}
	r.s.insertCount++
	r.s.orders[k] = *o
	r.s.orderSeq[k] = r.s.insertCount
	return nil
}

func (r *MemOrders) FindByID(ctx context.Context, tenantID, orderID string) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[key{tenantID, orderID}]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *MemOrders) FindDraftByBatch(ctx context.Context, tenantID, batch string) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for k, o := range r.s.orders {
		if k.tenant == tenantID && o.Batch == batch && o.IsDraft() {
			return &o, nil
		}
	}
	return nil, nil
}

func (r *MemOrders) FindAll(ctx context.Context, f *orderdto.OrderFilters) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []model.Order{}
	for k, o := range r.s.orders {
		if k.tenant != f.TenantID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.Batch != "" && o.Batch != f.Batch {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		return r.s.orderSeq[key{out[i].TenantID, out[i].OrderID}] < r.s.orderSeq[key{out[j].TenantID, out[j].OrderID}]
	})
	return out, nil
}

func (r *MemOrders) Count(ctx context.Context, tenantID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for k := range r.s.orders {
		if k.tenant == tenantID {
			n++
		}
	}
	return n, nil
}

func (r *MemOrders) NextSequence(ctx context.Context, tenantID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.sequences[tenantID]++
	return r.s.sequences[tenantID], nil
}

func (r *MemOrders) UpdateQuantity(ctx context.Context, tenantID, orderID string, quantity int, source model.OrderSource) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := key{tenantID, orderID}
	o, ok := r.s.orders[k]
	if !ok {
		return model.ErrOrderNotFound
	}
	o.RequestedQty = quantity
	o.Source = source
	o.UpdatedAt = time.Now()
	r.s.orders[k] = o
	return nil
}

func (r *MemOrders) UpdateStatus(ctx context.Context, tenantID, orderID string, status model.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := key{tenantID, orderID}
	o, ok := r.s.orders[k]
	if !ok {
		return model.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.s.orders[k] = o
	return nil
}
