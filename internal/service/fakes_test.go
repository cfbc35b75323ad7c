package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"procurement/internal/model"
	"procurement/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repositories. Records are stored by value so callers never share
// pointers with the store, mirroring a round trip through the database.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(_ context.Context, filter repository.UserFilter, page, limit int) ([]model.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Active != nil && u.Active != *filter.Active {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) lookup(id *uuid.UUID) *model.User {
	if id == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[*id]
	if !ok {
		return nil
	}
	return &u
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]model.ProcurementRequest
	order    []uuid.UUID
	users    *fakeUserRepo
}

func newFakeRequestRepo(users *fakeUserRepo) *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[uuid.UUID]model.ProcurementRequest), users: users}
}

func copyRequest(req model.ProcurementRequest) model.ProcurementRequest {
	req.Items = append([]model.RequestItem(nil), req.Items...)
	req.Requester, req.Approver, req.Rejecter = nil, nil, nil
	return req
}

func (r *fakeRequestRepo) Create(_ context.Context, req *model.ProcurementRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = uuid.New()
	for i := range req.Items {
		req.Items[i].ID = uuid.New()
		req.Items[i].RequestID = req.ID
	}
	now := time.Now()
	req.CreatedAt, req.UpdatedAt = now, now
	r.requests[req.ID] = copyRequest(*req)
	r.order = append(r.order, req.ID)
	return nil
}

func (r *fakeRequestRepo) get(id uuid.UUID) (*model.ProcurementRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := copyRequest(req)
	return &cp, nil
}

func (r *fakeRequestRepo) populate(req *model.ProcurementRequest) {
	req.Requester = r.users.lookup(&req.RequesterID)
	req.Approver = r.users.lookup(req.ApprovedBy)
	req.Rejecter = r.users.lookup(req.RejectedBy)
}

func (r *fakeRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProcurementRequest, error) {
	req, err := r.get(id)
	if err != nil {
		return nil, err
	}
	r.populate(req)
	return req, nil
}

func (r *fakeRequestRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.ProcurementRequest, error) {
	return r.get(id)
}

func (r *fakeRequestRepo) List(_ context.Context, filter repository.RequestFilter, page, limit int) ([]model.ProcurementRequest, int64, error) {
	r.mu.Lock()
	var out []model.ProcurementRequest
	for i := len(r.order) - 1; i >= 0; i-- {
		req := r.requests[r.order[i]]
		if filter.RequesterID != nil && req.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.Department != "" && req.Department != filter.Department {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && req.Priority != filter.Priority {
			continue
		}
		out = append(out, copyRequest(req))
	}
	r.mu.Unlock()

	page1 := paginate(out, page, limit)
	for i := range page1 {
		r.populate(&page1[i])
	}
	return page1, int64(len(out)), nil
}

func (r *fakeRequestRepo) Update(_ context.Context, req *model.ProcurementRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.requests[req.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	updated := copyRequest(*req)
	updated.Items = stored.Items
	updated.UpdatedAt = time.Now()
	r.requests[req.ID] = updated
	return nil
}

type fakePurchaseOrderRepo struct {
	mu       sync.Mutex
	orders   map[uuid.UUID]model.PurchaseOrder
	order    []uuid.UUID
	users    *fakeUserRepo
	requests *fakeRequestRepo
}

func newFakePurchaseOrderRepo(users *fakeUserRepo, requests *fakeRequestRepo) *fakePurchaseOrderRepo {
	return &fakePurchaseOrderRepo{orders: make(map[uuid.UUID]model.PurchaseOrder), users: users, requests: requests}
}

func copyOrder(po model.PurchaseOrder) model.PurchaseOrder {
	po.Items = append([]model.PurchaseOrderItem(nil), po.Items...)
	po.Request, po.Creator, po.Deliverer = nil, nil, nil
	return po
}

func (r *fakePurchaseOrderRepo) Create(_ context.Context, po *model.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orders {
		if existing.RequestID == po.RequestID {
			return gorm.ErrDuplicatedKey
		}
	}
	po.ID = uuid.New()
	for i := range po.Items {
		po.Items[i].ID = uuid.New()
		po.Items[i].PurchaseOrderID = po.ID
	}
	now := time.Now()
	po.CreatedAt, po.UpdatedAt = now, now
	r.orders[po.ID] = copyOrder(*po)
	r.order = append(r.order, po.ID)
	return nil
}

func (r *fakePurchaseOrderRepo) get(id uuid.UUID) (*model.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	po, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := copyOrder(po)
	return &cp, nil
}

func (r *fakePurchaseOrderRepo) populate(po *model.PurchaseOrder) {
	if req, err := r.requests.get(po.RequestID); err == nil {
		po.Request = req
	}
	po.Creator = r.users.lookup(&po.CreatedBy)
	po.Deliverer = r.users.lookup(po.DeliveredBy)
}

func (r *fakePurchaseOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	po, err := r.get(id)
	if err != nil {
		return nil, err
	}
	r.populate(po)
	return po, nil
}

func (r *fakePurchaseOrderRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	return r.get(id)
}

func (r *fakePurchaseOrderRepo) List(_ context.Context, filter repository.PurchaseOrderFilter, page, limit int) ([]model.PurchaseOrder, int64, error) {
	r.mu.Lock()
	var out []model.PurchaseOrder
	for i := len(r.order) - 1; i >= 0; i-- {
		po := r.orders[r.order[i]]
		if filter.Status != "" && po.Status != filter.Status {
			continue
		}
		out = append(out, copyOrder(po))
	}
	r.mu.Unlock()

	page1 := paginate(out, page, limit)
	for i := range page1 {
		r.populate(&page1[i])
	}
	return page1, int64(len(out)), nil
}

func (r *fakePurchaseOrderRepo) Update(_ context.Context, po *model.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[po.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	updated := copyOrder(*po)
	updated.Items = stored.Items
	updated.UpdatedAt = time.Now()
	r.orders[po.ID] = updated
	return nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []model.AuditLog
	err     error
}

func (r *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, filter repository.AuditFilter, page, limit int) ([]model.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AuditLog
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		if filter.UserID != nil && e.UserID != *filter.UserID {
			continue
		}
		out = append(out, e)
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r *fakeAuditRepo) snapshot() []model.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.AuditLog(nil), r.entries...)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Publish(event string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}
