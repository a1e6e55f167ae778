package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"fundgate/internal/pkg/appctx"
	"fundgate/internal/service/deposit/domain"
	"fundgate/internal/service/deposit/domain/port"
)

type memRepo struct {
	mu    sync.Mutex
	items map[string]*domain.DepositRequest
}

func newMemRepo(seed ...*domain.DepositRequest) *memRepo {
	r := &memRepo{items: map[string]*domain.DepositRequest{}}
	for _, d := range seed {
		r.items[d.ID] = d
	}
	return r
}

func (r *memRepo) Create(ctx context.Context, d *domain.DepositRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.items[d.ID] = &cp
	return nil
}

func (r *memRepo) FindByID(ctx context.Context, id string) (*domain.DepositRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.items[id]
	if !ok {
		return nil, domain.ErrDepositNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *memRepo) list(keep func(*domain.DepositRequest) bool) []*domain.DepositRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.DepositRequest
	for _, d := range r.items {
		if keep(d) {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memRepo) ListAll(ctx context.Context) ([]*domain.DepositRequest, error) {
	return r.list(func(*domain.DepositRequest) bool { return true }), nil
}

func (r *memRepo) ListByUser(ctx context.Context, userID string) ([]*domain.DepositRequest, error) {
	return r.list(func(d *domain.DepositRequest) bool { return d.UserID == userID }), nil
}

func (r *memRepo) UpdateAdminNotes(ctx context.Context, id, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.items[id]
	if !ok || d.Status != domain.StatusPending {
		return domain.ErrNotPending
	}
	d.AdminNotes = notes
	return nil
}

func (r *memRepo) MarkVoided(ctx context.Context, id, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.items[id]
	if !ok {
		return domain.ErrDepositNotFound
	}
	return d.Void(reason, at)
}

// memProcessor 模拟 process_deposit_request：直接在 memRepo 上做状态流转
type memProcessor struct {
	repo  *memRepo
	calls int
	err   error
}

func (p *memProcessor) Process(ctx context.Context, requestID, adminID string, action domain.Action) (bool, error) {
	p.calls++
	if p.err != nil {
		return false, p.err
	}
	p.repo.mu.Lock()
	defer p.repo.mu.Unlock()
	d, ok := p.repo.items[requestID]
	if !ok {
		return false, domain.ErrDepositNotFound
	}
	var err error
	if action == domain.ActionApprove {
		err = d.Approve(adminID, time.Now())
	} else {
		err = d.Reject(adminID, d.AdminNotes, time.Now())
	}
	return err == nil, nil
}

type memStorage struct {
	missing map[string]bool
	failAll error
	objects map[string][]byte
	removed []string
}

func newMemStorage() *memStorage {
	return &memStorage{missing: map[string]bool{}, objects: map[string][]byte{}}
}

func (s *memStorage) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	if s.failAll != nil {
		return "", s.failAll
	}
	if s.missing[bucket] {
		return "", fmt.Errorf("%w: %s", port.ErrBucketNotFound, bucket)
	}
	s.objects[bucket+"/"+path] = data
	return "https://storage.example/" + bucket + "/" + path, nil
}

func (s *memStorage) Remove(ctx context.Context, bucket, path string) error {
	delete(s.objects, bucket+"/"+path)
	s.removed = append(s.removed, bucket+"/"+path)
	return nil
}

type memPromos struct {
	quotes       map[string]port.AppliedPromo
	quoteErr     error
	uses         map[string]string
	discounts    map[string]string
	next         int
	incrementErr error
	increments   int
}

func newMemPromos() *memPromos {
	return &memPromos{quotes: map[string]port.AppliedPromo{}, uses: map[string]string{}, discounts: map[string]string{}}
}

func (p *memPromos) Quote(ctx context.Context, userID string, req port.PromoRequest) (port.AppliedPromo, error) {
	if p.quoteErr != nil {
		return port.AppliedPromo{}, p.quoteErr
	}
	q, ok := p.quotes[req.Code]
	if !ok {
		return port.AppliedPromo{}, fmt.Errorf("%w: Invalid promo code", domain.ErrPromoRejected)
	}
	return q, nil
}

func (p *memPromos) RecordUse(ctx context.Context, userID string, promo port.AppliedPromo) (string, error) {
	p.next++
	id := fmt.Sprintf("use-%d", p.next)
	p.uses[id] = promo.PromoCodeID
	p.discounts[id] = promo.DiscountAmount.StringFixed(2)
	return id, nil
}

func (p *memPromos) DeleteUse(ctx context.Context, useID string) error {
	delete(p.uses, useID)
	delete(p.discounts, useID)
	return nil
}

func (p *memPromos) IncrementUsage(ctx context.Context, promoCodeID string) error {
	if p.incrementErr != nil {
		return p.incrementErr
	}
	p.increments++
	return nil
}

type memEvents struct {
	mu     sync.Mutex
	err    error
	events []domain.DepositEvent
}

func (e *memEvents) PublishDepositEvent(ctx context.Context, ev domain.DepositEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return e.err
}

func (e *memEvents) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.events))
	for i, ev := range e.events {
		out[i] = ev.Type
	}
	return out
}

type memGuard struct {
	mu   sync.Mutex
	held map[string]bool
}

func (g *memGuard) Acquire(ctx context.Context, requestID string) (func(context.Context), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held == nil {
		g.held = map[string]bool{}
	}
	if g.held[requestID] {
		return nil, false, nil
	}
	g.held[requestID] = true
	return func(context.Context) {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.held, requestID)
	}, true, nil
}

type memSessions struct {
	invalidated []string
}

func (m *memSessions) Invalidate(userID string) {
	m.invalidated = append(m.invalidated, userID)
}

type memProfiles map[string]appctx.Profile

func (m memProfiles) LoadProfile(ctx context.Context, userID string) (appctx.Profile, error) {
	p, ok := m[userID]
	if !ok {
		return appctx.Profile{}, errors.New("profile not found")
	}
	return p, nil
}

func (m memProfiles) LoadRoles(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}
