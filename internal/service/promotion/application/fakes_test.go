package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"fundgate/internal/service/promotion/domain"
)

type memRepo struct {
	mu         sync.Mutex
	promos     map[string]*domain.PromoCode
	uses       map[string]*domain.PromoCodeUse
	insertErrs []error
}

func newMemRepo(seed ...*domain.PromoCode) *memRepo {
	r := &memRepo{promos: map[string]*domain.PromoCode{}, uses: map[string]*domain.PromoCodeUse{}}
	for _, p := range seed {
		r.promos[p.ID] = p
	}
	return r
}

func (r *memRepo) Insert(_ context.Context, p *domain.PromoCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.insertErrs) > 0 {
		err := r.insertErrs[0]
		r.insertErrs = r.insertErrs[1:]
		if err != nil {
			return err
		}
	}
	snapshot := *p
	r.promos[p.ID] = &snapshot
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*domain.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.promos[id]
	if !ok {
		return nil, domain.ErrPromoNotFound
	}
	snapshot := *p
	return &snapshot, nil
}

func (r *memRepo) List(_ context.Context) ([]*domain.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.PromoCode, 0, len(r.promos))
	for _, p := range r.promos {
		snapshot := *p
		out = append(out, &snapshot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memRepo) SetActive(_ context.Context, id string, active bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.promos[id]
	if !ok {
		return domain.ErrPromoNotFound
	}
	p.IsActive = active
	p.UpdatedAt = at
	return nil
}

func (r *memRepo) RecordUse(_ context.Context, use *domain.PromoCodeUse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uses[use.ID] = use
	return nil
}

func (r *memRepo) DeleteUse(_ context.Context, useID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.uses, useID)
	return nil
}

type memProcedures struct {
	codes      []string
	generated  int
	validation domain.Validation
	err        error
	repo       *memRepo
	validated  []string
}

func (p *memProcedures) GenerateCode(_ context.Context, length int) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	code := p.codes[p.generated%len(p.codes)]
	p.generated++
	return code, nil
}

func (p *memProcedures) Validate(_ context.Context, code, userID, planType string) (domain.Validation, error) {
	p.validated = append(p.validated, code+"|"+userID+"|"+planType)
	if p.err != nil {
		return nil, p.err
	}
	return p.validation, nil
}

func (p *memProcedures) IncrementUsage(_ context.Context, promoID string) error {
	p.repo.mu.Lock()
	defer p.repo.mu.Unlock()
	promo, ok := p.repo.promos[promoID]
	if !ok || !promo.IsActive || promo.UsedCount >= promo.MaxUses {
		return domain.ErrPromoExhausted
	}
	promo.UsedCount++
	return nil
}

type annualOnly struct{}

func (annualOnly) Applies(c domain.Checkout) (bool, error) {
	return c.BillingCycle == "annual", nil
}
