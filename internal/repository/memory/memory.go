// Package memory - хранилище клиентов в памяти процесса на go-cache.
// Используется при STORAGE=memory и в тестах сервиса.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"client_registry/internal/domain"
	"client_registry/internal/model"
	"client_registry/internal/query"
)

type entry struct {
	client model.Client
	seq    uint64
}

// ClientRepository хранит записи без срока жизни. Удалённые записи остаются
// в кэше с выставленным DeletedAt и не видны методам поиска.
type ClientRepository struct {
	mu    sync.Mutex
	items *cache.Cache
	seq   uint64
	now   func() time.Time
}

type Option func(*ClientRepository)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(r *ClientRepository) { r.now = now }
}

// NewClientRepository создает пустое хранилище.
func NewClientRepository(opts ...Option) *ClientRepository {
	r := &ClientRepository{
		items: cache.New(cache.NoExpiration, 0),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create назначает id и временные метки и сохраняет копию клиента.
func (r *ClientRepository) Create(ctx context.Context, client *model.Client) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(client, ""); err != nil {
		return err
	}

	now := r.now()
	client.ID = uuid.NewString()
	client.CreatedAt = now
	client.UpdatedAt = now
	client.DeletedAt = gorm.DeletedAt{}

	r.seq++
	r.items.Set(client.ID, &entry{client: *client, seq: r.seq}, cache.NoExpiration)
	return nil
}

// FindMany фильтрует, сортирует и режет страницу по offset/limit.
func (r *ClientRepository) FindMany(ctx context.Context, q query.Query) ([]model.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	matched := r.active(q.Predicate)
	r.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		c := compare(&matched[i].client, &matched[j].client, q.Sort)
		if c == 0 {
			return matched[i].seq < matched[j].seq
		}
		if q.Desc {
			return c > 0
		}
		return c < 0
	})

	if q.Offset < 0 || q.Offset >= len(matched) {
		return []model.Client{}, nil
	}
	end := len(matched)
	if q.Limit > 0 && q.Offset+q.Limit < end {
		end = q.Offset + q.Limit
	}

	out := make([]model.Client, 0, end-q.Offset)
	for _, e := range matched[q.Offset:end] {
		out = append(out, e.client)
	}
	return out, nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id string) (*model.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := e.client
	return &c, nil
}

func (r *ClientRepository) FindByEmail(ctx context.Context, email string) (*model.Client, error) {
	return r.findBy(ctx, model.FieldEmail, email)
}

func (r *ClientRepository) FindByCnpj(ctx context.Context, cnpj string) (*model.Client, error) {
	return r.findBy(ctx, model.FieldCnpj, cnpj)
}

func (r *ClientRepository) FindByPhone(ctx context.Context, phone string) (*model.Client, error) {
	return r.findBy(ctx, model.FieldPhone, phone)
}

// Update применяет патч к копии и сохраняет ее, если уникальность не нарушена.
func (r *ClientRepository) Update(ctx context.Context, id string, patch model.Patch) (*model.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}

	updated := e.client
	patch.Apply(&updated, r.now())
	if err := r.checkUnique(&updated, id); err != nil {
		return nil, err
	}

	r.items.Set(id, &entry{client: updated, seq: e.seq}, cache.NoExpiration)
	return &updated, nil
}

// Delete выставляет DeletedAt, запись остается в кэше.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.get(id)
	if !ok {
		return domain.ErrNotFound
	}

	deleted := e.client
	deleted.DeletedAt = gorm.DeletedAt{Time: r.now(), Valid: true}
	r.items.Set(id, &entry{client: deleted, seq: e.seq}, cache.NoExpiration)
	return nil
}

// Count считает не удалённые записи, подходящие под p.
func (r *ClientRepository) Count(ctx context.Context, p query.Predicate) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	return int64(len(r.active(p))), nil
}

// get возвращает не удалённую запись. Вызывается под r.mu.
func (r *ClientRepository) get(id string) (*entry, bool) {
	v, ok := r.items.Get(id)
	if !ok {
		return nil, false
	}
	e := v.(*entry)
	if e.client.IsDeleted() {
		return nil, false
	}
	return e, true
}

// active возвращает копии не удалённых записей, подходящих под p. Вызывается под r.mu.
func (r *ClientRepository) active(p query.Predicate) []entry {
	items := r.items.Items()
	out := make([]entry, 0, len(items))
	for _, it := range items {
		e := it.Object.(*entry)
		if e.client.IsDeleted() || !p.Matches(&e.client) {
			continue
		}
		out = append(out, *e)
	}
	return out
}

func (r *ClientRepository) findBy(ctx context.Context, field model.Field, value string) (*model.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if value == "" {
		return nil, domain.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range r.items.Items() {
		e := it.Object.(*entry)
		if e.client.IsActive() && e.client.Value(field) == value {
			c := e.client
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

// checkUnique повторяет частичные уникальные индексы postgres:
// email, phone и cnpj уникальны среди не удалённых записей. Вызывается под r.mu.
func (r *ClientRepository) checkUnique(c *model.Client, excludeID string) error {
	for _, it := range r.items.Items() {
		e := it.Object.(*entry)
		if e.client.IsDeleted() || e.client.ID == excludeID {
			continue
		}
		for _, f := range []model.Field{model.FieldEmail, model.FieldPhone, model.FieldCnpj} {
			v := c.Value(f)
			if v != "" && e.client.Value(f) == v {
				return &domain.UniqueViolationError{Field: f, Err: domain.ErrDuplicate}
			}
		}
	}
	return nil
}

func compare(a, b *model.Client, f model.Field) int {
	switch f {
	case model.FieldCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case model.FieldUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return strings.Compare(a.Value(f), b.Value(f))
}
