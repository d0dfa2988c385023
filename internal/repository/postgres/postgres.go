package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"client_registry/internal/domain"
	"client_registry/internal/model"
	"client_registry/internal/query"
)

// Коды ошибок postgres
const (
	codeUniqueViolation = "23505"
	codeInvalidText     = "22P02" // например, id не в формате uuid
)

type ClientRepository struct {
	DB *gorm.DB
}

// NewClientRepository создает репозиторий клиентов поверх gorm.
func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{DB: db}
}

// Вставка клиента. ID назначает хук BeforeCreate модели.
func (r *ClientRepository) Create(ctx context.Context, client *model.Client) error {
	return translate(r.DB.WithContext(ctx).Create(client).Error)
}

// Страница клиентов
func (r *ClientRepository) FindMany(ctx context.Context, q query.Query) ([]model.Client, error) {
	clients := []model.Client{}
	err := applyPredicate(r.DB.WithContext(ctx).Model(&model.Client{}), q.Predicate).
		Order(clause.OrderByColumn{Column: clause.Column{Name: q.Sort.Column()}, Desc: q.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&clients).Error
	if err != nil {
		return nil, translate(err)
	}
	return clients, nil
}

// Поиск клиента по id
func (r *ClientRepository) FindByID(ctx context.Context, id string) (*model.Client, error) {
	return r.findBy(ctx, "id", id)
}

// Поиск клиента по email
func (r *ClientRepository) FindByEmail(ctx context.Context, email string) (*model.Client, error) {
	return r.findBy(ctx, model.FieldEmail.Column(), email)
}

// Поиск клиента по cnpj (только цифры)
func (r *ClientRepository) FindByCnpj(ctx context.Context, cnpj string) (*model.Client, error) {
	return r.findBy(ctx, model.FieldCnpj.Column(), cnpj)
}

// Поиск клиента по телефону
func (r *ClientRepository) FindByPhone(ctx context.Context, phone string) (*model.Client, error) {
	return r.findBy(ctx, model.FieldPhone.Column(), phone)
}

// Частичное обновление по id, возвращает запись после изменения
func (r *ClientRepository) Update(ctx context.Context, id string, patch model.Patch) (*model.Client, error) {
	var updated *model.Client
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Client{}).Where("id = ?", id).Updates(patch.Columns(tx.NowFunc()))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		var c model.Client
		if err := tx.Take(&c, "id = ?", id).Error; err != nil {
			return err
		}
		updated = &c
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return updated, nil
}

// Мягкое удаление: gorm выставляет deleted_at
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&model.Client{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Количество клиентов по предикату, пустой предикат - все клиенты
func (r *ClientRepository) Count(ctx context.Context, p query.Predicate) (int64, error) {
	var count int64
	err := applyPredicate(r.DB.WithContext(ctx).Model(&model.Client{}), p).Count(&count).Error
	return count, translate(err)
}

func (r *ClientRepository) findBy(ctx context.Context, column, value string) (*model.Client, error) {
	if value == "" {
		return nil, domain.ErrNotFound
	}
	var c model.Client
	err := r.DB.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).Take(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// applyPredicate добавляет условия выборки. deleted_at IS NULL gorm добавляет сам.
func applyPredicate(db *gorm.DB, p query.Predicate) *gorm.DB {
	if len(p.Equals) > 0 {
		for _, cond := range p.Equals {
			db = db.Where(clause.Eq{Column: clause.Column{Name: cond.Field.Column()}, Value: cond.Value})
		}
		return db
	}

	if p.Search == "" || len(p.SearchFields) == 0 {
		return db
	}

	pattern := "%" + escapeLike(p.Search) + "%"
	exprs := make([]clause.Expression, 0, len(p.SearchFields))
	for _, f := range p.SearchFields {
		exprs = append(exprs, clause.Expr{
			SQL:  "? ILIKE ?",
			Vars: []interface{}{clause.Column{Name: f.Column()}, pattern},
		})
	}
	return db.Where(clause.Or(exprs...))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// translate переводит ошибки gorm и драйверов (pgx, lib/pq) в ошибки domain.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}

	var code, constraint string
	var pgErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgErr):
		code, constraint = pgErr.Code, pgErr.ConstraintName
	case errors.As(err, &pqErr):
		code, constraint = string(pqErr.Code), pqErr.Constraint
	default:
		return err
	}

	switch code {
	case codeUniqueViolation:
		field, ok := model.UniqueIndexes[constraint]
		if !ok {
			return errors.Join(domain.ErrDuplicate, err)
		}
		return &domain.UniqueViolationError{Field: field, Err: err}
	case codeInvalidText:
		return domain.ErrNotFound
	}
	return err
}
