package domain

import (
	"context"

	"client_registry/internal/model"
	"client_registry/internal/query"
)

//go:generate mockgen -source=repo.go -destination=mocks/repo_mock.go -package=mocks ClientRepo

// ClientRepo - хранилище клиентов. Все методы видят только не удалённые записи.
// Если запись не найдена, методы возвращают ErrNotFound.
// Нарушение уникальности email, phone или cnpj возвращается как *UniqueViolationError.
type ClientRepo interface {
	// Создание клиента. ID и временные метки назначает хранилище.
	Create(ctx context.Context, client *model.Client) error

	// Страница клиентов по предикату, сортировке, offset и limit из q.
	FindMany(ctx context.Context, q query.Query) ([]model.Client, error)

	FindByID(ctx context.Context, id string) (*model.Client, error)
	FindByEmail(ctx context.Context, email string) (*model.Client, error)
	FindByCnpj(ctx context.Context, cnpj string) (*model.Client, error)
	FindByPhone(ctx context.Context, phone string) (*model.Client, error)

	// Частичное обновление, возвращает клиента после изменения.
	Update(ctx context.Context, id string, patch model.Patch) (*model.Client, error)

	// Удаление клиента (мягкое: выставляется deleted_at).
	Delete(ctx context.Context, id string) error

	// Количество клиентов, подходящих под предикат. Пустой предикат - все клиенты,
	// то есть обычный count(); фильтр нужен, чтобы total в FindMany совпадал со страницей.
	Count(ctx context.Context, p query.Predicate) (int64, error)
}
