package validation

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"client_registry/internal/domain"
	"client_registry/internal/metrics"
	"client_registry/internal/model"
	"client_registry/pkg/masker"
)

// Finder - поиск среди не удалённых клиентов по уникальным полям.
type Finder interface {
	FindByEmail(ctx context.Context, email string) (*model.Client, error)
	FindByCnpj(ctx context.Context, cnpj string) (*model.Client, error)
	FindByPhone(ctx context.Context, phone string) (*model.Client, error)
}

// UniquenessChecker - предварительная проверка уникальности перед записью.
// Окончательную гарантию дают уникальные индексы хранилища.
type UniquenessChecker struct {
	finder  Finder
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewUniquenessChecker создает проверку уникальности. m может быть nil.
func NewUniquenessChecker(finder Finder, logger *zap.Logger, m *metrics.Metrics) *UniquenessChecker {
	return &UniquenessChecker{
		finder:  finder,
		logger:  logger.Named("UniquenessChecker"),
		metrics: m,
	}
}

// ExistsByField сообщает, занято ли значение поля другим клиентом.
// Пустое значение не проверяется. Запись с id == excludeID не считается конфликтом.
// Ошибка хранилища логгируется и трактуется как "не занято" (fail-open).
func (u *UniquenessChecker) ExistsByField(ctx context.Context, field model.Field, value, excludeID string) bool {
	if value == "" {
		return false
	}

	var find func(context.Context, string) (*model.Client, error)
	switch field {
	case model.FieldEmail:
		find = u.finder.FindByEmail
	case model.FieldCnpj:
		find = u.finder.FindByCnpj
	case model.FieldPhone:
		find = u.finder.FindByPhone
	default:
		u.logger.Warn("uniqueness check for unsupported field", zap.String("field", string(field)))
		return false
	}

	client, err := find(ctx, value)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return false
	case err != nil:
		u.logger.Error("uniqueness check failed, treating value as unique",
			zap.String("field", string(field)),
			zap.String("value", masker.Mask(value)),
			zap.Error(err),
		)
		u.metrics.IncUniquenessFailOpen(string(field))
		return false
	case client == nil:
		return false
	}

	if excludeID != "" && client.ID == excludeID {
		u.logger.Debug("value belongs to the record being updated",
			zap.String("field", string(field)), zap.String("id", excludeID))
		return false
	}

	return true
}
