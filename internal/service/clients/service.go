// Package clients - сценарии работы с клиентами: создание, поиск, список,
// обновление и удаление поверх domain.ClientRepo.
package clients

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"client_registry/internal/domain"
	"client_registry/internal/dto"
	"client_registry/internal/metrics"
	"client_registry/internal/model"
	"client_registry/internal/query"
	"client_registry/internal/validation"
	"client_registry/pkg/cnpj"
	"client_registry/pkg/masker"
)

type Service struct {
	repo      domain.ClientRepo
	logger    *zap.Logger
	metrics   *metrics.Metrics
	unique    *validation.UniquenessChecker
	validator *validation.Validator
}

type Option func(*Service)

// WithMetrics включает счетчик fail-open проверок уникальности.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService создает сервис клиентов поверх хранилища repo.
func NewService(repo domain.ClientRepo, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: logger.Named("ClientService"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.unique = validation.NewUniquenessChecker(repo, logger, s.metrics)
	s.validator = validation.New(s.unique)
	return s
}

// Create проверяет данные, сохраняет клиента и возвращает его публичное представление.
func (s *Service) Create(ctx context.Context, in dto.CreateClient) (model.PublicClient, error) {
	const op = "Create"

	client, err := s.validator.ValidateCreate(ctx, in)
	if err != nil {
		s.logger.Info("client rejected", zap.String("op", op), zap.Error(err))
		return model.PublicClient{}, err
	}

	if err := s.repo.Create(ctx, client); err != nil {
		return model.PublicClient{}, s.storageError(op, err)
	}

	s.logger.Info("client created",
		zap.String("op", op),
		zap.String("id", client.ID),
		zap.String("cnpj", cnpj.Format(client.Cnpj)),
		zap.String("email", masker.Mask(deref(client.Email))),
	)
	return client.Public(), nil
}

// FindByID - поиск клиента по id.
func (s *Service) FindByID(ctx context.Context, id string) (*model.Client, error) {
	return s.findBy(ctx, "FindByID", "id", id, s.repo.FindByID)
}

// FindByEmail - поиск клиента по email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*model.Client, error) {
	return s.findBy(ctx, "FindByEmail", "email", email, s.repo.FindByEmail)
}

// FindByCnpj принимает cnpj как с форматированием, так и только цифрами.
func (s *Service) FindByCnpj(ctx context.Context, raw string) (*model.Client, error) {
	return s.findBy(ctx, "FindByCnpj", "cnpj", cnpj.Normalize(raw), s.repo.FindByCnpj)
}

// FindByPhone - поиск клиента по телефону.
func (s *Service) FindByPhone(ctx context.Context, phone string) (*model.Client, error) {
	return s.findBy(ctx, "FindByPhone", "phone", phone, s.repo.FindByPhone)
}

// FindMany возвращает страницу клиентов. Пустая страница - не ошибка.
func (s *Service) FindMany(ctx context.Context, opts query.Options) (*dto.Page, error) {
	const op = "FindMany"

	q, err := query.Build(opts)
	if err != nil {
		return nil, optionsError(err)
	}

	var (
		total   int64
		clients []model.Client
	)
	// подсчет и выборка независимы
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, q.Predicate)
		return err
	})
	g.Go(func() error {
		var err error
		clients, err = s.repo.FindMany(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.storageError(op, err)
	}
	if clients == nil {
		clients = []model.Client{}
	}

	s.logger.Debug("clients listed",
		zap.String("op", op),
		zap.Int("page", q.Page),
		zap.Int("limit", q.Limit),
		zap.Int64("total", total),
	)

	return &dto.Page{
		Data:       clients,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		Sort:       string(q.Sort),
		OrderBy:    q.OrderBy(),
		TotalPages: totalPages(total, q.Limit),
	}, nil
}

// Update меняет только переданные поля клиента id.
func (s *Service) Update(ctx context.Context, id string, in dto.UpdateClient) (model.PublicClient, error) {
	const op = "Update"

	if _, err := s.FindByID(ctx, id); err != nil {
		return model.PublicClient{}, err
	}

	patch, err := s.validator.ValidateUpdate(ctx, id, in)
	if err != nil {
		s.logger.Info("update rejected", zap.String("op", op), zap.String("id", id), zap.Error(err))
		return model.PublicClient{}, err
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return model.PublicClient{}, s.storageError(op, err)
	}

	s.logger.Info("client updated", zap.String("op", op), zap.String("id", id), zap.String("fields", patch.Fields()))
	return updated.Public(), nil
}

// Delete удаляет клиента id (мягкое удаление).
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "Delete"

	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storageError(op, err)
	}

	s.logger.Info("client deleted", zap.String("op", op), zap.String("id", id))
	return nil
}

// Count - количество не удалённых клиентов.
func (s *Service) Count(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx, query.Predicate{})
	if err != nil {
		return 0, s.storageError("Count", err)
	}
	return n, nil
}

// ExistsByEmail - занят ли email. При ошибке хранилища false.
func (s *Service) ExistsByEmail(ctx context.Context, email string) bool {
	return s.unique.ExistsByField(ctx, model.FieldEmail, email, "")
}

func (s *Service) ExistsByCnpj(ctx context.Context, raw string) bool {
	return s.unique.ExistsByField(ctx, model.FieldCnpj, cnpj.Normalize(raw), "")
}

func (s *Service) ExistsByPhone(ctx context.Context, phone string) bool {
	return s.unique.ExistsByField(ctx, model.FieldPhone, phone, "")
}

func (s *Service) findBy(
	ctx context.Context,
	op, arg, key string,
	find func(context.Context, string) (*model.Client, error),
) (*model.Client, error) {
	if key == "" {
		return nil, domain.NewMissingArgument(arg)
	}

	client, err := find(ctx, key)
	if err != nil {
		return nil, s.storageError(op, err)
	}
	return client, nil
}

// storageError переводит ошибки хранилища в *domain.Error.
// Неизвестные ошибки логгируются и возвращаются обернутыми.
func (s *Service) storageError(op string, err error) error {
	var uv *domain.UniqueViolationError
	switch {
	case errors.As(err, &uv):
		s.logger.Info("unique constraint violated", zap.String("op", op), zap.String("field", string(uv.Field)))
		return domain.NewConflict(uv.Field, err)
	case errors.Is(err, domain.ErrDuplicate):
		return &domain.Error{Code: domain.CodeConflict, Message: "Client already registered", Err: err}
	case errors.Is(err, domain.ErrNotFound):
		return domain.NewNotFound(err)
	}

	s.logger.Error("storage error", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

func optionsError(err error) error {
	var oe query.OptionsError
	if !errors.As(err, &oe) {
		return err
	}
	fields := make([]domain.FieldError, len(oe))
	for i, e := range oe {
		fields[i] = domain.FieldError{Field: e.Field, Message: e.Message}
	}
	return domain.NewValidation(fields, 0)
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	l := int64(limit)
	pages := total / l
	if total%l != 0 {
		pages++
	}
	return int(pages)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
