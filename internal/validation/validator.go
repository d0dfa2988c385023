// Package validation проверяет входные данные клиента: правила полей,
// контрольную сумму CNPJ и предварительную проверку уникальности.
package validation

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"client_registry/internal/domain"
	"client_registry/internal/dto"
	"client_registry/internal/model"
)

// Shape определяет набор обязательных полей.
type Shape int

const (
	// CreateShape - обязательные поля должны быть заполнены.
	CreateShape Shape = iota
	// UpdateShape - все поля необязательны, пустое значение означает "не менять".
	UpdateShape
)

type Validator struct {
	unique *UniquenessChecker
}

// New создает валидатор. Без unique проверка уникальности пропускается.
func New(unique *UniquenessChecker) *Validator {
	return &Validator{unique: unique}
}

type fieldResult struct {
	message  string
	conflict bool
}

// Validate проверяет все поля и возвращает нормализованные значения заполненных полей.
// Ошибки собираются по всем полям сразу; ошибка имеет тип *domain.Error.
// Уникальность проверяется только для полей, прошедших остальные правила,
// и не учитывает запись excludeID.
func (v *Validator) Validate(ctx context.Context, shape Shape, raw map[model.Field]string, excludeID string) (map[model.Field]string, error) {
	results := make([]fieldResult, len(clientFields))
	values := make(map[model.Field]string, len(clientFields))

	var g errgroup.Group
	for i, spec := range clientFields {
		rawValue := raw[spec.field]
		if strings.TrimSpace(rawValue) == "" {
			if spec.required && shape == CreateShape {
				results[i].message = spec.requiredMessage()
			}
			continue
		}

		value := spec.normalize(rawValue)
		if msg := spec.check(value); msg != "" {
			results[i].message = msg
			continue
		}
		values[spec.field] = value

		if spec.unique && v.unique != nil {
			g.Go(func() error {
				if v.unique.ExistsByField(ctx, spec.field, value, excludeID) {
					results[i] = fieldResult{message: domain.ConflictMessage(spec.field), conflict: true}
				}
				return nil
			})
		}
	}
	// проверки уникальности не возвращают ошибок (fail-open)
	_ = g.Wait()

	var (
		fieldErrors []domain.FieldError
		conflicts   int
	)
	for i, r := range results {
		if r.message == "" {
			continue
		}
		fieldErrors = append(fieldErrors, domain.FieldError{Field: string(clientFields[i].field), Message: r.message})
		if r.conflict {
			conflicts++
		}
	}
	if len(fieldErrors) > 0 {
		return nil, domain.NewValidation(fieldErrors, conflicts)
	}
	return values, nil
}

// ValidateCreate проверяет данные нового клиента и собирает модель для сохранения.
func (v *Validator) ValidateCreate(ctx context.Context, in dto.CreateClient) (*model.Client, error) {
	values, err := v.Validate(ctx, CreateShape, in.Fields(), "")
	if err != nil {
		return nil, err
	}
	return &model.Client{
		Name:         values[model.FieldName],
		Email:        model.StringPtr(values[model.FieldEmail]),
		Phone:        model.StringPtr(values[model.FieldPhone]),
		Cnpj:         values[model.FieldCnpj],
		Cep:          values[model.FieldCep],
		Address:      values[model.FieldAddress],
		Number:       values[model.FieldNumber],
		Complement:   values[model.FieldComplement],
		Neighborhood: values[model.FieldNeighborhood],
		City:         values[model.FieldCity],
		State:        values[model.FieldState],
		Sector:       values[model.FieldSector],
	}, nil
}

// ValidateUpdate проверяет переданные поля обновления клиента id.
func (v *Validator) ValidateUpdate(ctx context.Context, id string, in dto.UpdateClient) (model.Patch, error) {
	values, err := v.Validate(ctx, UpdateShape, in.Fields(), id)
	if err != nil {
		return nil, err
	}
	return model.Patch(values), nil
}
