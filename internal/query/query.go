// Package query собирает из параметров списка (страница, сортировка, фильтр, поиск)
// единое описание запроса, не зависящее от хранилища.
package query

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"client_registry/internal/model"
	"client_registry/pkg/cnpj"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	DefaultSort  = model.FieldCreatedAt
	MaxLimit     = 100

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Options - параметры списка клиентов как они приходят от клиента API.
type Options struct {
	Page    int               `json:"page" validate:"gte=0"`
	Limit   int               `json:"limit" validate:"gte=0,lte=100"`
	Sort    string            `json:"sort" validate:"omitempty,sortable"`
	OrderBy string            `json:"orderBy" validate:"omitempty,oneof=asc desc"`
	Where   map[string]string `json:"where"`
	Search  string            `json:"search"`
}

// Condition - точное совпадение поля со значением.
type Condition struct {
	Field model.Field
	Value string
}

// Predicate - условие выборки. Если задан Equals, условия объединяются через AND.
// Иначе, если задан Search, запись подходит при вхождении строки (без учета регистра)
// хотя бы в одно из SearchFields. Пустой предикат подходит под все записи.
type Predicate struct {
	Equals       []Condition
	Search       string
	SearchFields []model.Field
}

// IsEmpty - предикат подходит под все записи.
func (p Predicate) IsEmpty() bool {
	return len(p.Equals) == 0 && p.Search == ""
}

// Query - итоговое описание запроса страницы.
type Query struct {
	Predicate Predicate
	Sort      model.Field
	Desc      bool
	Page      int
	Offset    int
	Limit     int
}

// OrderBy возвращает направление сортировки в виде asc/desc.
func (q Query) OrderBy() string {
	if q.Desc {
		return OrderDesc
	}
	return OrderAsc
}

// OptionError - некорректный параметр списка.
type OptionError struct {
	Field   string
	Message string
}

// OptionsError - все некорректные параметры списка.
type OptionsError []OptionError

func (e OptionsError) Error() string {
	parts := make([]string, len(e))
	for i, oe := range e {
		parts[i] = oe.Field + ": " + oe.Message
	}
	return "invalid list options: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("sortable", func(fl validator.FieldLevel) bool {
		return model.Field(fl.Field().String()).In(model.SortableFields)
	})
	return v
}

// Build проверяет параметры, подставляет значения по умолчанию и строит Query.
func Build(opts Options) (Query, error) {
	if err := checkOptions(opts); err != nil {
		return Query{}, err
	}

	q := Query{
		Page:  opts.Page,
		Limit: opts.Limit,
		Sort:  model.Field(opts.Sort),
		Desc:  opts.OrderBy == OrderDesc,
	}
	if q.Page == 0 {
		q.Page = DefaultPage
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Sort == "" {
		q.Sort = DefaultSort
	}
	// offset не должен переполнять int
	if q.Page-1 > math.MaxInt/q.Limit {
		return Query{}, OptionsError{{Field: "page", Message: "Page is too large"}}
	}
	q.Offset = (q.Page - 1) * q.Limit

	switch {
	case len(opts.Where) > 0:
		q.Predicate = whereFilter(opts.Where)
	case strings.TrimSpace(opts.Search) != "":
		q.Predicate = SearchFilter(opts.Search)
	}

	return q, nil
}

// SearchFilter строит OR-предикат по всем полям поиска.
func SearchFilter(search string) Predicate {
	return Predicate{
		Search:       strings.TrimSpace(search),
		SearchFields: model.SearchableFields,
	}
}

func whereFilter(where map[string]string) Predicate {
	p := Predicate{Equals: make([]Condition, 0, len(where))}
	for k, v := range where {
		f := model.Field(k)
		// cnpj хранится только цифрами
		if f == model.FieldCnpj {
			v = cnpj.Normalize(v)
		}
		p.Equals = append(p.Equals, Condition{Field: f, Value: v})
	}
	// порядок map случаен, а SQL и логи должны быть стабильны
	sort.Slice(p.Equals, func(i, j int) bool { return p.Equals[i].Field < p.Equals[j].Field })
	return p
}

func checkOptions(opts Options) error {
	var issues OptionsError

	if err := validate.Struct(opts); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			issues = append(issues, optionError(fe))
		}
	}

	keys := make([]string, 0, len(opts.Where))
	for k := range opts.Where {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !model.Field(k).In(model.FilterableFields) {
			issues = append(issues, OptionError{
				Field:   "where." + k,
				Message: fmt.Sprintf("Where must use one of: %s", strings.Join(model.FieldNames(model.FilterableFields), ", ")),
			})
		}
	}

	issues = append(issues, checkWhereValues(opts.Where)...)

	if len(issues) > 0 {
		return issues
	}
	return nil
}

// checkWhereValues проверяет формат значений email и cnpj в where.
func checkWhereValues(where map[string]string) []OptionError {
	var issues []OptionError
	if v, ok := where[string(model.FieldEmail)]; ok && validate.Var(v, "required,email") != nil {
		issues = append(issues, OptionError{Field: "where.email", Message: "Email must be a valid email"})
	}
	if v, ok := where[string(model.FieldCnpj)]; ok && !cnpj.IsValid(v) {
		issues = append(issues, OptionError{Field: "where.cnpj", Message: "Cnpj must be a valid CNPJ"})
	}
	return issues
}

func optionError(fe validator.FieldError) OptionError {
	switch fe.Field() {
	case "Sort":
		return OptionError{
			Field:   "sort",
			Message: "Sort must be one of: " + strings.Join(model.FieldNames(model.SortableFields), ", "),
		}
	case "OrderBy":
		return OptionError{Field: "orderBy", Message: "OrderBy must be 'asc' or 'desc'"}
	case "Page":
		return OptionError{Field: "page", Message: "Page must be a positive number"}
	case "Limit":
		if fe.Tag() == "lte" {
			return OptionError{Field: "limit", Message: fmt.Sprintf("Limit must not exceed %d", MaxLimit)}
		}
		return OptionError{Field: "limit", Message: "Limit must be a positive number"}
	}
	return OptionError{Field: fe.Field(), Message: fe.Error()}
}
