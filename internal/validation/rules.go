package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"client_registry/internal/model"
	"client_registry/pkg/cnpj"
)

// Rule - одно ограничение на значение поля. Значение уже нормализовано.
type Rule struct {
	Check   func(value string) bool
	Message string
}

var validate = validator.New()

// MaxLen - не больше n символов (руны, не байты).
func MaxLen(n int, message string) Rule {
	return Rule{Check: func(v string) bool { return utf8.RuneCountInString(v) <= n }, Message: message}
}

// MinLen - не меньше n символов.
func MinLen(n int, message string) Rule {
	return Rule{Check: func(v string) bool { return utf8.RuneCountInString(v) >= n }, Message: message}
}

// ExactLen - ровно n символов.
func ExactLen(n int, message string) Rule {
	return Rule{Check: func(v string) bool { return utf8.RuneCountInString(v) == n }, Message: message}
}

// Email - синтаксически корректный адрес (тег email из validator).
func Email(message string) Rule {
	return Rule{Check: func(v string) bool { return validate.Var(v, "email") == nil }, Message: message}
}

// ValidCnpj - контрольные цифры CNPJ сходятся.
func ValidCnpj(message string) Rule {
	return Rule{Check: cnpj.IsValid, Message: message}
}

// fieldSpec описывает проверки одного поля в порядке:
// нормализация -> обязательность -> формат и длина -> доменные проверки -> уникальность.
type fieldSpec struct {
	field     model.Field
	label     string
	required  bool
	normalize func(string) string
	rules     []Rule
	unique    bool
}

func (s fieldSpec) requiredMessage() string {
	return s.label + " is required"
}

// check возвращает сообщения всех нарушенных правил, склеенные через ", ".
func (s fieldSpec) check(value string) string {
	var failed []string
	for _, r := range s.rules {
		if !r.Check(value) {
			failed = append(failed, r.Message)
		}
	}
	return strings.Join(failed, ", ")
}

func trim(v string) string { return strings.TrimSpace(v) }

func normalizeCnpj(v string) string { return cnpj.Normalize(v) }

func maxLenMessage(label string, n int) string {
	return fmt.Sprintf("%s must not exceed %d characters", label, n)
}

// clientFields - каталог полей клиента. Порядок определяет порядок ошибок в ответе.
var clientFields = []fieldSpec{
	{
		field: model.FieldName, label: "Name", required: true, normalize: trim,
		rules: []Rule{MaxLen(255, maxLenMessage("Name", 255))},
	},
	{
		field: model.FieldEmail, label: "Email", normalize: trim, unique: true,
		rules: []Rule{
			Email("Email must be a valid email"),
			MaxLen(255, maxLenMessage("Email", 255)),
		},
	},
	{
		field: model.FieldPhone, label: "Phone", normalize: trim, unique: true,
		rules: []Rule{MaxLen(15, maxLenMessage("Phone", 15))},
	},
	{
		field: model.FieldCnpj, label: "CNPJ", required: true, normalize: normalizeCnpj, unique: true,
		rules: []Rule{
			ExactLen(cnpj.Length, "CNPJ must have exactly 14 digits"),
			ValidCnpj("CNPJ is invalid"),
		},
	},
	{
		field: model.FieldCep, label: "CEP", required: true, normalize: trim,
		rules: []Rule{ExactLen(8, "CEP must be exactly 8 characters")},
	},
	{
		field: model.FieldAddress, label: "Address", required: true, normalize: trim,
		rules: []Rule{MaxLen(255, maxLenMessage("Address", 255))},
	},
	{
		field: model.FieldNumber, label: "Number", required: true, normalize: trim,
		rules: []Rule{MaxLen(10, maxLenMessage("Number", 10))},
	},
	{
		field: model.FieldComplement, label: "Complement", normalize: trim,
		rules: []Rule{MaxLen(255, maxLenMessage("Complement", 255))},
	},
	{
		field: model.FieldNeighborhood, label: "Neighborhood", required: true, normalize: trim,
		rules: []Rule{MaxLen(255, maxLenMessage("Neighborhood", 255))},
	},
	{
		field: model.FieldCity, label: "City", required: true, normalize: trim,
		rules: []Rule{MaxLen(255, maxLenMessage("City", 255))},
	},
	{
		field: model.FieldState, label: "State", required: true, normalize: trim,
		rules: []Rule{ExactLen(2, "State must be exactly 2 characters (e.g., SP, RJ)")},
	},
	{
		field: model.FieldSector, label: "Sector", required: true, normalize: trim,
		rules: []Rule{MaxLen(255, maxLenMessage("Sector", 255))},
	},
}
