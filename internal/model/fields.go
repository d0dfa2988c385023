package model

import (
	"strings"
	"time"
)

// Field - имя поля клиента в API (camelCase).
type Field string

const (
	FieldID           Field = "id"
	FieldName         Field = "name"
	FieldEmail        Field = "email"
	FieldPhone        Field = "phone"
	FieldCnpj         Field = "cnpj"
	FieldCep          Field = "cep"
	FieldAddress      Field = "address"
	FieldNumber       Field = "number"
	FieldComplement   Field = "complement"
	FieldNeighborhood Field = "neighborhood"
	FieldCity         Field = "city"
	FieldState        Field = "state"
	FieldSector       Field = "sector"
	FieldCreatedAt    Field = "createdAt"
	FieldUpdatedAt    Field = "updatedAt"
)

// SearchableFields - поля, по которым идет полнотекстовый поиск (OR, без учета регистра).
var SearchableFields = []Field{
	FieldName, FieldEmail, FieldCnpj, FieldPhone, FieldSector, FieldCep,
	FieldAddress, FieldNumber, FieldNeighborhood, FieldCity, FieldState, FieldComplement,
}

// SortableFields - поля, допустимые для сортировки.
var SortableFields = append(append([]Field{}, SearchableFields...), FieldCreatedAt, FieldUpdatedAt)

// FilterableFields - поля, допустимые в where (точное совпадение).
var FilterableFields = []Field{
	FieldName, FieldEmail, FieldPhone, FieldCnpj, FieldSector, FieldCep, FieldAddress,
	FieldNumber, FieldNeighborhood, FieldCity, FieldState, FieldComplement,
}

// Column возвращает имя колонки в БД.
func (f Field) Column() string {
	switch f {
	case FieldCreatedAt:
		return "created_at"
	case FieldUpdatedAt:
		return "updated_at"
	}
	return string(f)
}

func (f Field) In(set []Field) bool {
	for _, s := range set {
		if s == f {
			return true
		}
	}
	return false
}

// FieldNames - для сообщений об ошибках и тегов oneof.
func FieldNames(set []Field) []string {
	names := make([]string, len(set))
	for i, f := range set {
		names[i] = string(f)
	}
	return names
}

// Patch - частичное обновление клиента. Поля, которых нет в патче, не меняются.
type Patch map[Field]string

// Columns возвращает набор колонок для gorm Updates, включая updated_at.
func (p Patch) Columns(now time.Time) map[string]interface{} {
	cols := make(map[string]interface{}, len(p)+1)
	for f, v := range p {
		cols[f.Column()] = v
	}
	cols[FieldUpdatedAt.Column()] = now
	return cols
}

// Apply применяет патч к клиенту в памяти.
func (p Patch) Apply(c *Client, now time.Time) {
	for f, v := range p {
		switch f {
		case FieldName:
			c.Name = v
		case FieldEmail:
			c.Email = StringPtr(v)
		case FieldPhone:
			c.Phone = StringPtr(v)
		case FieldCnpj:
			c.Cnpj = v
		case FieldCep:
			c.Cep = v
		case FieldAddress:
			c.Address = v
		case FieldNumber:
			c.Number = v
		case FieldComplement:
			c.Complement = v
		case FieldNeighborhood:
			c.Neighborhood = v
		case FieldCity:
			c.City = v
		case FieldState:
			c.State = v
		case FieldSector:
			c.Sector = v
		}
	}
	c.UpdatedAt = now
}

// Fields возвращает поля патча в стабильном порядке (для логов).
func (p Patch) Fields() string {
	names := make([]string, 0, len(p))
	for _, f := range SortableFields {
		if _, ok := p[f]; ok {
			names = append(names, string(f))
		}
	}
	return strings.Join(names, ",")
}
