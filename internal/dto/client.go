package dto

import (
	"client_registry/internal/model"
)

// CreateClient - тело запроса на создание клиента.
// cnpj можно передавать с форматированием: "12.345.678/0001-90".
type CreateClient struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Cnpj         string `json:"cnpj"`
	Cep          string `json:"cep"`
	Address      string `json:"address"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	Sector       string `json:"sector"`
}

// Fields возвращает значения тела запроса по полям клиента.
func (c CreateClient) Fields() map[model.Field]string {
	return map[model.Field]string{
		model.FieldName:         c.Name,
		model.FieldEmail:        c.Email,
		model.FieldPhone:        c.Phone,
		model.FieldCnpj:         c.Cnpj,
		model.FieldCep:          c.Cep,
		model.FieldAddress:      c.Address,
		model.FieldNumber:       c.Number,
		model.FieldComplement:   c.Complement,
		model.FieldNeighborhood: c.Neighborhood,
		model.FieldCity:         c.City,
		model.FieldState:        c.State,
		model.FieldSector:       c.Sector,
	}
}

// UpdateClient - тело запроса на обновление. Пустые поля не меняются.
type UpdateClient CreateClient

func (u UpdateClient) Fields() map[model.Field]string {
	return CreateClient(u).Fields()
}

// Page - страница клиентов.
type Page struct {
	Data       []model.Client `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Sort       string         `json:"sort"`
	OrderBy    string         `json:"orderBy"`
	TotalPages int            `json:"totalPages"`
}
