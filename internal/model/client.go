package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client - юридическое лицо (клиент). Уникальность email, phone и cnpj
// обеспечивается частичными индексами только среди не удалённых записей.
type Client struct {
	ID           string         `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string         `json:"name" gorm:"type:varchar(255);not null"`
	Email        *string        `json:"email" gorm:"type:varchar(255);uniqueIndex:clients_email_active_unique,where:deleted_at IS NULL"`
	Phone        *string        `json:"phone" gorm:"type:varchar(15);uniqueIndex:clients_phone_active_unique,where:deleted_at IS NULL"`
	Cnpj         string         `json:"cnpj" gorm:"type:varchar(14);not null;uniqueIndex:clients_cnpj_active_unique,where:deleted_at IS NULL"`
	Cep          string         `json:"cep" gorm:"type:varchar(8);not null"`
	Address      string         `json:"address" gorm:"type:varchar(255);not null"`
	Number       string         `json:"number" gorm:"type:varchar(10);not null"`
	Complement   string         `json:"complement" gorm:"type:varchar(255)"`
	Neighborhood string         `json:"neighborhood" gorm:"type:varchar(255);not null"`
	City         string         `json:"city" gorm:"type:varchar(255);not null"`
	State        string         `json:"state" gorm:"type:varchar(2);not null"`
	Sector       string         `json:"sector" gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"deletedAt" gorm:"index"`
}

// Имена уникальных индексов, по ним ошибки БД переводятся в ошибку конкретного поля.
var UniqueIndexes = map[string]Field{
	"clients_email_active_unique": FieldEmail,
	"clients_phone_active_unique": FieldPhone,
	"clients_cnpj_active_unique":  FieldCnpj,
}

// BeforeCreate назначает uuid, если id не задан.
func (c *Client) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (c *Client) IsActive() bool {
	return !c.DeletedAt.Valid
}

func (c *Client) IsDeleted() bool {
	return c.DeletedAt.Valid
}

// Value возвращает значение поля в строковом виде. Для nil email/phone - пустая строка.
func (c *Client) Value(f Field) string {
	switch f {
	case FieldID:
		return c.ID
	case FieldName:
		return c.Name
	case FieldEmail:
		return deref(c.Email)
	case FieldPhone:
		return deref(c.Phone)
	case FieldCnpj:
		return c.Cnpj
	case FieldCep:
		return c.Cep
	case FieldAddress:
		return c.Address
	case FieldNumber:
		return c.Number
	case FieldComplement:
		return c.Complement
	case FieldNeighborhood:
		return c.Neighborhood
	case FieldCity:
		return c.City
	case FieldState:
		return c.State
	case FieldSector:
		return c.Sector
	case FieldCreatedAt:
		return c.CreatedAt.UTC().Format(time.RFC3339Nano)
	case FieldUpdatedAt:
		return c.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return ""
}

// PublicClient - представление клиента для ответа API, без служебных полей.
type PublicClient struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        *string   `json:"email"`
	Phone        *string   `json:"phone"`
	Cnpj         string    `json:"cnpj"`
	Cep          string    `json:"cep"`
	Address      string    `json:"address"`
	Number       string    `json:"number"`
	Complement   string    `json:"complement"`
	Neighborhood string    `json:"neighborhood"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Sector       string    `json:"sector"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Public возвращает представление клиента для ответа API.
func (c *Client) Public() PublicClient {
	return PublicClient{
		ID:           c.ID,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Cnpj:         c.Cnpj,
		Cep:          c.Cep,
		Address:      c.Address,
		Number:       c.Number,
		Complement:   c.Complement,
		Neighborhood: c.Neighborhood,
		City:         c.City,
		State:        c.State,
		Sector:       c.Sector,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr возвращает nil для пустой строки.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
