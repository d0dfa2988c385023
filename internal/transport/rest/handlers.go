package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"client_registry/internal/domain"
	"client_registry/internal/dto"
	"client_registry/internal/query"
)

const maxBodyBytes = 1 << 20

// Create - POST /clients
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in dto.CreateClient
	if err := decodeBody(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	client, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Client created successfully", client)
}

// FindMany - GET /clients
func (h *Handler) FindMany(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page, err := h.service.FindMany(r.Context(), opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// FindByID - GET /clients/{id}
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	client, err := h.service.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Client found successfully", client)
}

// FindByEmail - GET /clients/email/{email}
func (h *Handler) FindByEmail(w http.ResponseWriter, r *http.Request) {
	client, err := h.service.FindByEmail(r.Context(), pathParam(r, "email"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Client found successfully", client)
}

// FindByCnpj - GET /clients/cnpj/{cnpj}
func (h *Handler) FindByCnpj(w http.ResponseWriter, r *http.Request) {
	client, err := h.service.FindByCnpj(r.Context(), pathParam(r, "cnpj"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Client found successfully", client)
}

// FindByPhone - GET /clients/phone/{phone}
func (h *Handler) FindByPhone(w http.ResponseWriter, r *http.Request) {
	client, err := h.service.FindByPhone(r.Context(), pathParam(r, "phone"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Client found successfully", client)
}

// Update - PUT /clients/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in dto.UpdateClient
	if err := decodeBody(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	client, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Client updated successfully", client)
}

// Delete - DELETE /clients/{id}, ответ 204 без тела
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathParam декодирует параметр пути: в email и cnpj могут быть %40 и %2F.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := "Request body must be a valid JSON object"
		if errors.Is(err, io.EOF) {
			msg = "Request body is required"
		} else if strings.HasPrefix(err.Error(), "json: unknown field") {
			msg = strings.TrimPrefix(err.Error(), "json: ")
		}
		return domain.NewValidation([]domain.FieldError{{Field: "body", Message: msg}}, 0)
	}
	return nil
}

// parseListOptions читает page, limit, sort, orderBy, search и where[field]=value.
func parseListOptions(values url.Values) (query.Options, error) {
	opts := query.Options{
		Sort:    values.Get("sort"),
		OrderBy: values.Get("orderBy"),
		Search:  values.Get("search"),
	}

	var issues []domain.FieldError
	parseInt := func(name, label string) int {
		raw := values.Get(name)
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			issues = append(issues, domain.FieldError{Field: name, Message: label + " must be a positive number"})
			return 0
		}
		return n
	}
	opts.Page = parseInt("page", "Page")
	opts.Limit = parseInt("limit", "Limit")

	for key, vals := range values {
		if !strings.HasPrefix(key, "where[") || !strings.HasSuffix(key, "]") || len(vals) == 0 {
			continue
		}
		field := strings.TrimSuffix(strings.TrimPrefix(key, "where["), "]")
		if opts.Where == nil {
			opts.Where = make(map[string]string)
		}
		opts.Where[field] = vals[0]
	}

	if len(issues) > 0 {
		return query.Options{}, domain.NewValidation(issues, 0)
	}
	return opts, nil
}
