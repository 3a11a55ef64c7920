package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// AdminUpdateUserRequest - правка пользователя администратором.
// Поля-указатели: nil значит "не менять".
// Принимает и старые ключи фронта: nombre, correo, rol_id/rol, estado_registro/estado.
type AdminUpdateUserRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Password *string `json:"password,omitempty" validate:"omitempty,is-password"`
	Role     *string `json:"role,omitempty" validate:"omitempty,is-user-role"`
	Status   *string `json:"status,omitempty" validate:"omitempty,is-user-status"`
}

var adminUpdateAliases = map[string]string{
	"name":            "name",
	"nombre":          "name",
	"email":           "email",
	"correo":          "email",
	"password":        "password",
	"contrasena":      "password",
	"role":            "role",
	"role_id":         "role",
	"rol":             "role",
	"rol_id":          "role",
	"status":          "status",
	"estado":          "status",
	"estado_registro": "status",
}

func (r *AdminUpdateUserRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = AdminUpdateUserRequest{}
	for key, value := range raw {
		field, ok := adminUpdateAliases[strings.ToLower(key)]
		if !ok {
			continue
		}
		s, err := scalarString(value)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		if s == nil {
			continue
		}
		switch field {
		case "name":
			r.Name = s
		case "email":
			r.Email = s
		case "password":
			r.Password = s
		case "role":
			r.Role = s
		case "status":
			r.Status = s
		}
	}
	return nil
}

// IsEmpty - в запросе нет ни одного поля, которое можно обновить
func (r *AdminUpdateUserRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Password == nil && r.Role == nil && r.Status == nil
}

// UpdateProfileRequest - правка собственного профиля (без роли и статуса)
type UpdateProfileRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Password        *string `json:"password,omitempty" validate:"omitempty,is-password"`
	CurrentPassword string  `json:"current_password,omitempty"`
}

func (r *UpdateProfileRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Password == nil
}

// UserListQuery - фильтры списка пользователей
type UserListQuery struct {
	Status   string `form:"status" validate:"omitempty,is-user-status"`
	Role     string `form:"role" validate:"omitempty,is-user-role"`
	Search   string `form:"q" validate:"max=100"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type UserListResponse struct {
	Users      []*UserResponse `json:"users"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// scalarString читает JSON-строку, число или bool как строку; null -> nil
func scalarString(raw json.RawMessage) (*string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		s := n.String()
		return &s, nil
	}
	var b bool
	if err := json.Unmarshal(trimmed, &b); err == nil {
		s := fmt.Sprint(b)
		return &s, nil
	}
	return nil, fmt.Errorf("expected a string or number")
}
