package handler

import (
	"github.com/prbusiness/dashboard/internal/core/access"
	"github.com/prbusiness/dashboard/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type loginForm struct {
	PhoneNumber string `form:"phoneNumber" validate:"required,min=5,max=20"`
	Password    string `form:"password"    validate:"required"`
}

type switchRoleForm struct {
	Role string `form:"role" json:"role" validate:"required"`
}

type navigationResponse struct {
	Mode        access.Mode       `json:"mode"`
	CurrentRole domain.Role       `json:"currentRole,omitempty"`
	Roles       []domain.RoleInfo `json:"roles"`
	Entries     []access.Entry    `json:"entries"`
}

type sessionEventsResponse struct {
	Events []domain.SessionEvent `json:"events"`
}
