package handler

import (
	"github.com/mercadito/marketplace-api/internal/core/domain"
)

type messageResponse struct {
	Msg string `json:"msg"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type validationErrorResponse struct {
	Errors []string `json:"errors"`
}

type accountResponse struct {
	Msg     string          `json:"msg"`
	Account *domain.Account `json:"account"`
}

type accountListResponse struct {
	Total    int               `json:"total"`
	Accounts []*domain.Account `json:"accounts"`
}

type itemResponse struct {
	Msg  string       `json:"msg"`
	Item *domain.Item `json:"item"`
}

type itemPageResponse struct {
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Items []*domain.Item `json:"items"`
}
