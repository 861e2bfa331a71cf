package core

import (
	"context"
	"database/sql"
)

type (
	DBExecutor interface {
		Exec(query string, args ...interface{}) (sql.Result, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		Query(query string, args ...interface{}) (*sql.Rows, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
		QueryRow(query string, args ...interface{}) *sql.Row
		QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	}

	DB interface {
		DBExecutor

		Begin() (*sql.Tx, error)
		BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error)
	}

	DBTransactor interface {
		DBExecutor

		Commit() error
		Rollback() error
	}
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// PageQuery carries pagination inputs from list endpoints down to repositories.
type PageQuery struct {
	Page     int `query:"page"`
	PageSize int `query:"page_size"`
}

func (pq *PageQuery) Clean() {
	if pq.Page < 1 {
		pq.Page = 1
	}
	if pq.PageSize < 1 || pq.PageSize > 100 {
		pq.PageSize = 25
	}
}

func (pq PageQuery) Offset() int { return (pq.Page - 1) * pq.PageSize }

// Pagination is the list-envelope metadata returned alongside items.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

func NewPagination(pq PageQuery, totalItems int) Pagination {
	totalPages := totalItems / pq.PageSize
	if totalItems%pq.PageSize != 0 {
		totalPages++
	}
	return Pagination{
		CurrentPage: pq.Page,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		HasNext:     pq.Page < totalPages,
		HasPrev:     pq.Page > 1,
	}
}
