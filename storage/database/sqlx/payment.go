package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/payment"
)

type dbPayment struct {
	ID           string      `db:"id"`
	StudentID    string      `db:"student_id"`
	EnrollmentID null.String `db:"enrollment_id"`
	Amount       float64     `db:"amount"`
	Method       string      `db:"method"`
	Reference    string      `db:"reference"`
	Status       string      `db:"status"`
	PaidAt       time.Time   `db:"paid_at"`
	CreatedAt    time.Time   `db:"created_at"`
}

func (p dbPayment) toCore() payment.Payment {
	return payment.Payment{
		ID:           p.ID,
		StudentID:    p.StudentID,
		EnrollmentID: p.EnrollmentID,
		Amount:       p.Amount,
		Method:       p.Method,
		Reference:    p.Reference,
		Status:       p.Status,
		PaidAt:       p.PaidAt,
		CreatedAt:    p.CreatedAt,
	}
}

type paymentRepository struct {
	db *sqlx.DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *sqlx.DB) *paymentRepository {
	return &paymentRepository{db: db}
}

func (repo paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	p.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO payment (id, student_id, enrollment_id, amount, method, reference, status, paid_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.StudentID, p.EnrollmentID, p.Amount, p.Method, p.Reference, p.Status, p.PaidAt, p.CreatedAt,
	)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return p, nil
}

func (repo paymentRepository) GetPaymentByID(ctx context.Context, id string) (payment.Payment, error) {
	var p dbPayment
	if err := repo.db.GetContext(ctx, &p, `SELECT * FROM payment WHERE id = $1`, id); err != nil {
		return payment.Payment{}, trapNoRowsErr(err, payment.ErrNotFound, "getting payment")
	}
	return p.toCore(), nil
}

func (repo paymentRepository) QueryPayments(ctx context.Context, filter *payment.QueryFilter, ordering []core.DBOrdering) ([]payment.Payment, error) {
	query := `SELECT * FROM payment`
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.StudentID != "" {
			conds = append(conds, "student_id = "+arg(filter.StudentID))
		}
		if filter.Status != "" {
			conds = append(conds, "status = "+arg(filter.Status))
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering, "paid_at DESC")

	var rows []dbPayment
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	payments := make([]payment.Payment, 0, len(rows))
	for _, p := range rows {
		payments = append(payments, p.toCore())
	}
	return payments, nil
}
