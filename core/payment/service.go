package payment

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/enrollment"
	"github.com/trezcool/rekodi/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("payment not found")
)

type (
	Repository interface {
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		GetPaymentByID(ctx context.Context, id string) (Payment, error)
		QueryPayments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Payment, error)
	}

	Service struct {
		repo       Repository
		studentSvc *student.Service
		enrSvc     *enrollment.Service
		mailSvc    core.EmailService
	}
)

func NewService(repo Repository, studentSvc *student.Service, enrSvc *enrollment.Service, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, studentSvc: studentSvc, enrSvc: enrSvc, mailSvc: mailSvc}
}

// Create records a confirmed payment, allocates it to the enrollment's paid
// amount when one is referenced, and emails the student a receipt.
func (svc *Service) Create(np NewPayment) (Payment, error) {
	st, err := svc.studentSvc.GetByID(np.StudentID)
	if err != nil {
		return Payment{}, errors.Wrap(err, "finding student")
	}

	now := time.Now().UTC()
	p := Payment{
		StudentID: st.ID,
		Amount:    np.Amount,
		Method:    np.Method,
		Reference: np.Reference,
		Status:    StatusConfirmed,
		PaidAt:    now,
		CreatedAt: now,
	}
	if np.EnrollmentID != "" {
		if _, err := svc.enrSvc.RecordPayment(np.EnrollmentID, np.Amount); err != nil {
			return Payment{}, errors.Wrap(err, "allocating payment to enrollment")
		}
		p.EnrollmentID.SetValid(np.EnrollmentID)
	}

	p, err = svc.repo.CreatePayment(context.Background(), p)
	if err != nil {
		return Payment{}, err
	}

	if st.User.Email != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:      []mail.Address{{Name: st.User.Name, Address: st.User.Email}},
			Subject: "Payment received",
			TextContent: fmt.Sprintf(
				"Hi %s,\n\nWe received your payment of %.2f (%s). Reference: %s.",
				st.User.Name, p.Amount, p.Method, p.Reference),
		})
	}
	return p, nil
}

func (svc *Service) GetByID(id string) (Payment, error) {
	return svc.repo.GetPaymentByID(context.Background(), id)
}

func (svc *Service) Query(filter *QueryFilter, ordering ...core.DBOrdering) ([]Payment, error) {
	return svc.repo.QueryPayments(context.Background(), filter, ordering)
}
