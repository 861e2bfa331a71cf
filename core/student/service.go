package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/user"
)

var (
	// errors
	ErrNotFound     = errors.New("student not found")
	ErrNumberExists = errors.New("a student with this student number already exists")
)

type (
	Repository interface {
		CheckNumberUniqueness(ctx context.Context, number string, excludedStudents ...Student) error
		// CreateStudentWithUser writes the base User and the Student profile in
		// a single transaction so partial failure cannot leave an orphaned user.
		CreateStudentWithUser(ctx context.Context, usr user.User, st Student) (Student, error)
		GetStudent(ctx context.Context, filter GetFilter) (Student, error)
		// QueryStudents returns one page of students and the unpaginated total.
		QueryStudents(ctx context.Context, filter *QueryFilter, page core.PageQuery) ([]Student, int, error)
		UpdateStudent(ctx context.Context, st Student) (Student, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckNumberUniqueness(number string, exclStudents ...Student) error {
	if err := svc.repo.CheckNumberUniqueness(context.Background(), number, exclStudents...); err != nil {
		if errors.Cause(err) == ErrNumberExists {
			return core.NewValidationError(err, core.FieldError{Field: "student_number", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Create provisions the base User (student role) and the Student profile atomically.
func (svc *Service) Create(ns NewStudent) (Student, error) {
	now := time.Now().UTC()

	usr := user.User{
		Name:      ns.Name,
		Username:  ns.Username,
		Email:     ns.Email,
		IsActive:  true,
		Roles:     []string{user.RoleStudent},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(ns.Password); err != nil {
		return Student{}, errors.Wrap(err, "setting password")
	}

	st := Student{
		StudentNumber: ns.StudentNumber,
		Program:       ns.Program,
		Level:         ns.Level,
		EntryYear:     ns.EntryYear,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateStudentWithUser(context.Background(), usr, st)
}

func (svc *Service) GetByID(id string) (Student, error) {
	return svc.repo.GetStudent(context.Background(), GetFilter{ID: id})
}

func (svc *Service) GetByUserID(userID string) (Student, error) {
	return svc.repo.GetStudent(context.Background(), GetFilter{UserID: userID})
}

func (svc *Service) GetByNumber(number string) (Student, error) {
	return svc.repo.GetStudent(context.Background(), GetFilter{StudentNumber: core.CleanString(number)})
}

// Query returns one page of students plus the pagination envelope metadata.
func (svc *Service) Query(filter *QueryFilter, page core.PageQuery) ([]Student, core.Pagination, error) {
	page.Clean()
	students, total, err := svc.repo.QueryStudents(context.Background(), filter, page)
	if err != nil {
		return nil, core.Pagination{}, err
	}
	return students, core.NewPagination(page, total), nil
}

func (svc *Service) Update(id string, us UpdateStudent) (Student, error) {
	orig, err := svc.repo.GetStudent(context.Background(), GetFilter{ID: id})
	if err != nil {
		return Student{}, err
	}

	st := orig
	if us.Program != "" {
		st.Program = us.Program
	}
	if us.Level != "" {
		st.Level = us.Level
	}
	st.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(context.Background(), st)
}
