package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core"
)

var (
	// errors
	ErrNotFound   = errors.New("course not found")
	ErrCodeExists = errors.New("a course with this code already exists")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string, excludedCourses ...Course) error
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourse(ctx context.Context, filter GetFilter) (Course, error)
		QueryCourses(ctx context.Context, ordering []core.DBOrdering) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckCodeUniqueness(code string, exclCourses ...Course) error {
	if err := svc.repo.CheckCodeUniqueness(context.Background(), code, exclCourses...); err != nil {
		if errors.Cause(err) == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Code:       nc.Code,
		Title:      nc.Title,
		Credits:    nc.Credits,
		Department: nc.Department,
		Category:   nc.Category,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if nc.Description != "" {
		crs.Description.SetValid(nc.Description)
	}
	return svc.repo.CreateCourse(context.Background(), crs)
}

func (svc *Service) GetByID(id string) (Course, error) {
	return svc.repo.GetCourse(context.Background(), GetFilter{ID: id})
}

func (svc *Service) GetByCode(code string) (Course, error) {
	return svc.repo.GetCourse(context.Background(), GetFilter{Code: core.CleanString(code)})
}

func (svc *Service) QueryAll(ordering ...core.DBOrdering) ([]Course, error) {
	return svc.repo.QueryCourses(context.Background(), ordering)
}

func (svc *Service) Update(id string, uc UpdateCourse) (Course, error) {
	orig, err := svc.repo.GetCourse(context.Background(), GetFilter{ID: id})
	if err != nil {
		return Course{}, err
	}

	crs := orig
	if uc.Title != "" {
		crs.Title = uc.Title
	}
	if uc.Description != "" {
		crs.Description.SetValid(uc.Description)
	}
	if uc.Credits > 0 {
		crs.Credits = uc.Credits
	}
	if uc.Department != "" {
		crs.Department = uc.Department
	}
	if uc.Category != "" {
		crs.Category = uc.Category
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(context.Background(), crs)
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeleteCoursesByID(context.Background(), ids...)
}
