package course

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/rekodi/core"
)

// Degree requirement categories
const (
	CategoryCore       = "core"
	CategoryMajor      = "major"
	CategoryElective   = "elective"
	CategoryGeneralEdu = "general_education"
)

var Categories = []string{CategoryCore, CategoryMajor, CategoryElective, CategoryGeneralEdu}

// Course is a catalog entry.
type Course struct {
	ID          string      `json:"id"`
	Code        string      `json:"code"`
	Title       string      `json:"title"`
	Description null.String `json:"description,omitempty"`
	Credits     float64     `json:"credits"`
	Department  string      `json:"department"`
	Category    string      `json:"category"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC
}

// NewCourse contains information needed to create a catalog entry.
type NewCourse struct {
	Code        string  `json:"code" validate:"required"`
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Credits     float64 `json:"credits" validate:"gt=0"`
	Department  string  `json:"department" validate:"required"`
	Category    string  `json:"category" validate:"required,oneof=core major elective general_education"`
}

func (nc *NewCourse) Validate(svc *Service) error {
	nc.Code = core.CleanString(nc.Code)
	nc.Title = core.CleanString(nc.Title)
	nc.Department = core.CleanString(nc.Department)
	nc.Category = core.CleanString(nc.Category, true /* lower */)
	if err := core.Validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckCodeUniqueness(nc.Code)
}

// UpdateCourse defines what information may be provided to modify a catalog entry.
type UpdateCourse struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Credits     float64 `json:"credits" validate:"omitempty,gt=0"`
	Department  string  `json:"department"`
	Category    string  `json:"category" validate:"omitempty,oneof=core major elective general_education"`
}

func (uc *UpdateCourse) Validate() error {
	uc.Title = core.CleanString(uc.Title)
	uc.Department = core.CleanString(uc.Department)
	uc.Category = core.CleanString(uc.Category, true /* lower */)
	return core.Validate.Struct(uc)
}

// GetFilter looks up a single Course; fields are tried in order, first non-empty wins.
type GetFilter struct {
	ID   string
	Code string
}
