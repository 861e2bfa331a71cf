package student

import (
	"time"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/user"
)

// Levels
const (
	LevelUndergraduate = "undergraduate"
	LevelGraduate      = "graduate"
)

// Student is an academic profile backed by a base User account.
type Student struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	StudentNumber string    `json:"student_number"`
	Program       string    `json:"program"`
	Level         string    `json:"level"`
	EntryYear     string    `json:"entry_year"` // e.g. "2023-2024"
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC

	User user.User `json:"user"`
}

// NewStudent contains information needed to create a Student and their base
// User account in one go.
type NewStudent struct {
	user.NewUser
	StudentNumber string `json:"student_number" validate:"required"`
	Program       string `json:"program" validate:"required"`
	Level         string `json:"level" validate:"required,oneof=undergraduate graduate"`
	EntryYear     string `json:"entry_year" validate:"required"`
}

func (ns *NewStudent) Validate(usrSvc *user.Service, svc *Service) error {
	ns.StudentNumber = core.CleanString(ns.StudentNumber)
	ns.Program = core.CleanString(ns.Program)
	ns.Level = core.CleanString(ns.Level, true /* lower */)
	ns.EntryYear = core.CleanString(ns.EntryYear)

	if err := ns.NewUser.Validate(usrSvc); err != nil {
		return err
	}
	if err := core.Validate.StructExcept(ns, "NewUser"); err != nil {
		return err
	}
	return svc.CheckNumberUniqueness(ns.StudentNumber)
}

// UpdateStudent defines what information may be provided to modify a Student profile.
type UpdateStudent struct {
	Program string `json:"program"`
	Level   string `json:"level" validate:"omitempty,oneof=undergraduate graduate"`
}

func (us *UpdateStudent) Validate() error {
	us.Program = core.CleanString(us.Program)
	us.Level = core.CleanString(us.Level, true /* lower */)
	return core.Validate.Struct(us)
}

// GetFilter looks up a single Student; fields are tried in order, first non-empty wins.
type GetFilter struct {
	ID            string
	UserID        string
	StudentNumber string
}

// QueryFilter filters the paginated student listing.
type QueryFilter struct {
	Search  string `query:"search"` // matches name, username, email or student number
	Program string `query:"program"`
	Level   string `query:"level"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Program = core.CleanString(qf.Program)
	qf.Level = core.CleanString(qf.Level, true /* lower */)
}
