package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/student"
	"github.com/trezcool/rekodi/core/user"
)

type studentRepository struct {
	db      *studentTable
	userTbl *userTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db.student, userTbl: db.user}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		students = append(students, *s)
	}
	return students
}

func (repo *studentRepository) CheckNumberUniqueness(_ context.Context, number string, excludedStudents ...student.Student) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]bool, len(excludedStudents))
	for _, s := range excludedStudents {
		excluded[s.ID] = true
	}
	for _, st := range repo.query() {
		if st.StudentNumber == number && !excluded[st.ID] {
			return student.ErrNumberExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudentWithUser(_ context.Context, usr user.User, st student.Student) (student.Student, error) {
	repo.userTbl.Lock()
	defer repo.userTbl.Unlock()
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, u := range repo.userTbl.table {
		if u.Username == usr.Username && usr.Username != "" {
			return student.Student{}, user.ErrUsernameExists
		}
		if u.Email == usr.Email && usr.Email != "" {
			return student.Student{}, user.ErrEmailExists
		}
	}
	for _, s := range repo.db.table {
		if s.StudentNumber == st.StudentNumber {
			return student.Student{}, student.ErrNumberExists
		}
	}

	usr.ID = uuid.New().String()
	st.ID = uuid.New().String()
	st.UserID = usr.ID
	st.User = usr
	repo.userTbl.table[usr.ID] = &usr
	repo.db.table[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, filter student.GetFilter) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if st, ok := repo.db.table[filter.ID]; ok {
			return repo.withUser(*st), nil
		}
		return student.Student{}, student.ErrNotFound
	}
	for _, st := range repo.query() {
		switch {
		case filter.UserID != "" && st.UserID == filter.UserID:
			return repo.withUser(st), nil
		case filter.StudentNumber != "" && st.StudentNumber == filter.StudentNumber:
			return repo.withUser(st), nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) withUser(st student.Student) student.Student {
	repo.userTbl.RLock()
	defer repo.userTbl.RUnlock()
	if usr, ok := repo.userTbl.table[st.UserID]; ok {
		st.User = *usr
	}
	return st
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter *student.QueryFilter, page core.PageQuery) ([]student.Student, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := repo.query()
	for i := range students {
		students[i] = repo.withUser(students[i])
	}
	sort.Slice(students, func(i, j int) bool { return students[i].StudentNumber < students[j].StudentNumber })

	if filter != nil {
		filtered := make([]student.Student, 0, len(students))
		for _, st := range students {
			if filter.Search != "" {
				search := strings.ToLower(filter.Search)
				if !strings.Contains(strings.ToLower(st.User.Name), search) &&
					!strings.Contains(strings.ToLower(st.User.Username), search) &&
					!strings.Contains(strings.ToLower(st.User.Email), search) &&
					!strings.Contains(strings.ToLower(st.StudentNumber), search) {
					continue
				}
			}
			if filter.Program != "" && st.Program != filter.Program {
				continue
			}
			if filter.Level != "" && st.Level != filter.Level {
				continue
			}
			filtered = append(filtered, st)
		}
		students = filtered
	}

	total := len(students)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.PageSize
	if end > total {
		end = total
	}
	return students[start:end], total, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[st.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	orig.Program = st.Program
	orig.Level = st.Level
	orig.UpdatedAt = st.UpdatedAt
	return repo.withUser(*orig), nil
}
