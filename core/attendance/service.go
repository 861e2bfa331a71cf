package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core/enrollment"
)

var (
	// errors
	ErrDuplicateSession = errors.New("attendance already recorded for this enrollment and date")
)

type (
	Repository interface {
		// CreateSession inserts the mark; the unique (enrollment, date) index
		// rejects duplicates with ErrDuplicateSession.
		CreateSession(ctx context.Context, s Session) (Session, error)
		// CountSessions returns the (total, attended) counters for an enrollment.
		CountSessions(ctx context.Context, enrollmentID string) (total, attended int, err error)
		QuerySessions(ctx context.Context, enrollmentID string) ([]Session, error)
	}

	Service struct {
		repo   Repository
		enrSvc *enrollment.Service
	}
)

func NewService(repo Repository, enrSvc *enrollment.Service) *Service {
	return &Service{repo: repo, enrSvc: enrSvc}
}

// Record stores one attendance mark and refreshes the enrollment's derived
// attendance aggregates.
func (svc *Service) Record(ns NewSession, recordedBy string) (Session, error) {
	ctx := context.Background()

	enr, err := svc.enrSvc.GetByID(ns.EnrollmentID)
	if err != nil {
		return Session{}, errors.Wrap(err, "finding enrollment")
	}

	s, err := svc.repo.CreateSession(ctx, Session{
		EnrollmentID: enr.ID,
		Date:         ns.Date,
		Present:      ns.Present,
		RecordedBy:   recordedBy,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return Session{}, err
	}

	total, attended, err := svc.repo.CountSessions(ctx, enr.ID)
	if err != nil {
		return Session{}, errors.Wrap(err, "counting sessions")
	}
	if err := svc.enrSvc.RefreshAttendance(enr.ID, attended, total); err != nil {
		return Session{}, errors.Wrap(err, "refreshing attendance aggregates")
	}
	return s, nil
}

// RecordBulk records marks one by one, accumulating successes and failures.
func (svc *Service) RecordBulk(items []NewSession, recordedBy string) BulkResult {
	res := BulkResult{
		Successful: make([]Session, 0, len(items)),
		Failed:     make([]BulkFailure, 0),
	}
	for i, ns := range items {
		ns := ns
		if err := ns.Validate(); err != nil {
			res.Failed = append(res.Failed, BulkFailure{Index: i, Item: ns, Error: err.Error()})
			continue
		}
		s, err := svc.Record(ns, recordedBy)
		if err != nil {
			res.Failed = append(res.Failed, BulkFailure{Index: i, Item: ns, Error: err.Error()})
			continue
		}
		res.Successful = append(res.Successful, s)
	}
	return res
}

func (svc *Service) QueryByEnrollment(enrollmentID string) ([]Session, error) {
	return svc.repo.QuerySessions(context.Background(), enrollmentID)
}
