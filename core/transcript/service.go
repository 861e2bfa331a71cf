package transcript

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/grade"
	"github.com/trezcool/rekodi/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("transcript not found")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateTranscript(ctx context.Context, tr Transcript) (Transcript, error)
		GetTranscriptByID(ctx context.Context, id string) (Transcript, error)
		// GetTranscriptBySecurityCode only matches official transcripts.
		GetTranscriptBySecurityCode(ctx context.Context, code string) (Transcript, error)
		QueryStudentTranscripts(ctx context.Context, studentID string) ([]Transcript, error)
		// RecordDownload bumps the download counter; the academic content is
		// never touched after creation.
		RecordDownload(ctx context.Context, id string, at time.Time) error
	}

	Service struct {
		repo       Repository
		gradeRepo  grade.Repository
		studentSvc *student.Service
	}
)

func NewService(repo Repository, gradeRepo grade.Repository, studentSvc *student.Service) *Service {
	return &Service{repo: repo, gradeRepo: gradeRepo, studentSvc: studentSvc}
}

// Generate compiles and persists a new transcript snapshot for a student.
// Not idempotent: every call produces a distinct document; two calls over the
// same ledger yield identical academic figures under different IDs.
func (svc *Service) Generate(studentID string, req GenerateRequest) (Transcript, error) {
	ctx := context.Background()

	st, err := svc.studentSvc.GetByID(studentID)
	if err != nil {
		return Transcript{}, err // student.ErrNotFound passes through
	}

	grades, err := svc.gradeRepo.QueryStudentGrades(ctx, st.ID, grade.StatusCompleted, grade.StatusInProgress)
	if err != nil {
		return Transcript{}, errors.Wrap(err, "querying grade ledger")
	}

	now := NowFunc().UTC()
	tr := Transcript{
		StudentID:       st.ID,
		Type:            req.Type,
		Purpose:         req.Purpose,
		SemesterRecords: compileSemesterRecords(grades),
		GeneratedAt:     now,
	}
	tr.AcademicSummary = summarize(grades)
	tr.DegreeProgress = degreeProgress(grades)

	if req.Type == TypeOfficial {
		code, err := securityCode()
		if err != nil {
			return Transcript{}, errors.Wrap(err, "generating security code")
		}
		tr.SecurityCode = code
		tr.DocumentHash = documentHash(st.ID, now)
	}

	return svc.repo.CreateTranscript(ctx, tr)
}

// compileSemesterRecords groups the ledger by term, sorts terms chronologically
// and courses by code, then folds GPA figures in ascending term order. The
// cumulative aggregate runs over all completed courses seen so far, at full
// precision; stored figures are rounded for display.
func compileSemesterRecords(grades []grade.Record) []SemesterRecord {
	byTerm := make(map[grade.Term][]grade.Record)
	for _, g := range grades {
		byTerm[g.Term()] = append(byTerm[g.Term()], g)
	}

	terms := make([]grade.Term, 0, len(byTerm))
	for t := range byTerm {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].Before(terms[j]) })

	var cumulative grade.Summary
	var cumulativeCredits float64

	records := make([]SemesterRecord, 0, len(terms))
	for _, t := range terms {
		recs := byTerm[t]
		sort.Slice(recs, func(i, j int) bool { return recs[i].CourseCode < recs[j].CourseCode })

		var semester grade.Summary
		courses := make([]CourseLine, 0, len(recs))
		for _, g := range recs {
			courses = append(courses, CourseLine{
				CourseCode:  g.CourseCode,
				CourseTitle: g.CourseTitle,
				Credits:     g.Credits,
				LetterGrade: g.LetterGrade,
				GradePoints: g.GradePoints,
				Status:      g.Status,
			})
			if g.Status != grade.StatusCompleted {
				continue
			}
			o := g.Outcome()
			semester.Add(o)
			cumulative.Add(o)
			if o.CountsTowardGPA() {
				cumulativeCredits += o.Credits
			}
		}

		records = append(records, SemesterRecord{
			AcademicYear:      t.AcademicYear,
			Semester:          t.Semester,
			Courses:           courses,
			SemesterGPA:       core.Round2(semester.GPA()),
			CumulativeGPA:     core.Round2(cumulative.GPA()),
			CumulativeCredits: cumulativeCredits,
		})
	}
	return records
}

func summarize(grades []grade.Record) AcademicSummary {
	var cumulative grade.Summary
	var attempted, earned float64
	for _, g := range grades {
		if g.Status != grade.StatusCompleted {
			continue
		}
		o := g.Outcome()
		cumulative.Add(o)
		if !o.CountsTowardGPA() {
			continue
		}
		attempted += o.Credits
		if o.GradePoints > 0 {
			earned += o.Credits
		}
	}
	gpa := cumulative.GPA()
	return AcademicSummary{
		TotalCreditsAttempted: attempted,
		TotalCreditsEarned:    earned,
		CumulativeGPA:         core.Round2(gpa),
		AcademicStanding:      grade.ClassifyStanding(gpa),
	}
}

func degreeProgress(grades []grade.Record) []RequirementProgress {
	earnedByCategory := make(map[string]float64)
	for _, g := range grades {
		if g.Status != grade.StatusCompleted {
			continue
		}
		o := g.Outcome()
		if o.CountsTowardGPA() && o.GradePoints > 0 {
			earnedByCategory[g.Category] += o.Credits
		}
	}

	categories := make([]string, 0, len(DegreeRequirements))
	for cat := range DegreeRequirements {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	progress := make([]RequirementProgress, 0, len(categories))
	for _, cat := range categories {
		required := DegreeRequirements[cat]
		earned := earnedByCategory[cat]
		pct := float64(100)
		if required > 0 {
			pct = core.Round2(earned / required * 100)
			if pct > 100 {
				pct = 100
			}
		}
		progress = append(progress, RequirementProgress{
			Category:        cat,
			RequiredCredits: required,
			EarnedCredits:   earned,
			Percent:         pct,
		})
	}
	return progress
}

// securityCode returns 16 random bytes, hex encoded.
func securityCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// documentHash is a generation-event nonce: SHA-256 over the student ID and
// the generation timestamp. It authenticates possession of the generation
// event, not content integrity.
func documentHash(studentID string, at time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s", studentID, strconv.FormatInt(at.UnixNano(), 10))))
	return hex.EncodeToString(sum[:])
}

func (svc *Service) GetByID(id string) (Transcript, error) {
	return svc.repo.GetTranscriptByID(context.Background(), id)
}

func (svc *Service) QueryByStudent(studentID string) ([]Transcript, error) {
	return svc.repo.QueryStudentTranscripts(context.Background(), studentID)
}

// VerifyByCode resolves an official transcript from its one-time security
// code. Codes are never revoked; several independently valid officials can
// coexist per student.
func (svc *Service) VerifyByCode(code string) (Transcript, error) {
	return svc.repo.GetTranscriptBySecurityCode(context.Background(), core.CleanString(code))
}

// RecordDownload bumps download bookkeeping on an issued transcript.
func (svc *Service) RecordDownload(id string) error {
	return svc.repo.RecordDownload(context.Background(), id, NowFunc().UTC())
}
