package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/rekodi/core/transcript"
)

type dbTranscript struct {
	ID               string      `db:"id"`
	StudentID        string      `db:"student_id"`
	Type             string      `db:"type"`
	Purpose          string      `db:"purpose"`
	AcademicSummary  []byte      `db:"academic_summary"`
	SemesterRecords  []byte      `db:"semester_records"`
	DegreeProgress   []byte      `db:"degree_progress"`
	SecurityCode     null.String `db:"security_code"`
	DocumentHash     null.String `db:"document_hash"`
	GeneratedAt      time.Time   `db:"generated_at"`
	DownloadCount    int         `db:"download_count"`
	LastDownloadedAt null.Time   `db:"last_downloaded_at"`
}

func (t dbTranscript) toCore() (transcript.Transcript, error) {
	tr := transcript.Transcript{
		ID:               t.ID,
		StudentID:        t.StudentID,
		Type:             t.Type,
		Purpose:          t.Purpose,
		SecurityCode:     t.SecurityCode.String,
		DocumentHash:     t.DocumentHash.String,
		GeneratedAt:      t.GeneratedAt,
		DownloadCount:    t.DownloadCount,
		LastDownloadedAt: t.LastDownloadedAt.Time,
	}
	if err := json.Unmarshal(t.AcademicSummary, &tr.AcademicSummary); err != nil {
		return transcript.Transcript{}, errors.Wrap(err, "unmarshalling academic summary")
	}
	if err := json.Unmarshal(t.SemesterRecords, &tr.SemesterRecords); err != nil {
		return transcript.Transcript{}, errors.Wrap(err, "unmarshalling semester records")
	}
	if err := json.Unmarshal(t.DegreeProgress, &tr.DegreeProgress); err != nil {
		return transcript.Transcript{}, errors.Wrap(err, "unmarshalling degree progress")
	}
	return tr, nil
}

type transcriptRepository struct {
	db *sqlx.DB
}

var _ transcript.Repository = (*transcriptRepository)(nil) // interface compliance check

func NewTranscriptRepository(db *sqlx.DB) *transcriptRepository {
	return &transcriptRepository{db: db}
}

func (repo transcriptRepository) CreateTranscript(ctx context.Context, tr transcript.Transcript) (transcript.Transcript, error) {
	tr.ID = uuid.New().String()

	summary, err := json.Marshal(tr.AcademicSummary)
	if err != nil {
		return transcript.Transcript{}, errors.Wrap(err, "marshalling academic summary")
	}
	records, err := json.Marshal(tr.SemesterRecords)
	if err != nil {
		return transcript.Transcript{}, errors.Wrap(err, "marshalling semester records")
	}
	progress, err := json.Marshal(tr.DegreeProgress)
	if err != nil {
		return transcript.Transcript{}, errors.Wrap(err, "marshalling degree progress")
	}

	var code, hash null.String
	if tr.SecurityCode != "" {
		code.SetValid(tr.SecurityCode)
	}
	if tr.DocumentHash != "" {
		hash.SetValid(tr.DocumentHash)
	}

	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO transcript (id, student_id, type, purpose, academic_summary, semester_records,
		                         degree_progress, security_code, document_hash, generated_at, download_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0)`,
		tr.ID, tr.StudentID, tr.Type, tr.Purpose, summary, records, progress, code, hash, tr.GeneratedAt,
	)
	if err != nil {
		return transcript.Transcript{}, errors.Wrap(err, "inserting transcript")
	}
	return tr, nil
}

func (repo transcriptRepository) GetTranscriptByID(ctx context.Context, id string) (transcript.Transcript, error) {
	var t dbTranscript
	if err := repo.db.GetContext(ctx, &t, `SELECT * FROM transcript WHERE id = $1`, id); err != nil {
		return transcript.Transcript{}, trapNoRowsErr(err, transcript.ErrNotFound, "getting transcript")
	}
	return t.toCore()
}

func (repo transcriptRepository) GetTranscriptBySecurityCode(ctx context.Context, code string) (transcript.Transcript, error) {
	var t dbTranscript
	err := repo.db.GetContext(ctx, &t,
		`SELECT * FROM transcript WHERE security_code = $1 AND type = $2`, code, transcript.TypeOfficial)
	if err != nil {
		return transcript.Transcript{}, trapNoRowsErr(err, transcript.ErrNotFound, "verifying transcript")
	}
	return t.toCore()
}

func (repo transcriptRepository) QueryStudentTranscripts(ctx context.Context, studentID string) ([]transcript.Transcript, error) {
	var rows []dbTranscript
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM transcript WHERE student_id = $1 ORDER BY generated_at DESC`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying transcripts")
	}
	transcripts := make([]transcript.Transcript, 0, len(rows))
	for _, t := range rows {
		tr, err := t.toCore()
		if err != nil {
			return nil, err
		}
		transcripts = append(transcripts, tr)
	}
	return transcripts, nil
}

func (repo transcriptRepository) RecordDownload(ctx context.Context, id string, at time.Time) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE transcript SET download_count = download_count + 1, last_downloaded_at = $2 WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return errors.Wrap(err, "recording transcript download")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return transcript.ErrNotFound
	}
	return nil
}
