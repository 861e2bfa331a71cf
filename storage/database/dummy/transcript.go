package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/rekodi/core/transcript"
)

type transcriptRepository struct {
	db *transcriptTable
}

var _ transcript.Repository = (*transcriptRepository)(nil) // interface compliance check

func NewTranscriptRepository(db *DB) *transcriptRepository {
	return &transcriptRepository{db: db.transcript}
}

func (repo *transcriptRepository) CreateTranscript(_ context.Context, tr transcript.Transcript) (transcript.Transcript, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	tr.ID = uuid.New().String()
	repo.db.table[tr.ID] = &tr
	return tr, nil
}

func (repo *transcriptRepository) GetTranscriptByID(_ context.Context, id string) (transcript.Transcript, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tr, ok := repo.db.table[id]; ok {
		return *tr, nil
	}
	return transcript.Transcript{}, transcript.ErrNotFound
}

func (repo *transcriptRepository) GetTranscriptBySecurityCode(_ context.Context, code string) (transcript.Transcript, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, tr := range repo.db.table {
		if tr.Type == transcript.TypeOfficial && tr.SecurityCode == code && code != "" {
			return *tr, nil
		}
	}
	return transcript.Transcript{}, transcript.ErrNotFound
}

func (repo *transcriptRepository) QueryStudentTranscripts(_ context.Context, studentID string) ([]transcript.Transcript, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	transcripts := make([]transcript.Transcript, 0)
	for _, tr := range repo.db.table {
		if tr.StudentID == studentID {
			transcripts = append(transcripts, *tr)
		}
	}
	sort.Slice(transcripts, func(i, j int) bool { return transcripts[i].GeneratedAt.After(transcripts[j].GeneratedAt) })
	return transcripts, nil
}

func (repo *transcriptRepository) RecordDownload(_ context.Context, id string, at time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	tr, ok := repo.db.table[id]
	if !ok {
		return transcript.ErrNotFound
	}
	tr.DownloadCount++
	tr.LastDownloadedAt = at
	return nil
}
