package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"saavi_admin/internal/domain"
)

const maxMessageLen = 512

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Repo is the submission audit log.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSubmissionsSQL); err != nil {
		return fmt.Errorf("create hotel_submissions: %w", err)
	}
	return nil
}

func (r *Repo) RecordSubmission(ctx context.Context, s domain.Submission) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	msg := s.Message
	if len(msg) > maxMessageLen {
		msg = msg[:maxMessageLen]
	}
	_, err := r.db.ExecContext(ctx, insertSubmissionSQL,
		valStr(s.HotelID),
		s.Action,
		s.OK,
		valStr(msg),
		s.CreatedAt.UTC(),
	)
	return err
}

func (r *Repo) ListSubmissions(ctx context.Context, limit int) ([]domain.Submission, error) {
	rows, err := r.db.QueryContext(ctx, listSubmissionsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		var (
			s       domain.Submission
			hotelID sql.NullString
			message sql.NullString
		)
		if err := rows.Scan(&s.ID, &hotelID, &s.Action, &s.OK, &message, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.HotelID = hotelID.String
		s.Message = message.String
		out = append(out, s)
	}
	return out, rows.Err()
}
