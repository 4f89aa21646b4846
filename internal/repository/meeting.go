package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/prodyhq/prody/internal/models"
)

type MeetingRepository interface {
	Insert(meeting *models.Meeting) (string, error)
	GetOne(id string) (*models.Meeting, bool, error)
	ListForUser(userID string) ([]models.Meeting, error)
	// FindConflict returns the first meeting by the same creator whose
	// half-open interval [start_time, end_time) overlaps [start, end).
	FindConflict(createdBy string, start, end time.Time) (*models.Meeting, bool, error)
	Update(meeting *models.Meeting) error
	Delete(id string) error
	Participants(meetingID string) ([]models.MeetingParticipant, error)
	HasParticipant(meetingID, userID string) (bool, error)
	AddParticipant(meetingID, userID, status string) (*models.MeetingParticipant, error)
}

type MeetingRepositoryImpl struct {
	db *sqlx.DB
}

func NewMeetingRepository(db *sqlx.DB) MeetingRepository {
	return &MeetingRepositoryImpl{db: db}
}

func (repo *MeetingRepositoryImpl) Insert(meeting *models.Meeting) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO meetings (title, description, start_time, end_time, meeting_link, status, is_recurring, created_by, organization_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		meeting.Title,
		meeting.Description,
		meeting.StartTime,
		meeting.EndTime,
		meeting.MeetingLink,
		meeting.Status,
		meeting.IsRecurring,
		meeting.CreatedBy,
		meeting.OrganizationID,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *MeetingRepositoryImpl) GetOne(id string) (*models.Meeting, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var meeting models.Meeting

	query := `SELECT * FROM meetings WHERE id = $1`

	err := repo.db.GetContext(ctx, &meeting, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &meeting, true, err
}

func (repo *MeetingRepositoryImpl) ListForUser(userID string) ([]models.Meeting, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	meetings := []models.Meeting{}

	query := `
		SELECT DISTINCT m.*
		FROM meetings m
		LEFT JOIN meeting_participants p ON p.meeting_id = m.id
		WHERE m.created_by = $1 OR p.user_id = $1
		ORDER BY m.start_time ASC`

	err := repo.db.SelectContext(ctx, &meetings, query, userID)
	if err != nil {
		return nil, err
	}

	return meetings, nil
}

func (repo *MeetingRepositoryImpl) FindConflict(createdBy string, start, end time.Time) (*models.Meeting, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var meeting models.Meeting

	// Half-open overlap: [s1,e1) and [s2,e2) conflict iff s1 < e2 and s2 < e1.
	query := `
		SELECT *
		FROM meetings
		WHERE created_by = $1
		  AND status <> 'cancelled'
		  AND start_time < $3
		  AND $2 < end_time
		ORDER BY start_time ASC
		LIMIT 1`

	err := repo.db.GetContext(ctx, &meeting, query, createdBy, start, end)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &meeting, true, err
}

func (repo *MeetingRepositoryImpl) Update(meeting *models.Meeting) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE meetings
		SET title = $1, description = $2, start_time = $3, end_time = $4,
		    meeting_link = $5, status = $6, is_recurring = $7
		WHERE id = $8`

	_, err := repo.db.ExecContext(ctx, query,
		meeting.Title,
		meeting.Description,
		meeting.StartTime,
		meeting.EndTime,
		meeting.MeetingLink,
		meeting.Status,
		meeting.IsRecurring,
		meeting.ID,
	)
	return err
}

func (repo *MeetingRepositoryImpl) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `DELETE FROM meetings WHERE id = $1`

	_, err := repo.db.ExecContext(ctx, query, id)
	return err
}

func (repo *MeetingRepositoryImpl) Participants(meetingID string) ([]models.MeetingParticipant, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	participants := []models.MeetingParticipant{}

	query := `SELECT * FROM meeting_participants WHERE meeting_id = $1 ORDER BY created_at ASC`

	err := repo.db.SelectContext(ctx, &participants, query, meetingID)
	if err != nil {
		return nil, err
	}

	return participants, nil
}

func (repo *MeetingRepositoryImpl) HasParticipant(meetingID, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var exists bool

	query := `SELECT EXISTS (SELECT 1 FROM meeting_participants WHERE meeting_id = $1 AND user_id = $2)`

	err := repo.db.GetContext(ctx, &exists, query, meetingID, userID)
	return exists, err
}

func (repo *MeetingRepositoryImpl) AddParticipant(meetingID, userID, status string) (*models.MeetingParticipant, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var participant models.MeetingParticipant

	query := `
		INSERT INTO meeting_participants (meeting_id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING *`

	err := repo.db.GetContext(ctx, &participant, query, meetingID, userID, status)
	if err != nil {
		return nil, err
	}

	return &participant, nil
}
