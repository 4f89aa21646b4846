package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// AnalyticsFilter scopes aggregate queries: org-wide for admins, rows
// created by the requester for everyone else, with an optional time range.
type AnalyticsFilter struct {
	UserID  string
	OrgID   *string
	OrgWide bool
	From    *time.Time
	To      *time.Time
}

type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
}

type PriorityCount struct {
	Priority string `db:"priority" json:"priority"`
	Count    int    `db:"count" json:"count"`
}

type UserActivityCount struct {
	UserID   string `db:"user_id" json:"user_id"`
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
	Actions  int    `db:"actions" json:"actions"`
}

type AnalyticsRepository interface {
	TaskCount(filter *AnalyticsFilter) (int, error)
	MeetingCount(filter *AnalyticsFilter) (int, error)
	NewUserCount(orgID string, from, to *time.Time) (int, error)
	TaskStatusDistribution(filter *AnalyticsFilter) ([]StatusCount, error)
	TaskPriorityBreakdown(filter *AnalyticsFilter) ([]PriorityCount, error)
	OverdueTaskCount(filter *AnalyticsFilter) (int, error)
	MeetingMinutes(filter *AnalyticsFilter) (count int, totalMinutes float64, err error)
	UserActivityCounts(orgID string) ([]UserActivityCount, error)
}

type AnalyticsRepositoryImpl struct {
	db *sqlx.DB
}

func NewAnalyticsRepository(db *sqlx.DB) AnalyticsRepository {
	return &AnalyticsRepositoryImpl{db: db}
}

// scopeClause renders the WHERE conditions for a filter. Every analytics
// query over tasks/meetings shares the same scoping rules.
func scopeClause(filter *AnalyticsFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.OrgWide && filter.OrgID != nil {
		args = append(args, *filter.OrgID)
		conditions = append(conditions, fmt.Sprintf("organization_id = $%d", len(args)))
	} else {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", len(args)))
	}

	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	return strings.Join(conditions, " AND "), args
}

func (repo *AnalyticsRepositoryImpl) count(query string, args []any) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var count int
	err := repo.db.GetContext(ctx, &count, query, args...)
	return count, err
}

func (repo *AnalyticsRepositoryImpl) TaskCount(filter *AnalyticsFilter) (int, error) {
	where, args := scopeClause(filter)
	return repo.count(`SELECT count(*) FROM tasks WHERE `+where, args)
}

func (repo *AnalyticsRepositoryImpl) MeetingCount(filter *AnalyticsFilter) (int, error) {
	where, args := scopeClause(filter)
	return repo.count(`SELECT count(*) FROM meetings WHERE `+where, args)
}

func (repo *AnalyticsRepositoryImpl) NewUserCount(orgID string, from, to *time.Time) (int, error) {
	args := []any{orgID}
	query := `SELECT count(*) FROM users WHERE organization_id = $1`

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	return repo.count(query, args)
}

func (repo *AnalyticsRepositoryImpl) TaskStatusDistribution(filter *AnalyticsFilter) ([]StatusCount, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	where, args := scopeClause(filter)

	stats := []StatusCount{}
	query := `SELECT status, count(*) AS count FROM tasks WHERE ` + where + ` GROUP BY status`

	err := repo.db.SelectContext(ctx, &stats, query, args...)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (repo *AnalyticsRepositoryImpl) TaskPriorityBreakdown(filter *AnalyticsFilter) ([]PriorityCount, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	where, args := scopeClause(filter)

	stats := []PriorityCount{}
	query := `SELECT priority, count(*) AS count FROM tasks WHERE ` + where + ` GROUP BY priority`

	err := repo.db.SelectContext(ctx, &stats, query, args...)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (repo *AnalyticsRepositoryImpl) OverdueTaskCount(filter *AnalyticsFilter) (int, error) {
	where, args := scopeClause(filter)

	query := `
		SELECT count(*) FROM tasks
		WHERE ` + where + `
		  AND status <> 'completed'
		  AND due_date IS NOT NULL
		  AND due_date < now()`

	return repo.count(query, args)
}

func (repo *AnalyticsRepositoryImpl) MeetingMinutes(filter *AnalyticsFilter) (int, float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	where, args := scopeClause(filter)

	var result struct {
		Count   int     `db:"count"`
		Minutes float64 `db:"minutes"`
	}

	query := `
		SELECT count(*) AS count,
		       coalesce(sum(extract(epoch FROM end_time - start_time) / 60), 0) AS minutes
		FROM meetings
		WHERE ` + where

	err := repo.db.GetContext(ctx, &result, query, args...)
	if err != nil {
		return 0, 0, err
	}

	return result.Count, result.Minutes, nil
}

func (repo *AnalyticsRepositoryImpl) UserActivityCounts(orgID string) ([]UserActivityCount, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	counts := []UserActivityCount{}

	query := `
		SELECT u.id AS user_id, u.full_name, u.email, count(l.id) AS actions
		FROM users u
		LEFT JOIN activity_logs l ON l.user_id = u.id
		WHERE u.organization_id = $1
		GROUP BY u.id, u.full_name, u.email
		ORDER BY actions DESC`

	err := repo.db.SelectContext(ctx, &counts, query, orgID)
	if err != nil {
		return nil, err
	}

	return counts, nil
}
