package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"scribed/internal/app/model"
	"scribed/internal/app/repository"
)

// ErrRoleNotFound is returned when a role id has no limit row.
var ErrRoleNotFound = errors.New("role limits not found")

const roleLimitColumns = `role_id, daily_cost, weekly_cost, monthly_cost,
	daily_minutes, weekly_minutes, monthly_minutes,
	daily_workflows, weekly_workflows, monthly_workflows,
	max_history_items, history_retention_days`

// RoleLimitStore reads the role subsystem's limit tables. This side never
// writes them.
type RoleLimitStore struct {
	*Store
}

// NewRoleLimitStore wraps the shared store.
func NewRoleLimitStore(s *Store) *RoleLimitStore {
	return &RoleLimitStore{Store: s}
}

var _ repository.RoleLimitDAO = (*RoleLimitStore)(nil)

// LimitsForRole fetches the limit snapshot for one role.
func (s *RoleLimitStore) LimitsForRole(ctx context.Context, roleID int64) (*model.RoleLimits, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM role_limits WHERE role_id = %s`, roleLimitColumns, s.ph(1),
	)
	return scanRoleLimits(s.db.QueryRowContext(ctx, query, roleID))
}

// LimitsForUser resolves the user's role and fetches its snapshot.
func (s *RoleLimitStore) LimitsForUser(ctx context.Context, userID int64) (*model.RoleLimits, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM role_limits rl
		 JOIN users u ON u.role_id = rl.role_id
		 WHERE u.id = %s`,
		prefixColumns("rl", roleLimitColumns), s.ph(1),
	)
	return scanRoleLimits(s.db.QueryRowContext(ctx, query, userID))
}

// ListRetentionPolicies returns every user whose role sets a retention limit.
func (s *RoleLimitStore) ListRetentionPolicies(ctx context.Context) ([]repository.UserRetentionPolicy, error) {
	query := `SELECT u.id, rl.max_history_items, rl.history_retention_days
		FROM users u
		JOIN role_limits rl ON rl.role_id = u.role_id
		WHERE rl.max_history_items > 0 OR rl.history_retention_days > 0
		ORDER BY u.id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query retention policies: %w", err)
	}
	defer rows.Close()

	var policies []repository.UserRetentionPolicy
	for rows.Next() {
		var p repository.UserRetentionPolicy
		if err := rows.Scan(&p.UserID, &p.MaxHistoryItems, &p.HistoryRetentionDays); err != nil {
			return nil, fmt.Errorf("scan retention policy: %w", err)
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("retention policy rows: %w", err)
	}
	return policies, nil
}

func scanRoleLimits(row *sql.Row) (*model.RoleLimits, error) {
	var l model.RoleLimits
	err := row.Scan(
		&l.RoleID, &l.DailyCost, &l.WeeklyCost, &l.MonthlyCost,
		&l.DailyMinutes, &l.WeeklyMinutes, &l.MonthlyMinutes,
		&l.DailyWorkflows, &l.WeeklyWorkflows, &l.MonthlyWorkflows,
		&l.MaxHistoryItems, &l.HistoryRetentionDays,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan role limits: %w", err)
	}
	return &l, nil
}

// prefixColumns qualifies each column in a comma-separated list with alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
