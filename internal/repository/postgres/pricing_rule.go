package postgres

import (
	"context"
	"database/sql"

	"runnerly-backend/internal/domain"
	"runnerly-backend/internal/repository"
)

type pricingRuleRepository struct {
	db *sql.DB
}

func NewPricingRuleRepository(db *sql.DB) repository.PricingRuleRepository {
	return &pricingRuleRepository{db: db}
}

func (r *pricingRuleRepository) ListActive(ctx context.Context) ([]domain.PricingRule, error) {
	query := `SELECT id, type, value_kind, amount, auto_apply, window_start_hour, window_end_hour, priority, active
	          FROM pricing_rules WHERE active = true ORDER BY priority DESC, id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []domain.PricingRule
	for rows.Next() {
		var rule domain.PricingRule
		var startHour, endHour sql.NullInt32
		if err := rows.Scan(&rule.ID, &rule.Type, &rule.ValueKind, &rule.Amount,
			&rule.AutoApply, &startHour, &endHour, &rule.Priority, &rule.Active); err != nil {
			return nil, err
		}
		if startHour.Valid && endHour.Valid {
			rule.ActiveWindow = &domain.ActiveWindow{
				StartHour: int(startHour.Int32),
				EndHour:   int(endHour.Int32),
			}
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
