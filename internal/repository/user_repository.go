package repository

import (
	"context"
	"database/sql"

	"signalist/internal/model"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, name, country, investment_goals, risk_tolerance, preferred_industry, created_at
		FROM app_user
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.Name, &u.Country, &u.InvestmentGoals, &u.RiskTolerance, &u.PreferredIndustry, &u.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, name, country, investment_goals, risk_tolerance, preferred_industry, created_at
		FROM app_user
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&u.ID, &u.Email, &u.Name, &u.Country, &u.InvestmentGoals, &u.RiskTolerance, &u.PreferredIndustry, &u.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (r *UserRepository) FindByEmailPattern(ctx context.Context, pattern string, limit int) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, name, country, investment_goals, risk_tolerance, preferred_industry, created_at
		FROM app_user
		WHERE email ILIKE '%' || $1 || '%'
		ORDER BY created_at ASC
		LIMIT $2
	`, pattern, limit)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Country, &u.InvestmentGoals, &u.RiskTolerance, &u.PreferredIndustry, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// ListForDigest enumerates every user eligible for the daily digest email.
func (r *UserRepository) ListForDigest(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, name, country, investment_goals, risk_tolerance, preferred_industry, created_at
		FROM app_user
		WHERE email <> ''
		ORDER BY created_at ASC
	`)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Country, &u.InvestmentGoals, &u.RiskTolerance, &u.PreferredIndustry, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
