package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/otpstudio/studio-server-go/internal/model"
)

type LeadRepository interface {
	Create(ctx context.Context, params model.CreateLeadParams) (*model.Lead, error)
}

type leadRepo struct {
	db *sqlx.DB
}

func NewLeadRepository(db *sqlx.DB) LeadRepository {
	return &leadRepo{db: db}
}

func (r *leadRepo) Create(ctx context.Context, params model.CreateLeadParams) (*model.Lead, error) {
	var lead model.Lead
	err := r.db.GetContext(ctx, &lead, `
		INSERT INTO leads (name, email, company, message, source)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.Name, params.Email, params.Company, params.Message, params.Source)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}
