package service

import (
	"context"
	"strings"

	apperrors "github.com/otpstudio/studio-server-go/internal/errors"
	"github.com/otpstudio/studio-server-go/internal/model"
	"github.com/otpstudio/studio-server-go/internal/repository"
)

// ContactService forwards lead submissions to the data service through the
// anon-tier connection. Full validation is owned by the data service's
// row-level rules; only an email presence check happens here.
type ContactService struct {
	leads repository.LeadRepository
}

func NewContactService(leads repository.LeadRepository) *ContactService {
	return &ContactService{leads: leads}
}

func (s *ContactService) Submit(ctx context.Context, params model.CreateLeadParams) (*model.Lead, error) {
	if strings.TrimSpace(params.Email) == "" {
		return nil, apperrors.MissingRequired("email")
	}

	lead, err := s.leads.Create(ctx, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	return lead, nil
}
