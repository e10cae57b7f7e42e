package service

import (
	"context"
	"fmt"

	"stickerops/internal/model"
	"stickerops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// --- DTOs ---

type PartnerRequest struct {
	Name            string `json:"name" binding:"required"`
	SharePercentage string `json:"share_percentage" binding:"required"`
	UserID          string `json:"user_id"`
	IsActive        *bool  `json:"is_active"`
}

// --- Interface ---

type PartnerService interface {
	CreatePartner(ctx context.Context, req PartnerRequest) (*model.Partner, error)
	UpdatePartner(ctx context.Context, partnerID uuid.UUID, req PartnerRequest) (*model.Partner, error)
	ListPartners(ctx context.Context) ([]model.Partner, error)
	GetPartner(ctx context.Context, partnerID uuid.UUID) (*model.Partner, error)
}

type partnerService struct {
	partnerRepo repository.PartnerRepository
	log         *logrus.Logger
}

func NewPartnerService(partnerRepo repository.PartnerRepository, log *logrus.Logger) PartnerService {
	return &partnerService{partnerRepo: partnerRepo, log: log}
}

// --- Implementation ---

func (s *partnerService) CreatePartner(ctx context.Context, req PartnerRequest) (*model.Partner, error) {
	partner, err := s.partnerFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.partnerRepo.Create(ctx, partner); err != nil {
		return nil, fmt.Errorf("failed to create partner: %w", err)
	}
	s.warnOnShareDrift(ctx)
	return partner, nil
}

func (s *partnerService) UpdatePartner(ctx context.Context, partnerID uuid.UUID, req PartnerRequest) (*model.Partner, error) {
	existing, err := s.partnerRepo.FindByID(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("partner not found: %w", err)
	}

	updated, err := s.partnerFromRequest(req)
	if err != nil {
		return nil, err
	}
	existing.Name = updated.Name
	existing.SharePercentage = updated.SharePercentage
	existing.UserID = updated.UserID
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := s.partnerRepo.Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to save partner: %w", err)
	}
	s.warnOnShareDrift(ctx)
	return existing, nil
}

func (s *partnerService) ListPartners(ctx context.Context) ([]model.Partner, error) {
	return s.partnerRepo.List(ctx)
}

func (s *partnerService) GetPartner(ctx context.Context, partnerID uuid.UUID) (*model.Partner, error) {
	return s.partnerRepo.FindByID(ctx, partnerID)
}

func (s *partnerService) partnerFromRequest(req PartnerRequest) (*model.Partner, error) {
	share, err := decimal.NewFromString(req.SharePercentage)
	if err != nil {
		return nil, fmt.Errorf("invalid share percentage: %w", err)
	}
	if share.IsNegative() || share.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("share percentage must be between 0 and 100")
	}

	partner := &model.Partner{
		Name:            req.Name,
		SharePercentage: share,
		IsActive:        true,
	}
	if req.IsActive != nil {
		partner.IsActive = *req.IsActive
	}
	if req.UserID != "" {
		userID, parseErr := uuid.Parse(req.UserID)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid user id: %w", parseErr)
		}
		partner.UserID = &userID
	}
	return partner, nil
}

// warnOnShareDrift logs when active shares stop summing to 100. Drift is
// allowed (a partner may be mid-onboarding) but worth surfacing.
func (s *partnerService) warnOnShareDrift(ctx context.Context) {
	total, err := s.partnerRepo.SumActiveShares(ctx)
	if err != nil {
		return
	}
	if !total.Equal(decimal.NewFromInt(100)) {
		s.log.WithField("total_share", total.StringFixed(2)).
			Warn("active partner shares do not sum to 100%")
	}
}
