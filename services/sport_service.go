package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/session-system/models"
	"github.com/Dosada05/session-system/repositories"
	"github.com/Dosada05/session-system/storage"
)

// SportService — чтение справочника видов спорта. Сам справочник
// наполняется миграциями, движку хватает просмотра.
type SportService interface {
	GetByID(ctx context.Context, id int) (*models.Sport, error)
	List(ctx context.Context) ([]*models.Sport, error)
}

type sportService struct {
	sportRepo repositories.SportRepository
	uploader  storage.FileUploader
}

func NewSportService(sportRepo repositories.SportRepository, uploader storage.FileUploader) SportService {
	return &sportService{
		sportRepo: sportRepo,
		uploader:  uploader,
	}
}

func (s *sportService) GetByID(ctx context.Context, id int) (*models.Sport, error) {
	sport, err := s.sportRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to get sport: %w", err)
	}
	s.populateLogoURL(sport)
	return sport, nil
}

func (s *sportService) List(ctx context.Context) ([]*models.Sport, error) {
	sports, err := s.sportRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sports: %w", err)
	}
	for _, sport := range sports {
		s.populateLogoURL(sport)
	}
	return sports, nil
}

func (s *sportService) populateLogoURL(sport *models.Sport) {
	if s.uploader == nil || sport.LogoKey == nil || *sport.LogoKey == "" {
		return
	}
	url := s.uploader.GetPublicURL(*sport.LogoKey)
	if url != "" {
		sport.LogoURL = &url
	}
}
