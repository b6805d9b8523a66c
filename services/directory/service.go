package directory

import (
	"context"
	"errors"
	"fmt"

	professionalRepo "casaora/database/repository/professional"

	"go.uber.org/zap"
)

// ErrUnavailable marks a failed fetch the client may retry.
var ErrUnavailable = errors.New("directory temporarily unavailable")

// Page is one page of directory results.
type Page struct {
	Items      []ProfessionalCard `json:"items"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
	Sort       SortOption         `json:"sort"`
	Chips      []FilterChip       `json:"chips"`
}

// DirectoryService lists professionals for the public directory.
type DirectoryService interface {
	Search(ctx context.Context, params Params) (*Page, error)
}

// DefaultDirectoryService queries the professional repository behind an optional cache.
type DefaultDirectoryService struct {
	Repo   professionalRepo.ProfessionalRepository
	Cache  PageCache
	Logger *zap.Logger
}

func NewDirectoryService(repo professionalRepo.ProfessionalRepository, cache PageCache, logger *zap.Logger) *DefaultDirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultDirectoryService{Repo: repo, Cache: cache, Logger: logger}
}

func (s *DefaultDirectoryService) Search(ctx context.Context, params Params) (*Page, error) {
	params = params.Normalize()
	key := params.Values().Encode()

	if s.Cache != nil {
		page, ok, err := s.Cache.Get(ctx, key)
		if err != nil {
			s.Logger.Warn("directory cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return page, nil
		}
	}

	f := params.Filters
	list, total, err := s.Repo.Search(ctx, professionalRepo.SearchCriteria{
		Query:             f.Query,
		City:              f.City,
		Service:           f.Service,
		MinRating:         f.MinRating,
		MaxRate:           f.MaxRate,
		VerifiedOnly:      f.VerifiedOnly,
		BackgroundChecked: f.BackgroundChecked,
		AvailableToday:    f.AvailableToday,
		Languages:         f.Languages,
		OrderBy:           params.Sort.OrderBy(),
		Limit:             params.PageSize,
		Offset:            (params.Page - 1) * params.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	page := &Page{
		Items:      make([]ProfessionalCard, 0, len(list)),
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: int((total + int64(params.PageSize) - 1) / int64(params.PageSize)),
		Sort:       params.Sort,
		Chips:      ActiveFilterChips(f),
	}
	for _, p := range list {
		page.Items = append(page.Items, CardFromProfessional(p))
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, page); err != nil {
			s.Logger.Warn("directory cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return page, nil
}
