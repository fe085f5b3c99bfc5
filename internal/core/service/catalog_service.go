package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/appart/appart-client/internal/core/domain"
	"github.com/appart/appart-client/internal/core/ports"
)

// CatalogService fronts the commission marketplace endpoints. Payloads are
// validated locally before they go on the wire; reads pass straight through.
type CatalogService struct {
	api      ports.CatalogAPI
	validate *validator.Validate
	log      zerolog.Logger
}

func NewCatalogService(api ports.CatalogAPI, log zerolog.Logger) *CatalogService {
	return &CatalogService{api: api, validate: validator.New(), log: log}
}

func (s *CatalogService) CreateRequest(ctx context.Context, data domain.CreateRequestData) (*domain.Request, error) {
	if err := s.validate.Struct(data); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req, err := s.api.CreateRequest(ctx, data)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("request_id", req.ID).Msg("commission request created")
	return req, nil
}

func (s *CatalogService) MyRequests(ctx context.Context) ([]domain.Request, error) {
	return s.api.MyRequests(ctx)
}

func (s *CatalogService) OpenRequests(ctx context.Context) ([]domain.Request, error) {
	return s.api.OpenRequests(ctx)
}

func (s *CatalogService) RequestDetails(ctx context.Context, requestID int64) (*domain.Request, error) {
	if requestID <= 0 {
		return nil, fmt.Errorf("request details: %w", domain.ErrNotFound)
	}
	return s.api.RequestDetails(ctx, requestID)
}

func (s *CatalogService) SelectArtist(ctx context.Context, requestID, offerID int64) (*domain.Request, error) {
	return s.api.SelectArtist(ctx, requestID, offerID)
}

func (s *CatalogService) CreateOffer(ctx context.Context, requestID int64, data domain.CreateOfferData) (*domain.Offer, error) {
	if err := s.validate.Struct(data); err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}
	offer, err := s.api.CreateOffer(ctx, requestID, data)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("offer_id", offer.ID).Int64("request_id", requestID).Msg("offer submitted")
	return offer, nil
}

func (s *CatalogService) RequestOffers(ctx context.Context, requestID int64) ([]domain.OfferWithArtist, error) {
	return s.api.RequestOffers(ctx, requestID)
}

func (s *CatalogService) MyOffers(ctx context.Context) ([]domain.OfferWithArtist, error) {
	return s.api.MyOffers(ctx)
}

func (s *CatalogService) Feed(ctx context.Context) ([]domain.Artwork, error) {
	return s.api.Feed(ctx)
}

func (s *CatalogService) ArtistPortfolio(ctx context.Context, artistID int64) ([]domain.Artwork, error) {
	return s.api.ArtistPortfolio(ctx, artistID)
}

func (s *CatalogService) Notifications(ctx context.Context) ([]domain.Notification, error) {
	return s.api.Notifications(ctx)
}
