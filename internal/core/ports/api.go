package ports

import (
	"context"

	"github.com/appart/appart-client/internal/core/domain"
)

// RegisterData carries everything needed to create a new account.
type RegisterData struct {
	Email    string      `json:"email" validate:"required,email"`
	Name     string      `json:"name" validate:"required,min=2"`
	Username string      `json:"username,omitempty"`
	Password string      `json:"password" validate:"required,min=8"`
	Role     domain.Role `json:"role,omitempty" validate:"omitempty,oneof=customer artist"`
}

// AuthAPI covers the unauthenticated token endpoints.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.TokenPair, error)
	Register(ctx context.Context, data RegisterData) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
}

// UserAPI covers the authenticated current-user endpoints.
type UserAPI interface {
	Me(ctx context.Context) (*domain.User, error)
	UpdateMe(ctx context.Context, patch domain.UserPatch) (*domain.User, error)
}

// CatalogAPI covers the commission marketplace endpoints consumed by the app.
type CatalogAPI interface {
	CreateRequest(ctx context.Context, data domain.CreateRequestData) (*domain.Request, error)
	MyRequests(ctx context.Context) ([]domain.Request, error)
	OpenRequests(ctx context.Context) ([]domain.Request, error)
	RequestDetails(ctx context.Context, requestID int64) (*domain.Request, error)
	SelectArtist(ctx context.Context, requestID, offerID int64) (*domain.Request, error)
	CreateOffer(ctx context.Context, requestID int64, data domain.CreateOfferData) (*domain.Offer, error)
	RequestOffers(ctx context.Context, requestID int64) ([]domain.OfferWithArtist, error)
	MyOffers(ctx context.Context) ([]domain.OfferWithArtist, error)
	Feed(ctx context.Context) ([]domain.Artwork, error)
	ArtistPortfolio(ctx context.Context, artistID int64) ([]domain.Artwork, error)
	Notifications(ctx context.Context) ([]domain.Notification, error)
}
