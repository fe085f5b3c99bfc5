package domain

import "time"

// RequestStatus is the lifecycle state of a commission request.
type RequestStatus string

const (
	RequestDraft          RequestStatus = "draft"
	RequestOpen           RequestStatus = "open"
	RequestPendingPayment RequestStatus = "pending_payment"
	RequestHired          RequestStatus = "hired"
	RequestInProgress     RequestStatus = "in_progress"
	RequestDelivered      RequestStatus = "delivered"
	RequestCompleted      RequestStatus = "completed"
	RequestCancelled      RequestStatus = "cancelled"
	RequestRefunded       RequestStatus = "refunded"
)

// Request is a commission request posted by a customer.
type Request struct {
	ID               int64         `json:"id"`
	CustomerID       int64         `json:"customer_id"`
	SelectedArtistID *int64        `json:"selected_artist_id,omitempty"`
	Title            string        `json:"title"`
	Category         string        `json:"category,omitempty"`
	Medium           string        `json:"medium,omitempty"`
	Description      string        `json:"description"`
	DimensionsWidth  *float64      `json:"dimensions_width,omitempty"`
	DimensionsHeight *float64      `json:"dimensions_height,omitempty"`
	DimensionsUnit   string        `json:"dimensions_unit,omitempty"`
	Style            string        `json:"style,omitempty"`
	Deadline         *time.Time    `json:"deadline,omitempty"`
	BudgetMin        *float64      `json:"budget_min,omitempty"`
	BudgetMax        *float64      `json:"budget_max,omitempty"`
	UsageRights      string        `json:"usage_rights,omitempty"`
	DeliveryFormat   string        `json:"delivery_format,omitempty"`
	RevisionPolicy   string        `json:"revision_policy,omitempty"`
	Visibility       string        `json:"visibility,omitempty"`
	Status           RequestStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        *time.Time    `json:"updated_at,omitempty"`
	OffersCount      int           `json:"offers_count"`
	ReferenceImages  []string      `json:"reference_images"`
}

// CreateRequestData is the payload for posting a new commission request.
type CreateRequestData struct {
	Title            string     `json:"title" validate:"required,min=3"`
	Category         string     `json:"category,omitempty"`
	Medium           string     `json:"medium,omitempty"`
	Description      string     `json:"description" validate:"required,min=10"`
	DimensionsWidth  *float64   `json:"dimensions_width,omitempty"`
	DimensionsHeight *float64   `json:"dimensions_height,omitempty"`
	DimensionsUnit   string     `json:"dimensions_unit,omitempty"`
	Style            string     `json:"style,omitempty"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	BudgetMin        *float64   `json:"budget_min,omitempty" validate:"omitempty,gt=0"`
	BudgetMax        *float64   `json:"budget_max,omitempty" validate:"omitempty,gt=0"`
	UsageRights      string     `json:"usage_rights,omitempty" validate:"omitempty,oneof=personal commercial"`
	DeliveryFormat   string     `json:"delivery_format,omitempty" validate:"omitempty,oneof=digital physical both"`
	RevisionPolicy   string     `json:"revision_policy,omitempty"`
	Visibility       string     `json:"visibility,omitempty" validate:"omitempty,oneof=public invite-only"`
	ReferenceImages  []string   `json:"reference_images,omitempty"`
}

// OfferStatus is the lifecycle state of an artist's offer.
type OfferStatus string

const (
	OfferActive   OfferStatus = "active"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
	OfferExpired  OfferStatus = "expired"
)

// Offer is an artist's bid on a commission request.
type Offer struct {
	ID                int64       `json:"id"`
	RequestID         int64       `json:"request_id"`
	ArtistID          int64       `json:"artist_id"`
	Price             float64     `json:"price"`
	DeliveryDays      int         `json:"delivery_days"`
	Message           string      `json:"message,omitempty"`
	RevisionsIncluded *int        `json:"revisions_included,omitempty"`
	DeliveryFormat    string      `json:"delivery_format,omitempty"`
	ExpiryAt          *time.Time  `json:"expiry_at,omitempty"`
	Status            OfferStatus `json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
}

// OfferWithArtist is an offer joined with the public profile of its artist.
type OfferWithArtist struct {
	Offer
	ArtistName           string   `json:"artist_name"`
	ArtistUsername       string   `json:"artist_username,omitempty"`
	ArtistProfilePicture string   `json:"artist_profile_picture,omitempty"`
	ArtistRating         *float64 `json:"artist_rating,omitempty"`
	ArtistCompletionRate *float64 `json:"artist_completion_rate,omitempty"`
}

// CreateOfferData is the payload for bidding on a request.
type CreateOfferData struct {
	Price             float64 `json:"price" validate:"required,gt=0"`
	DeliveryDays      int     `json:"delivery_days" validate:"required,gt=0"`
	Message           string  `json:"message,omitempty"`
	RevisionsIncluded *int    `json:"revisions_included,omitempty"`
	DeliveryFormat    string  `json:"delivery_format,omitempty" validate:"omitempty,oneof=digital physical both"`
	ExpiryHours       *int    `json:"expiry_hours,omitempty" validate:"omitempty,gt=0"`
}

// Artwork is a single portfolio or feed entry.
type Artwork struct {
	ID          int64     `json:"id"`
	ArtistID    int64     `json:"artist_id"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	StyleTags   string    `json:"style_tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationType enumerates the events a user can be notified about.
type NotificationType string

const (
	NotifyNewRequest       NotificationType = "new_request"
	NotifyNewOffer         NotificationType = "new_offer"
	NotifyOfferAccepted    NotificationType = "offer_accepted"
	NotifyOfferRejected    NotificationType = "offer_rejected"
	NotifyRequestCompleted NotificationType = "request_completed"
)

// Notification is a per-user inbox entry.
type Notification struct {
	ID               int64            `json:"id"`
	UserID           int64            `json:"user_id"`
	Type             NotificationType `json:"type"`
	Title            string           `json:"title"`
	Message          string           `json:"message"`
	RelatedRequestID *int64           `json:"related_request_id,omitempty"`
	RelatedArtistID  *int64           `json:"related_artist_id,omitempty"`
	IsRead           bool             `json:"is_read"`
	CreatedAt        time.Time        `json:"created_at"`
}
