package devserver

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/appart/appart-client/internal/core/domain"
)

// userRecord pairs a profile with its bcrypt hash. The hash never leaves
// the store.
type userRecord struct {
	user domain.User
	hash []byte
}

// memoryStore is the whole backend state. A single mutex is plenty at
// development scale.
type memoryStore struct {
	mu sync.Mutex

	users   map[int64]*userRecord
	byEmail map[string]int64

	requests map[int64]*domain.Request
	offers   map[int64]*domain.Offer
	artworks []domain.Artwork

	notifications map[int64][]domain.Notification

	nextUser    int64
	nextRequest int64
	nextOffer   int64
	nextArtwork int64
	nextNotif   int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:         make(map[int64]*userRecord),
		byEmail:       make(map[string]int64),
		requests:      make(map[int64]*domain.Request),
		offers:        make(map[int64]*domain.Offer),
		notifications: make(map[int64][]domain.Notification),
	}
}

func (m *memoryStore) createUser(email, name string, role domain.Role, hash []byte) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(email)
	if _, taken := m.byEmail[key]; taken {
		return domain.User{}, domain.ErrUserExists
	}

	m.nextUser++
	u := domain.User{
		ID:        m.nextUser,
		Email:     email,
		Name:      name,
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	m.users[u.ID] = &userRecord{user: u, hash: hash}
	m.byEmail[key] = u.ID
	return u, nil
}

func (m *memoryStore) userByEmail(email string) (*userRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, false
	}
	return m.users[id], true
}

func (m *memoryStore) userByID(id int64) (*userRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.users[id]
	return rec, ok
}

func (m *memoryStore) updateUser(id int64, patch domain.UserPatch) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	if patch.Name != nil {
		rec.user.Name = *patch.Name
	}
	if patch.Bio != nil {
		rec.user.Bio = *patch.Bio
	}
	if patch.ProfilePictureURL != nil {
		rec.user.ProfilePictureURL = *patch.ProfilePictureURL
	}
	if patch.Role != nil {
		rec.user.Role = *patch.Role
	}
	now := time.Now().UTC()
	rec.user.UpdatedAt = &now
	return rec.user, nil
}

func (m *memoryStore) createRequest(customerID int64, data domain.CreateRequestData) *domain.Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextRequest++
	r := &domain.Request{
		ID:               m.nextRequest,
		CustomerID:       customerID,
		Title:            data.Title,
		Category:         data.Category,
		Medium:           data.Medium,
		Description:      data.Description,
		DimensionsWidth:  data.DimensionsWidth,
		DimensionsHeight: data.DimensionsHeight,
		DimensionsUnit:   data.DimensionsUnit,
		Style:            data.Style,
		Deadline:         data.Deadline,
		BudgetMin:        data.BudgetMin,
		BudgetMax:        data.BudgetMax,
		UsageRights:      data.UsageRights,
		DeliveryFormat:   data.DeliveryFormat,
		RevisionPolicy:   data.RevisionPolicy,
		Visibility:       data.Visibility,
		Status:           domain.RequestOpen,
		CreatedAt:        time.Now().UTC(),
		ReferenceImages:  data.ReferenceImages,
	}
	if r.ReferenceImages == nil {
		r.ReferenceImages = []string{}
	}
	m.requests[r.ID] = r
	return r
}

func (m *memoryStore) requestByID(id int64) (domain.Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return domain.Request{}, false
	}
	return *r, true
}

func (m *memoryStore) requestsByCustomer(customerID int64) []domain.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Request{}
	for _, r := range m.requests {
		if r.CustomerID == customerID {
			out = append(out, *r)
		}
	}
	sortRequests(out)
	return out
}

func (m *memoryStore) openRequests() []domain.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Request{}
	for _, r := range m.requests {
		if r.Status == domain.RequestOpen {
			out = append(out, *r)
		}
	}
	sortRequests(out)
	return out
}

func (m *memoryStore) createOffer(artistID, requestID int64, data domain.CreateOfferData) (domain.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[requestID]
	if !ok {
		return domain.Offer{}, domain.ErrNotFound
	}
	if r.Status != domain.RequestOpen {
		return domain.Offer{}, domain.ErrForbidden
	}
	for _, o := range m.offers {
		if o.RequestID == requestID && o.ArtistID == artistID && o.Status == domain.OfferActive {
			return domain.Offer{}, domain.ErrForbidden
		}
	}

	m.nextOffer++
	o := &domain.Offer{
		ID:                m.nextOffer,
		RequestID:         requestID,
		ArtistID:          artistID,
		Price:             data.Price,
		DeliveryDays:      data.DeliveryDays,
		Message:           data.Message,
		RevisionsIncluded: data.RevisionsIncluded,
		DeliveryFormat:    data.DeliveryFormat,
		Status:            domain.OfferActive,
		CreatedAt:         time.Now().UTC(),
	}
	if data.ExpiryHours != nil {
		exp := o.CreatedAt.Add(time.Duration(*data.ExpiryHours) * time.Hour)
		o.ExpiryAt = &exp
	}
	m.offers[o.ID] = o
	r.OffersCount++
	return *o, nil
}

func (m *memoryStore) offersByRequest(requestID int64) []domain.OfferWithArtist {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.OfferWithArtist{}
	for _, o := range m.offers {
		if o.RequestID != requestID {
			continue
		}
		joined := domain.OfferWithArtist{Offer: *o}
		if rec, ok := m.users[o.ArtistID]; ok {
			joined.ArtistName = rec.user.Name
			joined.ArtistUsername = rec.user.Username
			joined.ArtistProfilePicture = rec.user.ProfilePictureURL
		}
		out = append(out, joined)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memoryStore) offersByArtist(artistID int64) []domain.Offer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Offer{}
	for _, o := range m.offers {
		if o.ArtistID == artistID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// selectArtist accepts an offer on the customer's request, rejects the
// rest, and moves the request to pending payment.
func (m *memoryStore) selectArtist(customerID, requestID, offerID int64) (domain.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[requestID]
	if !ok {
		return domain.Request{}, domain.ErrNotFound
	}
	if r.CustomerID != customerID {
		return domain.Request{}, domain.ErrForbidden
	}
	accepted, ok := m.offers[offerID]
	if !ok || accepted.RequestID != requestID {
		return domain.Request{}, domain.ErrNotFound
	}
	if r.Status != domain.RequestOpen {
		return domain.Request{}, domain.ErrForbidden
	}

	accepted.Status = domain.OfferAccepted
	for _, o := range m.offers {
		if o.RequestID == requestID && o.ID != offerID && o.Status == domain.OfferActive {
			o.Status = domain.OfferRejected
		}
	}
	r.Status = domain.RequestPendingPayment
	r.SelectedArtistID = &accepted.ArtistID
	now := time.Now().UTC()
	r.UpdatedAt = &now
	return *r, nil
}

func (m *memoryStore) addArtwork(a domain.Artwork) domain.Artwork {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextArtwork++
	a.ID = m.nextArtwork
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	m.artworks = append(m.artworks, a)
	return a
}

func (m *memoryStore) feed() []domain.Artwork {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Artwork, len(m.artworks))
	copy(out, m.artworks)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memoryStore) artworksByArtist(artistID int64) []domain.Artwork {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Artwork{}
	for _, a := range m.artworks {
		if a.ArtistID == artistID {
			out = append(out, a)
		}
	}
	return out
}

func (m *memoryStore) notify(userID int64, kind domain.NotificationType, title, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextNotif++
	m.notifications[userID] = append(m.notifications[userID], domain.Notification{
		ID:        m.nextNotif,
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Message:   fmt.Sprintf(format, args...),
		CreatedAt: time.Now().UTC(),
	})
}

func (m *memoryStore) notificationsFor(userID int64) []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Notification, len(m.notifications[userID]))
	copy(out, m.notifications[userID])
	return out
}

func sortRequests(rs []domain.Request) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].ID > rs[j].ID
		}
		return rs[i].CreatedAt.After(rs[j].CreatedAt)
	})
}
