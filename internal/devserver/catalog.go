package devserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/appart/appart-client/internal/core/domain"
)

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func (s *Server) createRequest(c echo.Context) error {
	var payload domain.CreateRequestData
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	created := s.store.createRequest(currentUser(c).ID, payload)
	s.log.Info().Int64("request_id", created.ID).Msg("request created")
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) myRequests(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.requestsByCustomer(currentUser(c).ID))
}

func (s *Server) openRequests(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.openRequests())
}

func (s *Server) requestDetails(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	r, ok := s.store.requestByID(id)
	if !ok {
		return domain.ErrNotFound
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) selectArtist(c echo.Context) error {
	requestID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	offerID, err := pathID(c, "offerID")
	if err != nil {
		return err
	}

	updated, err := s.store.selectArtist(currentUser(c).ID, requestID, offerID)
	if err != nil {
		return err
	}
	if updated.SelectedArtistID != nil {
		s.store.notify(*updated.SelectedArtistID, domain.NotifyOfferAccepted,
			"Offer accepted", "Your offer on %q was accepted", updated.Title)
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) createOffer(c echo.Context) error {
	requestID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var payload domain.CreateOfferData
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	artist := currentUser(c)
	offer, err := s.store.createOffer(artist.ID, requestID, payload)
	if err != nil {
		return err
	}
	if r, ok := s.store.requestByID(requestID); ok {
		s.store.notify(r.CustomerID, domain.NotifyNewOffer,
			"New offer", "%s made an offer on %q", artist.Name, r.Title)
	}
	return c.JSON(http.StatusCreated, offer)
}

func (s *Server) requestOffers(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if _, ok := s.store.requestByID(id); !ok {
		return domain.ErrNotFound
	}
	return c.JSON(http.StatusOK, s.store.offersByRequest(id))
}

func (s *Server) myOffers(c echo.Context) error {
	u := currentUser(c)
	offers := s.store.offersByArtist(u.ID)
	out := make([]domain.OfferWithArtist, 0, len(offers))
	for _, o := range offers {
		out = append(out, domain.OfferWithArtist{
			Offer:                o,
			ArtistName:           u.Name,
			ArtistUsername:       u.Username,
			ArtistProfilePicture: u.ProfilePictureURL,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) feed(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.feed())
}

func (s *Server) artistPortfolio(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.store.artworksByArtist(id))
}

func (s *Server) notifications(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.notificationsFor(currentUser(c).ID))
}
