package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/appart/appart-client/internal/core/domain"
	"github.com/appart/appart-client/internal/core/ports"
	"github.com/appart/appart-client/internal/metrics"
)

// defaultFreshFor is the freshness window of a fetched current-user record.
const defaultFreshFor = 5 * time.Minute

// CurrentUserQuery keeps the session's user in sync with backend truth while
// authenticated. A successful fetch is fresh for the configured window;
// within it, reads are served from the session without a network round-trip.
// After expiry a read returns the cached value immediately and revalidates in
// the background. Fetch failures are silent with respect to session state;
// forced logout stays reserved for the transport's refresh path.
type CurrentUserQuery struct {
	users   ports.UserAPI
	session ports.SessionStore

	freshFor time.Duration
	retries  int
	now      func() time.Time

	mu        sync.Mutex
	fetchedAt time.Time
	loading   bool
	lastErr   error

	group singleflight.Group
	log   zerolog.Logger
}

// QueryOption tweaks a CurrentUserQuery.
type QueryOption func(*CurrentUserQuery)

// WithFreshFor overrides the freshness window.
func WithFreshFor(d time.Duration) QueryOption {
	return func(q *CurrentUserQuery) { q.freshFor = d }
}

// WithRetries sets how many times a failed fetch is re-attempted. The
// current-user fetch defaults to zero.
func WithRetries(n int) QueryOption {
	return func(q *CurrentUserQuery) { q.retries = n }
}

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) QueryOption {
	return func(q *CurrentUserQuery) { q.now = now }
}

func NewCurrentUserQuery(users ports.UserAPI, session ports.SessionStore, log zerolog.Logger, opts ...QueryOption) *CurrentUserQuery {
	q := &CurrentUserQuery{
		users:    users,
		session:  session,
		freshFor: defaultFreshFor,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Get returns the current user. Inactive while unauthenticated.
func (q *CurrentUserQuery) Get(ctx context.Context) (*domain.User, error) {
	if !q.session.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	cached := q.session.User()

	q.mu.Lock()
	fresh := cached != nil && !q.fetchedAt.IsZero() && q.now().Sub(q.fetchedAt) < q.freshFor
	if fresh {
		q.mu.Unlock()
		metrics.UserCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}
	if cached != nil {
		q.mu.Unlock()
		metrics.UserCacheTotal.WithLabelValues("stale").Inc()
		// Serve stale, revalidate without blocking the caller. The fetch
		// outlives the caller's context on purpose.
		go func() {
			_, _ = q.fetch(context.WithoutCancel(ctx))
		}()
		return cached, nil
	}
	q.loading = true
	q.mu.Unlock()

	metrics.UserCacheTotal.WithLabelValues("miss").Inc()
	user, err := q.fetch(ctx)

	q.mu.Lock()
	q.loading = false
	q.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return user, nil
}

// fetch performs the deduplicated network read and mirrors success into the
// session.
func (q *CurrentUserQuery) fetch(ctx context.Context) (*domain.User, error) {
	v, err, _ := q.group.Do("current-user", func() (any, error) {
		var user *domain.User
		var err error
		for attempt := 0; attempt <= q.retries; attempt++ {
			user, err = q.users.Me(ctx)
			if err == nil {
				break
			}
		}
		if err != nil {
			q.mu.Lock()
			q.lastErr = err
			q.mu.Unlock()
			q.log.Debug().Err(err).Msg("current-user fetch failed")
			return nil, fmt.Errorf("current user: %w", err)
		}

		q.session.SetUser(user)
		q.mu.Lock()
		q.fetchedAt = q.now()
		q.lastErr = nil
		q.mu.Unlock()
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.User), nil
}

// Loading reports whether an initial fetch (no cached user yet) is in flight.
// The navigation gate keeps the splash up while this is true.
func (q *CurrentUserQuery) Loading() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.loading
}

// Err returns the failure of the most recent fetch, if any. Errors surface
// only here; they never touch session state.
func (q *CurrentUserQuery) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastErr
}

// Invalidate expires the cache; the next Get revalidates.
func (q *CurrentUserQuery) Invalidate() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fetchedAt = time.Time{}
	q.lastErr = nil
}

// MarkFresh restarts the freshness window after the caller has already put a
// just-fetched user into the session (login and profile updates do this).
func (q *CurrentUserQuery) MarkFresh() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fetchedAt = q.now()
	q.lastErr = nil
}
