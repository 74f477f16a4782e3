package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"corkboard/internal/board/models"

	cache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Members returns the process-wide member roster
func (c *Client) Members(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	if err := c.do(ctx, http.MethodGet, "/members", nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// Member fetches a single roster entry
func (c *Client) Member(ctx context.Context, id string) (models.Member, error) {
	var m models.Member
	if err := c.do(ctx, http.MethodGet, "/members/"+url.PathEscape(id), nil, &m); err != nil {
		return models.Member{}, err
	}
	return m, nil
}

// MemberSource is what the roster loads members from
type MemberSource interface {
	Members(ctx context.Context) ([]models.Member, error)
}

const rosterKey = "members"

// Roster caches the member list. Cards reference members by id only; the
// roster resolves those ids to names for display.
type Roster struct {
	src   MemberSource
	cache *cache.Cache
	group singleflight.Group
}

// DefaultRosterTTL is how long a fetched roster stays fresh
const DefaultRosterTTL = 5 * time.Minute

// NewRoster returns a roster that refetches after ttl
func NewRoster(src MemberSource, ttl time.Duration) *Roster {
	if ttl <= 0 {
		ttl = DefaultRosterTTL
	}
	return &Roster{
		src:   src,
		cache: cache.New(ttl, 2*ttl),
	}
}

// All returns the roster, fetching it when the cached copy has expired.
// Concurrent callers share one fetch.
func (r *Roster) All(ctx context.Context) ([]models.Member, error) {
	if cached, found := r.cache.Get(rosterKey); found {
		return cached.([]models.Member), nil
	}

	v, err, _ := r.group.Do(rosterKey, func() (any, error) {
		members, err := r.src.Members(ctx)
		if err != nil {
			return nil, err
		}
		r.cache.SetDefault(rosterKey, members)
		return members, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Member), nil
}

// Lookup resolves a member id. Unknown ids report false.
func (r *Roster) Lookup(ctx context.Context, id string) (models.Member, bool) {
	members, err := r.All(ctx)
	if err != nil {
		return models.Member{}, false
	}
	for _, m := range members {
		if m.ID == id {
			return m, true
		}
	}
	return models.Member{}, false
}

// Names resolves ids to display names, skipping unknown ids
func (r *Roster) Names(ctx context.Context, ids []string) []string {
	var names []string
	for _, id := range ids {
		if m, ok := r.Lookup(ctx, id); ok {
			names = append(names, m.Name)
		}
	}
	return names
}

// Invalidate drops the cached roster
func (r *Roster) Invalidate() {
	r.cache.Delete(rosterKey)
}
