package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"
	"url-shortener/internal/generator"
	"url-shortener/internal/model"

	"github.com/redis/go-redis/v9"
)

// LinkStore is the durable code -> target mapping.
type LinkStore interface {
	Create(ctx context.Context, target, code string) (*model.Link, error)
	GetByCode(ctx context.Context, code string) (*model.Link, error)
}

// VisitRecorder durably records one redirect event and reconciles the
// link's counter.
type VisitRecorder interface {
	Record(ctx context.Context, linkID int64, utm string) (*model.Visit, error)
}

var (
	// ErrInvalidTarget is returned for empty or non-absolute target URLs.
	ErrInvalidTarget = errors.New("invalid target url")
	// ErrCodeExhausted is returned when every generation attempt collided.
	ErrCodeExhausted = errors.New("unable to allocate short code")
)

// maxCodeAttempts bounds the regenerate-on-collision loop. At 6 base62
// characters collisions are rare enough that more than one retry already
// points at a broken random source.
const maxCodeAttempts = 5

// Shortener turns target URLs into short links.
type Shortener struct {
	links   LinkStore
	domain  string
	codeLen int
}

func NewShortener(links LinkStore, domain string, codeLen int) *Shortener {
	return &Shortener{links: links, domain: strings.TrimSuffix(domain, "/"), codeLen: codeLen}
}

// Shorten normalizes the target, allocates a fresh code and persists the
// mapping. A unique-constraint loss means another creator took the code
// first; the code is regenerated, never reused.
func (s *Shortener) Shorten(ctx context.Context, target string) (*model.Link, error) {
	target = normalizeTarget(target)
	if !validTarget(target) {
		return nil, ErrInvalidTarget
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := generator.NewCode(s.codeLen)
		link, err := s.links.Create(ctx, target, code)
		if err != nil {
			if errors.Is(err, model.ErrCodeTaken) {
				continue
			}
			return nil, err
		}
		return link, nil
	}
	return nil, ErrCodeExhausted
}

// ShortURL renders the public URL for a code.
func (s *Shortener) ShortURL(code string) string {
	return s.domain + "/" + code
}

func normalizeTarget(target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		return target
	}
	if !strings.HasPrefix(target, "http") {
		target = "https://" + target
	}
	return target
}

func validTarget(target string) bool {
	u, err := url.ParseRequestURI(target)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

const (
	cacheTTL      = 24 * time.Hour
	recordTimeout = 5 * time.Second
)

// cachedLink carries enough of a link through the cache to both redirect
// and record the visit without touching the primary store.
type cachedLink struct {
	ID     int64  `json:"id"`
	Target string `json:"target"`
}

// Resolver serves the redirect path: code -> target lookups plus
// best-effort visit recording.
type Resolver struct {
	links  LinkStore
	visits VisitRecorder
	cache  *redis.Client // may be nil if disabled
}

func NewResolver(links LinkStore, visits VisitRecorder, cache *redis.Client) *Resolver {
	return &Resolver{links: links, visits: visits, cache: cache}
}

// ResolveAndRecord returns the target URL for a code and dispatches a visit
// recording. Recording runs detached from the request context so a client
// disconnect never tears it down, and any recording failure is logged and
// discarded — the redirect must succeed on the target already fetched.
func (r *Resolver) ResolveAndRecord(ctx context.Context, code, utm string) (string, error) {
	if r.cache != nil {
		if raw, err := r.cache.Get(ctx, cacheKey(code)).Result(); err == nil {
			var c cachedLink
			if err := json.Unmarshal([]byte(raw), &c); err == nil {
				go r.record(c.ID, utm)
				return c.Target, nil
			}
		}
	}

	link, err := r.links.GetByCode(ctx, code)
	if err != nil {
		return "", err
	}

	if r.cache != nil {
		if raw, err := json.Marshal(cachedLink{ID: link.ID, Target: link.Target}); err == nil {
			_ = r.cache.Set(ctx, cacheKey(code), raw, cacheTTL).Err()
		}
	}

	go r.record(link.ID, utm)
	return link.Target, nil
}

// Stats reads the link straight from the store so the counter is current,
// bypassing the resolve cache.
func (r *Resolver) Stats(ctx context.Context, code string) (*model.Link, error) {
	return r.links.GetByCode(ctx, code)
}

func (r *Resolver) record(linkID int64, utm string) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if _, err := r.visits.Record(ctx, linkID, utm); err != nil {
		log.Printf("visit recording failed for link %d: %v", linkID, err)
	}
}

func cacheKey(code string) string {
	return "link:" + code
}
