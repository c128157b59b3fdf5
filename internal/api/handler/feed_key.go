package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/edvin/stream/internal/api/request"
	"github.com/edvin/stream/internal/api/response"
	"github.com/edvin/stream/internal/config"
	"github.com/edvin/stream/internal/core"
	"github.com/edvin/stream/internal/feed"
	"github.com/edvin/stream/internal/model"
)

// Query parameters consumed by the profile-save hook.
const (
	GenerateKeyQueryVar = "stream_new_user_feed_key"
	NonceQueryVar       = "stream_nonce"
)

// KeyStore manages the stored per-user feed key.
type KeyStore interface {
	Get(ctx context.Context, userID string) (string, error)
	Ensure(ctx context.Context, userID string) (string, error)
	Regenerate(ctx context.Context, userID string) (string, error)
}

// UserGetter loads users by ID.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// ManagePolicy decides whether a user may manage their own feed key.
type ManagePolicy interface {
	CanManageOwnKey(u *model.User) bool
}

// Nonces issues and verifies anti-forgery tokens.
type Nonces interface {
	Create(action, userID string) string
	Verify(token, action, userID string) bool
}

// FeedKey handles the profile key surface and the regeneration action.
type FeedKey struct {
	keys   KeyStore
	users  UserGetter
	policy ManagePolicy
	nonces Nonces
	cfg    *config.Config
}

// NewFeedKey creates a new FeedKey handler.
func NewFeedKey(keys KeyStore, users UserGetter, policy ManagePolicy, nonces Nonces, cfg *config.Config) *FeedKey {
	return &FeedKey{keys: keys, users: users, policy: policy, nonces: nonces, cfg: cfg}
}

// ProfileView renders the feed key surface for a user profile: the key
// (created lazily on first view), the format-specific feed links, and a
// fresh regeneration nonce. Users outside the role access set get a
// generic not-found, indistinguishable from a missing user.
func (h *FeedKey) ProfileView(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNoUser) {
			response.WriteError(w, http.StatusNotFound, "not found")
			return
		}
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !h.policy.CanManageOwnKey(user) {
		response.WriteError(w, http.StatusNotFound, "not found")
		return
	}

	key, err := h.keys.Ensure(r.Context(), user.ID)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	links, err := h.feedLinks(key)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	nonce := h.nonces.Create(core.NonceActionGenerateKey, user.ID)
	regenerateLink, err := feed.AddParams(
		strings.TrimRight(h.cfg.SiteURL, "/")+"/api/v1/users/"+url.PathEscape(user.ID)+"/profile-save",
		map[string]string{GenerateKeyQueryVar: "true", NonceQueryVar: nonce},
	)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]any{
		"feed_key":        key,
		"rss_feed":        links[feed.FormatRSS],
		"atom_feed":       links[feed.FormatAtom],
		"json_feed":       links[feed.FormatJSON],
		"nonce":           nonce,
		"regenerate_link": regenerateLink,
	}
	response.WriteJSON(w, http.StatusOK, resp)
}

// Regenerate replaces the user's feed key. The request must carry a valid
// anti-forgery nonce; the previous key stops resolving immediately.
func (h *FeedKey) Regenerate(w http.ResponseWriter, r *http.Request) {
	var req request.RegenerateFeedKey
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "User ID error")
		return
	}

	if !h.nonces.Verify(req.Nonce, core.NonceActionGenerateKey, req.User) {
		response.WriteAccessDenied(w)
		return
	}

	user, err := h.users.GetByID(r.Context(), req.User)
	if err != nil {
		if errors.Is(err, core.ErrNoUser) {
			response.WriteError(w, http.StatusBadRequest, "User ID error")
			return
		}
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	key, err := h.keys.Regenerate(r.Context(), user.ID)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	link, err := feed.BuildURL(h.cfg.SiteURL, key, h.cfg.PrettyPermalinks)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	xmlFeed, _ := feed.WithType(link, feed.FormatRSS)
	jsonFeed, _ := feed.WithType(link, feed.FormatJSON)

	zerolog.Ctx(r.Context()).Info().Str("user_id", user.ID).Msg("feed key regenerated")

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"message":   "User feed key successfully generated.",
		"feed_key":  key,
		"xml_feed":  xmlFeed,
		"json_feed": jsonFeed,
	})
}

// ProfileSave is the profile-save hook. A regeneration request carried in
// the query parameters replaces the key when its nonce validates; an
// invalid nonce silently keeps the existing key. A user with no key yet
// gets one either way.
func (h *FeedKey) ProfileSave(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNoUser) {
			response.WriteError(w, http.StatusNotFound, "not found")
			return
		}
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	generateRequested := r.URL.Query().Get(GenerateKeyQueryVar) != ""
	nonce := r.URL.Query().Get(NonceQueryVar)

	existing, err := h.keys.Get(r.Context(), user.ID)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Nothing to do when no regeneration was asked for and a key exists,
	// or when the regeneration nonce does not validate.
	if !generateRequested && existing != "" {
		response.WriteJSON(w, http.StatusOK, map[string]string{"feed_key": existing})
		return
	}
	if generateRequested && !h.nonces.Verify(nonce, core.NonceActionGenerateKey, user.ID) {
		response.WriteJSON(w, http.StatusOK, map[string]string{"feed_key": existing})
		return
	}

	key, err := h.keys.Regenerate(r.Context(), user.ID)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{"feed_key": key})
}

func (h *FeedKey) feedLinks(key string) (map[string]string, error) {
	base, err := feed.BuildURL(h.cfg.SiteURL, key, h.cfg.PrettyPermalinks)
	if err != nil {
		return nil, err
	}

	links := make(map[string]string, 3)
	for _, format := range []string{feed.FormatRSS, feed.FormatAtom, feed.FormatJSON} {
		link, err := feed.WithType(base, format)
		if err != nil {
			return nil, err
		}
		links[format] = link
	}
	return links, nil
}
