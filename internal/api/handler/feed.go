package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/edvin/stream/internal/api/request"
	"github.com/edvin/stream/internal/api/response"
	"github.com/edvin/stream/internal/config"
	"github.com/edvin/stream/internal/core"
	"github.com/edvin/stream/internal/feed"
	"github.com/edvin/stream/internal/model"
)

var (
	feedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total number of rendered feed documents",
		},
		[]string{"format"},
	)

	feedDenialsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_denials_total",
			Help: "Total number of denied feed requests",
		},
	)
)

// KeyResolver resolves a presented feed key to its holder.
type KeyResolver interface {
	FindUserByKey(ctx context.Context, key string) (*model.User, error)
}

// ViewPolicy decides whether a resolved user may view feeds.
type ViewPolicy interface {
	CanViewFeed(u *model.User) bool
}

// Feed serves the private record feed, gated by a per-user secret key.
type Feed struct {
	keys    KeyResolver
	policy  ViewPolicy
	records core.RecordQuerier
	cfg     *config.Config
}

// NewFeed creates a new Feed handler.
func NewFeed(keys KeyResolver, policy ViewPolicy, records core.RecordQuerier, cfg *config.Config) *Feed {
	return &Feed{keys: keys, policy: policy, records: records, cfg: cfg}
}

// Serve handles a feed request: resolve the key to a user, authorize,
// pass the filter parameters through to the record query, and render in
// the requested format. Every denial writes the same document regardless
// of cause.
func (h *Feed) Serve(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get(feed.KeyQueryVar)
	format := r.URL.Query().Get(feed.TypeQueryVar)

	user, err := h.keys.FindUserByKey(r.Context(), key)
	if err != nil {
		if !errors.Is(err, core.ErrNoUser) {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("feed key lookup failed")
			response.WriteError(w, http.StatusInternalServerError, "internal error")
			return
		}
		feedDenialsTotal.Inc()
		response.WriteAccessDenied(w)
		return
	}

	if !h.policy.CanViewFeed(user) {
		feedDenialsTotal.Inc()
		response.WriteAccessDenied(w)
		return
	}

	args := request.ParseRecordFilters(r)
	records, err := h.records.Query(r.Context(), args)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("record query failed")
		response.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	doc := h.buildFeed(records)

	var (
		body        []byte
		contentType string
	)
	switch format {
	case feed.FormatAtom:
		body, err = feed.RenderAtom(doc)
		contentType = feed.ContentTypeAtom
	case feed.FormatJSON:
		body, err = feed.RenderJSON(doc)
		contentType = feed.ContentTypeJSON
	default:
		// Unrecognized formats fall through to RSS.
		format = feed.FormatRSS
		body, err = feed.RenderRSS(doc)
		contentType = feed.ContentTypeRSS
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("format", format).Msg("feed render failed")
		response.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	feedRequestsTotal.WithLabelValues(format).Inc()
	w.Header().Set("Content-Type", contentType)
	w.Write(body)
}

func (h *Feed) buildFeed(records []model.Record) feed.Feed {
	doc := feed.Feed{
		Title:       h.cfg.FeedTitle,
		SiteURL:     h.cfg.SiteURL,
		Description: "Latest activity records",
	}

	if len(records) > 0 {
		newest := records[0].Created
		doc.Updated = &newest
		if link, err := feed.AddParams(h.cfg.AdminURL, map[string]string{"record__in": records[0].ID}); err == nil {
			doc.Link = link
		}
	}

	for _, rec := range records {
		item := feed.Item{
			ID:        rec.ID,
			Title:     rec.Summary,
			Author:    rec.Author,
			Connector: rec.Connector,
			Context:   rec.Context,
			Action:    rec.Action,
			Created:   rec.Created,
		}
		if link, err := feed.AddParams(h.cfg.AdminURL, map[string]string{"record__in": rec.ID}); err == nil {
			item.Link = link
		}
		doc.Items = append(doc.Items, item)
	}

	return doc
}
