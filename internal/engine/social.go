package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/veltra/mixfeed/internal/config"
	"github.com/veltra/mixfeed/internal/store"
	"github.com/veltra/mixfeed/pkg/models"
)

// SocialScoreAugmenter decorates a returned page with follow-graph
// proximity signals. It runs only on the page being returned, never on the
// full candidate pool, because each score costs a graph query.
type SocialScoreAugmenter struct {
	graph  SocialGraph
	cfg    *config.Engine
	logger *logrus.Logger
}

func NewSocialScoreAugmenter(graph SocialGraph, cfg *config.Engine, logger *logrus.Logger) *SocialScoreAugmenter {
	return &SocialScoreAugmenter{graph: graph, cfg: cfg, logger: logger}
}

// Augment attaches social signals to each candidate on the page. A failed
// proximity lookup leaves that candidate without signals; ranking order is
// re-asserted afterwards so augmentation can never reorder the page.
func (a *SocialScoreAugmenter) Augment(ctx context.Context, userID uuid.UUID, page []models.Candidate) {
	opts := store.ProximityOptions{
		IncludeDistance:     true,
		IncludeInfluence:    true,
		IncludeInteractions: true,
		MaxDistance:         a.cfg.Social.MaxDistance,
	}

	// Authors repeat within a page; one graph round trip per distinct author.
	byAuthor := make(map[uuid.UUID]*models.SocialSignals)
	for i := range page {
		authorID := page[i].Item.AuthorID
		signals, seen := byAuthor[authorID]
		if !seen {
			var err error
			signals, err = a.graph.ProximityScore(ctx, userID, authorID, opts)
			if err != nil {
				a.logger.WithError(err).WithField("author_id", authorID).
					Warn("Social proximity lookup failed")
				signals = nil
			}
			byAuthor[authorID] = signals
		}
		if signals != nil {
			s := *signals
			page[i].Social = &s
		}
	}

	sortCandidates(page)
}

// AttachReasons fills in human-readable explanations from the per-provider
// scores and any social signals already attached.
func AttachReasons(page []models.Candidate) {
	for i := range page {
		c := &page[i]
		var reasons []string
		for _, alg := range models.AllAlgorithms {
			if _, ok := c.Scores[alg]; !ok {
				continue
			}
			switch alg {
			case models.AlgorithmHot:
				reasons = append(reasons, "trending now")
			case models.AlgorithmLatest:
				reasons = append(reasons, "recently published")
			case models.AlgorithmUpdated:
				reasons = append(reasons, "recently updated")
			case models.AlgorithmContentBased:
				reasons = append(reasons, "matches your interests")
			case models.AlgorithmCollaborative:
				reasons = append(reasons, "popular with similar readers")
			case models.AlgorithmSocialCF:
				reasons = append(reasons, "liked in your network")
			}
		}
		if c.Social != nil {
			reasons = append(reasons, c.Social.Reasons...)
		}
		c.Reasons = reasons
	}
}
