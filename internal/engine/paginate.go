package engine

import (
	"github.com/google/uuid"

	"github.com/veltra/mixfeed/internal/config"
	"github.com/veltra/mixfeed/pkg/models"
)

// ClampPage normalizes page and limit against the configured bounds.
func ClampPage(cfg *config.Engine, page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = cfg.Pagination.DefaultLimit
	}
	if limit > cfg.Pagination.MaxLimit {
		limit = cfg.Pagination.MaxLimit
	}
	return page, limit
}

// ApplyExclusions removes candidates whose item ids appear in the exclude
// list. This runs before pagination so total and hasMore reflect what the
// client can actually receive.
func ApplyExclusions(candidates []models.Candidate, excludeIDs []uuid.UUID) []models.Candidate {
	if len(excludeIDs) == 0 {
		return candidates
	}
	excluded := make(map[uuid.UUID]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	kept := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, skip := excluded[c.Item.ID]; skip {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// Paginate slices one page out of the ranked candidates. A skip past the
// end yields an empty page with the real total intact.
func Paginate(candidates []models.Candidate, page, limit int) ([]models.Candidate, models.Pagination) {
	total := len(candidates)
	skip := (page - 1) * limit

	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	info := models.Pagination{
		Page:       page,
		Limit:      limit,
		Skip:       skip,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    skip+limit < total,
	}

	if skip >= total {
		return nil, info
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return candidates[skip:end], info
}
