package engine

import "github.com/veltra/mixfeed/pkg/models"

// AnalyzeDiversity measures tag and author variety over a returned page.
// Ratios are unique/total, so both land in [0, 1]; an empty page reports
// zeros across the board.
func AnalyzeDiversity(page []models.Candidate) models.DiversityStats {
	var stats models.DiversityStats
	if len(page) == 0 {
		return stats
	}

	tags := make(map[string]struct{})
	authors := make(map[string]struct{})
	for _, c := range page {
		stats.TotalTags += len(c.Item.Tags)
		for _, tag := range c.Item.Tags {
			tags[tag] = struct{}{}
		}
		authors[c.Item.AuthorID.String()] = struct{}{}
	}

	stats.UniqueTags = len(tags)
	stats.UniqueAuthors = len(authors)
	stats.TotalAuthors = len(page)

	if stats.TotalTags > 0 {
		stats.TagDiversity = float64(stats.UniqueTags) / float64(stats.TotalTags)
	}
	stats.AuthorDiversity = float64(stats.UniqueAuthors) / float64(stats.TotalAuthors)
	return stats
}
