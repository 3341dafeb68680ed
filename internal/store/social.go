package store

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"

	"github.com/veltra/mixfeed/pkg/models"
)

// SocialStore runs the graph-side similarity and proximity computations on
// Neo4j: user-user collaborative filtering, follow-graph-weighted
// collaborative filtering, and the social proximity score attached to
// returned pages.
type SocialStore struct {
	driver neo4j.DriverWithContext
	logger *logrus.Logger
}

func NewSocialStore(driver neo4j.DriverWithContext, logger *logrus.Logger) *SocialStore {
	return &SocialStore{driver: driver, logger: logger}
}

// ProximityOptions selects which proximity components to compute.
type ProximityOptions struct {
	IncludeDistance     bool
	IncludeInfluence    bool
	IncludeInteractions bool
	MaxDistance         int
}

// UserCFItemScores scores items liked by users whose interaction overlap
// with the target user clears minSimilarity. Items the target already
// interacted with are excluded when excludeInteracted is set.
func (s *SocialStore) UserCFItemScores(
	ctx context.Context,
	userID uuid.UUID,
	minSimilarity float64,
	excludeInteracted bool,
	limit int,
) ([]ScoredID, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (me:User {user_id: $userId})-[:INTERACTED]->(shared:Content)<-[:INTERACTED]-(peer:User)
		WHERE me <> peer
		WITH me, peer, count(DISTINCT shared) AS overlap
		MATCH (me)-[:INTERACTED]->(mine:Content)
		WITH me, peer, overlap, count(DISTINCT mine) AS mine_total
		WITH me, peer, toFloat(overlap) / sqrt(toFloat(mine_total) * toFloat(overlap + 1)) AS similarity
		WHERE similarity >= $minSimilarity
		MATCH (peer)-[r:INTERACTED]->(item:Content)`
	if excludeInteracted {
		query += `
		WHERE NOT EXISTS { MATCH (me)-[:INTERACTED]->(item) }`
	}
	query += `
		WITH item, sum(similarity * coalesce(r.weight, 1.0)) AS score
		RETURN item.content_id AS item_id, score
		ORDER BY score DESC
		LIMIT $limit`

	return s.runScoredIDQuery(ctx, session, query, map[string]interface{}{
		"userId":        userID.String(),
		"minSimilarity": minSimilarity,
		"limit":         limit,
	})
}

// SocialCFItemScores is the follow-graph-weighted variant: peer similarity
// is damped by follow distance, so items from the user's social
// neighborhood dominate.
func (s *SocialStore) SocialCFItemScores(
	ctx context.Context,
	userID uuid.UUID,
	minSimilarity float64,
	excludeInteracted bool,
	limit int,
) ([]ScoredID, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH path = shortestPath((me:User {user_id: $userId})-[:FOLLOWS*1..3]-(peer:User))
		WITH me, peer, length(path) AS distance
		MATCH (me)-[:INTERACTED]->(shared:Content)<-[:INTERACTED]-(peer)
		WITH me, peer, distance, count(DISTINCT shared) AS overlap
		WITH me, peer, (toFloat(overlap) / (overlap + 5.0)) / distance AS similarity
		WHERE similarity >= $minSimilarity
		MATCH (peer)-[r:INTERACTED]->(item:Content)`
	if excludeInteracted {
		query += `
		WHERE NOT EXISTS { MATCH (me)-[:INTERACTED]->(item) }`
	}
	query += `
		WITH item, sum(similarity * coalesce(r.weight, 1.0)) AS score
		RETURN item.content_id AS item_id, score
		ORDER BY score DESC
		LIMIT $limit`

	return s.runScoredIDQuery(ctx, session, query, map[string]interface{}{
		"userId":        userID.String(),
		"minSimilarity": minSimilarity,
		"limit":         limit,
	})
}

// ProximityScore computes the social proximity between the user and an
// item's author: follow distance (closer is higher), author influence
// (log-scaled follower count), and direct interaction history. The
// combined score is the mean of the requested components.
func (s *SocialStore) ProximityScore(
	ctx context.Context,
	userID uuid.UUID,
	authorID uuid.UUID,
	opts ProximityOptions,
) (*models.SocialSignals, error) {
	if userID == authorID {
		return &models.SocialSignals{Score: 1, Reasons: []string{"own content"}}, nil
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	maxDistance := opts.MaxDistance
	if maxDistance <= 0 {
		maxDistance = 3
	}

	query := fmt.Sprintf(`
		MATCH (me:User {user_id: $userId}), (author:User {user_id: $authorId})
		OPTIONAL MATCH path = shortestPath((me)-[:FOLLOWS*1..%d]-(author))
		OPTIONAL MATCH (follower:User)-[:FOLLOWS]->(author)
		OPTIONAL MATCH (me)-[i:INTERACTED]->(:Content)<-[:AUTHORED]-(author)
		RETURN
			CASE WHEN path IS NULL THEN -1 ELSE length(path) END AS distance,
			count(DISTINCT follower) AS followers,
			count(DISTINCT i) AS interactions`, maxDistance)

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userId":   userID.String(),
		"authorId": authorID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("proximity query failed: %w", err)
	}

	signals := &models.SocialSignals{}
	if result.Next(ctx) {
		record := result.Record()
		distance := record.Values[0].(int64)
		followers := record.Values[1].(int64)
		interactions := record.Values[2].(int64)

		var parts []float64
		if opts.IncludeDistance {
			if distance > 0 {
				signals.DistanceScore = 1.0 / float64(distance)
				signals.Reasons = append(signals.Reasons,
					fmt.Sprintf("%d follow hops away", distance))
			}
			parts = append(parts, signals.DistanceScore)
		}
		if opts.IncludeInfluence {
			signals.InfluenceScore = math.Min(math.Log10(float64(followers)+1)/4.0, 1.0)
			if followers > 0 {
				signals.Reasons = append(signals.Reasons,
					fmt.Sprintf("author followed by %d users", followers))
			}
			parts = append(parts, signals.InfluenceScore)
		}
		if opts.IncludeInteractions {
			signals.InteractionScore = math.Min(float64(interactions)/10.0, 1.0)
			if interactions > 0 {
				signals.Reasons = append(signals.Reasons,
					"you interacted with this author before")
			}
			parts = append(parts, signals.InteractionScore)
		}
		if len(parts) > 0 {
			sum := 0.0
			for _, p := range parts {
				sum += p
			}
			signals.Score = sum / float64(len(parts))
		}
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return signals, nil
}

func (s *SocialStore) runScoredIDQuery(
	ctx context.Context,
	session neo4j.SessionWithContext,
	query string,
	params map[string]interface{},
) ([]ScoredID, error) {
	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("graph query failed: %w", err)
	}

	var scored []ScoredID
	for result.Next(ctx) {
		record := result.Record()
		idStr, ok := record.Values[0].(string)
		if !ok {
			continue
		}
		score, ok := record.Values[1].(float64)
		if !ok {
			continue
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			s.logger.WithField("item_id", idStr).Error("Failed to parse item id from graph result")
			continue
		}
		scored = append(scored, ScoredID{ID: id, Score: score})
	}
	return scored, result.Err()
}
