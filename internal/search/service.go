package search

import "log"

// Service fronts a primary Meilisearch searcher with a Postgres FTS fallback.
// Indexing is best effort: the database stays the source of truth, so a lost
// index write only degrades ranking until the next reindex.
type Service struct {
	primary  *Meili
	fallback *PgFTS
}

func NewService(primary *Meili, fallback *PgFTS) *Service {
	return &Service{primary: primary, fallback: fallback}
}

func (s *Service) Search(q Query) (Response, error) {
	if s.primary != nil && s.primary.Healthy() {
		results, total, err := s.primary.Search(q)
		if err == nil {
			return Response{Results: results, Total: total, Query: q.Text}, nil
		}
		log.Printf("search: meilisearch failed, falling back to postgres: %v", err)
	}
	results, total, err := s.fallback.Search(q)
	if err != nil {
		return Response{}, err
	}
	return Response{Results: results, Total: total, Query: q.Text}, nil
}

func (s *Service) IndexReview(r ReviewRecord) {
	if s.primary == nil {
		return
	}
	if err := s.primary.IndexReview(r); err != nil {
		log.Printf("search: index review %s: %v", r.ID, err)
	}
}

func (s *Service) DeleteReviews(reviewIDs []string) {
	if s.primary == nil {
		return
	}
	if err := s.primary.DeleteReviews(reviewIDs); err != nil {
		log.Printf("search: delete reviews: %v", err)
	}
}
