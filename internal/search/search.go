package search

// Result is a single search hit returned to the caller.
type Result struct {
	ReviewID   string `json:"reviewId"`
	DocumentID string `json:"documentId"`
	Version    int    `json:"version"`
	Title      string `json:"title"`
	Snippet    string `json:"snippet"`
	Reviewer   string `json:"reviewer"`
}

// Query describes a search request. Results are not permission-filtered here;
// the caller intersects hits with the viewer grants of the requesting user.
type Query struct {
	Text   string
	Limit  int
	Offset int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push review versions into a search index.
type Indexer interface {
	IndexReview(r ReviewRecord) error
	DeleteReviews(reviewIDs []string) error
}

// ReviewRecord is the data we index for one review version.
type ReviewRecord struct {
	ID         string `json:"id"`
	DocumentID string `json:"documentId"`
	Version    int    `json:"version"`
	Title      string `json:"title"`
	Summary    string `json:"summary"`
	Reviewer   string `json:"reviewer"`
}
