package analysis

// FileRef is one entry from the repository tree. Immutable once fetched.
type FileRef struct {
	Path string `json:"path"`
	Kind string `json:"type"` // "blob" or "tree"
	Size int64  `json:"size,omitempty"`
	SHA  string `json:"sha,omitempty"`
}

// Chunk is a bounded, provenance-tagged slice of one file's content. It is
// the unit of scoring and budgeting. ID is derived from the source path and
// an ordinal so repeated chunking of identical input yields identical ids.
type Chunk struct {
	ID           string `json:"chunk_id"`
	Path         string `json:"path"`
	Content      string `json:"content"`
	StartLine    int    `json:"start_line"`
	EndLine      int    `json:"end_line"`
	Heading      string `json:"heading,omitempty"`
	HeadingLevel int    `json:"heading_level,omitempty"`
}

// ScoredChunk pairs a chunk with its importance score. The score is a pure
// function of the chunk's static attributes.
type ScoredChunk struct {
	Chunk
	Score float64 `json:"score"`
}

// BudgetResult partitions an input chunk set under a token ceiling.
// Selected and Overflow together contain every input chunk exactly once.
type BudgetResult struct {
	Selected   []Chunk `json:"selected"`
	Overflow   []Chunk `json:"overflow"`
	TokensUsed int     `json:"tokens_used"`
}

// ManifestEntry is the compact per-chunk descriptor handed to the compose
// stage instead of full chunk content.
type ManifestEntry struct {
	ID      string `json:"id"`
	Path    string `json:"path"`
	Type    string `json:"type"`
	Size    int    `json:"size"`
	Summary string `json:"summary"`
}

// RepoMetadata is the subset of upstream repository metadata the pipeline
// consumes. Not a full mirror of the provider schema.
type RepoMetadata struct {
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	Language      string `json:"language"`
	DefaultBranch string `json:"default_branch"`
	Stars         int    `json:"stargazers_count"`
	OpenIssues    int    `json:"open_issues_count"`
}

// Label is an issue or pull-request label.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Actor is the author of an issue, PR, or commit.
type Actor struct {
	Login string `json:"login"`
}

// Issue is one open issue from the upstream listing. Entries that are
// actually pull requests carry IsPullRequest=true and are skipped by the
// ranking heuristic.
type Issue struct {
	Number        int     `json:"number"`
	Title         string  `json:"title"`
	Body          string  `json:"body"`
	Comments      int     `json:"comments"`
	Labels        []Label `json:"labels"`
	User          Actor   `json:"user"`
	HTMLURL       string  `json:"html_url,omitempty"`
	IsPullRequest bool    `json:"-"`
}

// PullRequest is one entry from the upstream PR listing. Additions,
// Deletions and ReviewComments are only populated when detail data was
// fetched; the list endpoint omits them.
type PullRequest struct {
	Number         int     `json:"number"`
	Title          string  `json:"title"`
	State          string  `json:"state"`
	MergedAt       string  `json:"merged_at,omitempty"`
	CreatedAt      string  `json:"created_at,omitempty"`
	User           Actor   `json:"user"`
	Labels         []Label `json:"labels,omitempty"`
	Additions      int     `json:"additions,omitempty"`
	Deletions      int     `json:"deletions,omitempty"`
	Comments       int     `json:"comments,omitempty"`
	ReviewComments int     `json:"review_comments,omitempty"`
}

// Commit is one entry from the upstream commit listing.
type Commit struct {
	SHA        string `json:"sha"`
	AuthoredAt string `json:"authored_at"`
	Author     Actor  `json:"author"`
}

// WorkflowRef points at one CI workflow definition.
type WorkflowRef struct {
	Name string `json:"name"`
	Path string `json:"path"`
}
