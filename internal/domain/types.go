package domain

const (
	FileStatusAdded    = "added"
	FileStatusModified = "modified"
	FileStatusDeleted  = "deleted"
)

// Diff represents the full changeset under review.
type Diff struct {
	FromCommitHash string
	ToCommitHash   string
	Files          []FileDiff
}

// FileDiff captures the change for a single file. Patch holds the
// file's own unified diff text, including the per-file header lines.
type FileDiff struct {
	Path   string
	Status string
	Patch  string
}

// Diagnostic is one clang-tidy finding, normalized from either of the
// two historical export shapes at ingestion.
type Diagnostic struct {
	Name         string
	Message      string
	FilePath     string
	FileOffset   int
	Replacements []Replacement
	Notes        []Note
}

// Replacement is a suggested text substitution at a byte range.
type Replacement struct {
	FilePath        string
	Offset          int
	Length          int
	ReplacementText string
}

// Note is a secondary diagnostic location with its own message.
type Note struct {
	Message    string
	FilePath   string
	FileOffset int
}

// ReviewEvent classifies a submitted review.
type ReviewEvent string

// EventComment submits the review without approving or blocking.
// The engine never requests changes or approves.
const EventComment ReviewEvent = "COMMENT"

// ReviewComment is one inline comment, addressed by new-side line
// number. Field names are part of the review API wire contract.
type ReviewComment struct {
	Path      string `json:"path"`
	Body      string `json:"body"`
	Side      string `json:"side"`
	Line      int    `json:"line"`
	StartSide string `json:"start_side,omitempty"`
	StartLine int    `json:"start_line,omitempty"`
}

// Review is the finished, postable payload. It is constructed fresh
// each run and handed to the posting adapter as a value; only the
// culler mutates it (comment removal, truncation, body append).
type Review struct {
	Body     string          `json:"body"`
	Event    ReviewEvent     `json:"event"`
	Comments []ReviewComment `json:"comments"`
}

// PostedComment identifies a review comment that already exists on the
// pull request. Candidate comments matching all three fields are not
// re-posted.
type PostedComment struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Body string `json:"body"`
}

// Metadata carries the information needed to post a review from a
// workflow run that has no pull request context of its own.
type Metadata struct {
	PRNumber int `json:"pr_number"`
}
