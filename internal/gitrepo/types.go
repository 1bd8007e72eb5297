package gitrepo

// RepoHandle is a validated absolute path to one repository beneath the
// configured root. Handles are produced by the Resolver per call and never
// cached; the executor refuses anything else.
type RepoHandle struct {
	Name string
	Path string
}

// Outcome is the raw result of one git invocation. It is internal plumbing
// between the executor and the parsers and never reaches callers directly.
type Outcome struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	TimedOut  bool
	Truncated bool
}

type ListReposResult struct {
	Repositories []string `json:"repositories"`
	Count        int      `json:"count"`
}

type StatusResult struct {
	Branch    string   `json:"branch"`
	Staged    []string `json:"staged"`
	Unstaged  []string `json:"unstaged"`
	Untracked []string `json:"untracked"`
	Clean     bool     `json:"clean"`
}

type Commit struct {
	Hash    string `json:"hash"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Subject string `json:"subject"`
}

type LogResult struct {
	Commits   []Commit `json:"commits"`
	Truncated bool     `json:"truncated,omitempty"`
}

type BranchesResult struct {
	Current string   `json:"current"`
	Others  []string `json:"others"`
}

type DiffResult struct {
	Diff         string `json:"diff"`
	FilesChanged int    `json:"files_changed"`
	Insertions   int    `json:"insertions"`
	Deletions    int    `json:"deletions"`
	Truncated    bool   `json:"truncated,omitempty"`
}

type Remote struct {
	FetchURL string `json:"fetch_url"`
	PushURL  string `json:"push_url"`
}

type RemotesResult struct {
	Remotes map[string]Remote `json:"remotes"`
}

type CurrentBranchResult struct {
	Branch   string `json:"branch,omitempty"`
	Detached bool   `json:"detached,omitempty"`
	Hash     string `json:"hash,omitempty"`
}

type CommitDetail struct {
	Hash    string `json:"hash"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Message string `json:"message"`
	Diff    string `json:"diff"`
}

type SearchMatch struct {
	Path       string `json:"path"`
	LineNumber int    `json:"line_number"`
	LineText   string `json:"line_text"`
}

type SearchResult struct {
	Matches   []SearchMatch `json:"matches"`
	Truncated bool          `json:"truncated,omitempty"`
}

type Contributor struct {
	Name    string `json:"name"`
	Commits int    `json:"commits"`
}

type StatsResult struct {
	CommitCount      int           `json:"commit_count"`
	BranchCount      int           `json:"branch_count"`
	ContributorCount int           `json:"contributor_count"`
	TopContributors  []Contributor `json:"top_contributors"`
}
