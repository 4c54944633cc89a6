package cluster

import "time"

// RawEmail is a single fetched email as delivered by the mail source.
// It is immutable once fetched; all derived attributes live on
// ProcessedEmail.
type RawEmail struct {
	GmailID      string
	Subject      string
	Sender       string
	Body         string
	DateReceived time.Time
	IsArchived   bool
}

// ProcessedEmail carries the cleaned text and signal features derived
// from one RawEmail. Every ProcessedEmail traces back to exactly one
// RawEmail via GmailID; all fields are a pure function of the raw
// fields.
type ProcessedEmail struct {
	GmailID string
	Sender  string

	// CleanedSubject and CleanedBody are the lowercased, HTML- and
	// URL-stripped forms of the raw subject and body.
	CleanedSubject string
	CleanedBody    string

	// SenderDomain is the lowercase domain of the sender address with
	// common mail subdomain prefixes stripped, or "unknown".
	SenderDomain string

	// Tokens are the stemmed, stop-word-filtered word tokens of the
	// combined subject+body text. CombinedText is the tokens rejoined
	// with single spaces.
	Tokens       []string
	CombinedText string

	TokenCount    int
	SubjectLength int
	BodyLength    int

	HasAttachments bool
	IsNewsletter   bool
	IsNotification bool
	IsPromotional  bool
}

// Cluster is one group of thematically related emails. Clusters are
// returned sorted by EmailCount descending with IDs reassigned 1..N in
// that order.
type Cluster struct {
	ID          int
	Label       string
	Description string
	EmailCount  int
	Emails      []ProcessedEmail
	EmailIDs    []string
}

// Assignment pairs an email with the cluster it belongs to, in a shape
// suitable for persisting as a join table row.
type Assignment struct {
	GmailID   string
	ClusterID int
}

// Assignments flattens a cluster list into (email, cluster) pairs.
func Assignments(clusters []Cluster) []Assignment {
	var out []Assignment
	for _, c := range clusters {
		for _, id := range c.EmailIDs {
			out = append(out, Assignment{GmailID: id, ClusterID: c.ID})
		}
	}
	return out
}
