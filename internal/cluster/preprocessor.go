package cluster

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/net/html"

	"github.com/teemow/inboxgroups/internal/logging"
)

var (
	// The $-_ range spans the path, query and port characters
	// (/ : ? = digits), so whole URLs match, not just the host.
	urlPattern        = regexp.MustCompile(`http[s]?://[a-zA-Z0-9$-_@.&+!*(),%]+`)
	emailAddrPattern  = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern      = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	punctPattern      = regexp.MustCompile(`[^\w\s\-.]`)
	numeralPattern    = regexp.MustCompile(`\b\d+\b`)
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	addrBracketRe     = regexp.MustCompile(`<([^>]+)>`)
	domainRe          = regexp.MustCompile(`@([^@]+)`)
	mailSubdomainRe   = regexp.MustCompile(`^(mail|smtp|pop|imap)\.`)
)

// Keyword lists for the boolean email signals. An email may match any
// combination of them; the checks are independent.
var (
	newsletterIndicators = []string{
		"newsletter", "digest", "weekly", "monthly", "daily",
		"unsubscribe", "subscription", "mailing list",
		"noreply", "no-reply", "donotreply",
	}
	notificationIndicators = []string{
		"notification", "alert", "reminder", "confirmation",
		"receipt", "invoice", "statement", "report",
		"update", "status", "activity", "security",
	}
	promotionalIndicators = []string{
		"sale", "discount", "offer", "deal", "promotion",
		"coupon", "save", "free", "limited time",
		"special", "exclusive", "buy now", "shop",
	}
)

// Preprocessor normalizes raw emails into cleaned text and signal
// features ready for vectorization.
type Preprocessor struct {
	stopWords map[string]struct{}
	logger    *slog.Logger
}

// NewPreprocessor creates a Preprocessor with the default stop word
// sets (standard English plus email-specific terms).
func NewPreprocessor(logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preprocessor{
		stopWords: defaultStopWords(),
		logger:    logging.WithOperation(logger, "preprocess"),
	}
}

// Preprocess converts a batch of raw emails into processed emails.
// A single malformed email is logged and skipped; it never aborts the
// batch.
func (p *Preprocessor) Preprocess(emails []RawEmail) []ProcessedEmail {
	processed := make([]ProcessedEmail, 0, len(emails))
	for _, e := range emails {
		pe, err := p.extractFeatures(e)
		if err != nil {
			p.logger.Warn("skipping email that failed preprocessing",
				slog.String("gmail_id", e.GmailID),
				logging.Err(err))
			continue
		}
		processed = append(processed, pe)
	}
	return processed
}

// extractFeatures derives all ProcessedEmail fields from a RawEmail.
// Panics from the HTML parser on pathological markup are converted to
// errors so the caller can skip the email.
func (p *Preprocessor) extractFeatures(e RawEmail) (pe ProcessedEmail, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("preprocessing panic: %v", r)
		}
	}()

	subject := p.CleanText(e.Subject)
	body := p.CleanText(e.Body)
	tokens := p.tokenizeAndFilter(subject + " " + body)

	pe = ProcessedEmail{
		GmailID:        e.GmailID,
		Sender:         e.Sender,
		CleanedSubject: subject,
		CleanedBody:    body,
		SenderDomain:   ExtractSenderDomain(e.Sender),
		Tokens:         tokens,
		CombinedText:   strings.Join(tokens, " "),
		TokenCount:     len(tokens),
		SubjectLength:  len(strings.Fields(subject)),
		BodyLength:     len(strings.Fields(body)),
		HasAttachments: strings.Contains(strings.ToLower(e.Body), "attachment"),
		IsNewsletter:   containsAny(e.Sender+" "+e.Subject+" "+e.Body, newsletterIndicators),
		IsNotification: containsAny(e.Subject+" "+e.Body, notificationIndicators),
		IsPromotional:  containsAny(e.Subject+" "+e.Body, promotionalIndicators),
	}
	return pe, nil
}

// CleanText normalizes a text fragment: HTML, URLs, addresses and
// phone numbers are stripped, whitespace is collapsed, the result is
// lowercased, punctuation other than hyphens and periods is dropped
// and standalone numbers are removed. The step order matters; each
// step feeds the next.
func (p *Preprocessor) CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = stripHTML(text)
	text = urlPattern.ReplaceAllString(text, "")
	text = emailAddrPattern.ReplaceAllString(text, "")
	text = phonePattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = strings.ToLower(text)
	text = punctPattern.ReplaceAllString(text, " ")
	text = numeralPattern.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")

	return strings.TrimSpace(text)
}

// stripHTML extracts the text content of an HTML fragment. If parsing
// fails, tags are removed with a regex instead so markup never leaks
// into later cleaning steps.
func stripHTML(text string) string {
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return tagPattern.ReplaceAllString(text, "")
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return sb.String()
}

// ExtractSenderDomain pulls the lowercase domain out of a sender
// string such as "Jane Doe <jane@mail.example.com>". Common mail
// subdomain prefixes (mail., smtp., pop., imap.) are stripped.
// Returns "unknown" when no domain can be parsed.
func ExtractSenderDomain(sender string) string {
	addr := sender
	if m := addrBracketRe.FindStringSubmatch(sender); m != nil {
		addr = m[1]
	}

	m := domainRe.FindStringSubmatch(addr)
	if m == nil {
		return "unknown"
	}

	domain := strings.ToLower(m[1])
	return mailSubdomainRe.ReplaceAllString(domain, "")
}

// tokenizeAndFilter splits cleaned text into word tokens, drops short
// tokens, stop words and pure punctuation, and stems the survivors.
// If stemming fails for a token the unstemmed token is kept rather
// than failing the email.
func (p *Preprocessor) tokenizeAndFilter(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))
	for _, w := range words {
		lower := strings.ToLower(w)
		if len(w) < 3 {
			continue
		}
		if _, stop := p.stopWords[lower]; stop {
			continue
		}
		if allPunctuation(w) {
			continue
		}

		stemmed, err := snowball.Stem(lower, "english", false)
		if err != nil || stemmed == "" {
			stemmed = lower
		}
		filtered = append(filtered, stemmed)
	}

	return filtered
}

func allPunctuation(s string) bool {
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return len(s) > 0
}

func containsAny(text string, indicators []string) bool {
	lower := strings.ToLower(text)
	for _, in := range indicators {
		if strings.Contains(lower, in) {
			return true
		}
	}
	return false
}
