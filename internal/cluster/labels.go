package cluster

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var subjectWordPattern = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)

// genericSubjectWords are too common across subjects to name a cluster.
var genericSubjectWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "you": {}, "your": {},
}

// featureCategory pairs a keyword found in a TF-IDF feature name with
// a display category. Checked per feature, in feature rank order.
type featureCategory struct {
	keyword  string
	category string
}

var featureCategories = []featureCategory{
	{"work", "Work & Business"},
	{"business", "Work & Business"},
	{"meeting", "Work & Business"},
	{"project", "Work & Business"},
	{"team", "Work & Business"},
	{"newsletter", "Newsletters"},
	{"news", "News & Updates"},
	{"update", "News & Updates"},
	{"notification", "Notifications"},
	{"alert", "Notifications"},
	{"sale", "Shopping & Deals"},
	{"deal", "Shopping & Deals"},
	{"offer", "Shopping & Deals"},
	{"discount", "Shopping & Deals"},
	{"order", "Shopping & Orders"},
	{"receipt", "Receipts & Invoices"},
	{"invoice", "Receipts & Invoices"},
	{"payment", "Financial"},
	{"account", "Account Management"},
	{"security", "Security & Privacy"},
	{"social", "Social Media"},
	{"event", "Events & Calendar"},
}

var subjectWordCategories = map[string]string{
	"order":        "Orders & Shopping",
	"receipt":      "Receipts",
	"invoice":      "Invoices",
	"payment":      "Payments",
	"account":      "Account Updates",
	"security":     "Security Alerts",
	"newsletter":   "Newsletters",
	"update":       "Updates",
	"notification": "Notifications",
	"meeting":      "Meetings",
	"event":        "Events",
	"reminder":     "Reminders",
	"confirmation": "Confirmations",
}

// labelCluster produces a label and description for one group of
// emails. The cascade is deterministic: signal majorities first, then
// a dominant sender domain, then top TF-IDF features, then common
// subject words, finally a size-based fallback. The first matching
// rule wins.
func labelCluster(emails []ProcessedEmail, fitted *FittedVectorizer, vectors [][]float64) (label, description string) {
	total := len(emails)

	newsletters, notifications, promotions := 0, 0, 0
	for _, e := range emails {
		if e.IsNewsletter {
			newsletters++
		}
		if e.IsNotification {
			notifications++
		}
		if e.IsPromotional {
			promotions++
		}
	}

	switch {
	case float64(newsletters)/float64(total) > 0.6:
		return "Newsletters & Subscriptions",
			fmt.Sprintf("Newsletter and subscription emails (%d emails)", total)
	case float64(notifications)/float64(total) > 0.6:
		return "Notifications & Alerts",
			fmt.Sprintf("System notifications and alerts (%d emails)", total)
	case float64(promotions)/float64(total) > 0.6:
		return "Promotions & Marketing",
			fmt.Sprintf("Promotional and marketing emails (%d emails)", total)
	}

	return contentBasedLabel(emails, fitted, vectors)
}

// contentBasedLabel handles the non-signal branches of the cascade.
func contentBasedLabel(emails []ProcessedEmail, fitted *FittedVectorizer, vectors [][]float64) (string, string) {
	total := len(emails)

	// Dominant sender domain
	if domain, count := dominantDomain(emails); domain != "unknown" && float64(count)/float64(total) > 0.5 {
		return domainLabel(domain),
			fmt.Sprintf("Emails from %s and related services (%d emails)", domain, total)
	}

	// Top TF-IDF features
	if fitted != nil {
		if top := fitted.TopFeaturesForCluster(vectors, 5); len(top) > 0 {
			described := top
			if len(described) > 3 {
				described = described[:3]
			}
			return featuresLabel(top),
				fmt.Sprintf("Emails about %s (%d emails)", strings.Join(described, ", "), total)
		}
	}

	// Common subject words
	if words := commonSubjectWords(emails); len(words) > 0 {
		described := words
		if len(described) > 2 {
			described = described[:2]
		}
		return wordsLabel(words),
			fmt.Sprintf("Emails containing %s (%d emails)", strings.Join(described, ", "), total)
	}

	// Size fallback
	switch {
	case total > 20:
		return "Large Email Group", fmt.Sprintf("Large group of related emails (%d emails)", total)
	case total > 10:
		return "Medium Email Group", fmt.Sprintf("Medium group of related emails (%d emails)", total)
	default:
		return "Small Email Group", fmt.Sprintf("Small group of related emails (%d emails)", total)
	}
}

// dominantDomain returns the most common sender domain and its count.
// Ties resolve to the lexically smallest domain so the result is
// deterministic.
func dominantDomain(emails []ProcessedEmail) (string, int) {
	counts := make(map[string]int)
	for _, e := range emails {
		counts[e.SenderDomain]++
	}

	best, bestCount := "", 0
	for domain, c := range counts {
		if c > bestCount || (c == bestCount && domain < best) {
			best, bestCount = domain, c
		}
	}
	return best, bestCount
}

// featuresLabel maps top TF-IDF features through the keyword table,
// falling back to "{feature} Related" and finally "Mixed Content".
func featuresLabel(features []string) string {
	for _, f := range features {
		lower := strings.ToLower(f)
		for _, fc := range featureCategories {
			if strings.Contains(lower, fc.keyword) {
				return fc.category
			}
		}
	}
	if len(features) > 0 {
		return titleCase(features[0]) + " Related"
	}
	return "Mixed Content"
}

// commonSubjectWords counts alphabetic words (>=3 chars) across the
// cluster's cleaned subjects and returns the up-to-three most common
// that occur more than once and are not generic, ordered by frequency
// (ties alphabetical).
func commonSubjectWords(emails []ProcessedEmail) []string {
	counts := make(map[string]int)
	for _, e := range emails {
		for _, w := range subjectWordPattern.FindAllString(strings.ToLower(e.CleanedSubject), -1) {
			counts[w]++
		}
	}

	words := make([]string, 0, len(counts))
	for w, c := range counts {
		if c <= 1 {
			continue
		}
		if _, generic := genericSubjectWords[w]; generic {
			continue
		}
		words = append(words, w)
	}
	sort.Slice(words, func(a, b int) bool {
		if counts[words[a]] != counts[words[b]] {
			return counts[words[a]] > counts[words[b]]
		}
		return words[a] < words[b]
	})

	if len(words) > 3 {
		words = words[:3]
	}
	return words
}

// wordsLabel maps common subject words through the word table, else
// joins up to two title-cased words with "&".
func wordsLabel(words []string) string {
	for _, w := range words {
		if category, ok := subjectWordCategories[strings.ToLower(w)]; ok {
			return category
		}
	}

	n := len(words)
	if n > 2 {
		n = 2
	}
	titled := make([]string, 0, n)
	for _, w := range words[:n] {
		titled = append(titled, titleCase(w))
	}
	return strings.Join(titled, " & ")
}
