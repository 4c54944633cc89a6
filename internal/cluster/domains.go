package cluster

import "strings"

// Domain category codes used as a structural feature column. The
// keyword lists are checked in this priority order; the first match
// wins. The lists are deliberately ad hoc (there is no ground truth
// for email topics) and must not be reordered.
const (
	domainCategoryUnknown  = 0.0
	domainCategorySocial   = 1.0
	domainCategoryShopping = 2.0
	domainCategoryFinance  = 3.0
	domainCategoryNews     = 4.0
	domainCategoryTech     = 5.0
	domainCategoryOrg      = 6.0
	domainCategoryEdu      = 7.0
	domainCategoryOther    = 8.0
)

var (
	socialDomains   = []string{"facebook", "twitter", "linkedin", "instagram", "whatsapp", "telegram"}
	shoppingDomains = []string{"amazon", "ebay", "shopify", "etsy", "alibaba", "walmart"}
	financeDomains  = []string{"bank", "paypal", "stripe", "visa", "mastercard", "finance"}
	newsDomains     = []string{"news", "media", "times", "post", "reuters", "cnn", "bbc"}
	techDomains     = []string{"google", "microsoft", "apple", "github", "stackoverflow", "tech"}
)

// encodeSenderDomain maps a sender domain to its category code.
func encodeSenderDomain(domain string) float64 {
	if domain == "" || domain == "unknown" {
		return domainCategoryUnknown
	}

	switch {
	case domainContainsAny(domain, socialDomains):
		return domainCategorySocial
	case domainContainsAny(domain, shoppingDomains):
		return domainCategoryShopping
	case domainContainsAny(domain, financeDomains):
		return domainCategoryFinance
	case domainContainsAny(domain, newsDomains):
		return domainCategoryNews
	case domainContainsAny(domain, techDomains):
		return domainCategoryTech
	case strings.HasSuffix(domain, ".gov") || strings.HasSuffix(domain, ".org"):
		return domainCategoryOrg
	case strings.HasSuffix(domain, ".edu"):
		return domainCategoryEdu
	}

	return domainCategoryOther
}

// domainLabel converts a dominant sender domain into a human-readable
// cluster label. Keyword groups are checked in a fixed priority order;
// an unmatched domain falls back to its title-cased name with common
// TLD suffixes stripped.
func domainLabel(domain string) string {
	domain = strings.ToLower(domain)

	switch {
	case domainContainsAny(domain, []string{"facebook", "twitter", "linkedin", "instagram"}):
		return "Social Media"
	case domainContainsAny(domain, []string{"amazon", "ebay", "shopify", "etsy", "shop"}):
		return "Shopping & E-commerce"
	case domainContainsAny(domain, []string{"bank", "paypal", "stripe", "finance", "credit"}):
		return "Financial Services"
	case domainContainsAny(domain, []string{"news", "times", "post", "reuters", "cnn", "bbc"}):
		return "News & Media"
	case domainContainsAny(domain, []string{"github", "stackoverflow", "google", "microsoft"}):
		return "Technology & Development"
	case domainContainsAny(domain, []string{"slack", "teams", "zoom", "office", "business"}):
		return "Work & Business"
	}

	clean := strings.NewReplacer(".com", "", ".org", "", ".net", "").Replace(domain)
	return titleCase(clean) + " Emails"
}

func domainContainsAny(domain string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(domain, k) {
			return true
		}
	}
	return false
}

// titleCase capitalizes the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
