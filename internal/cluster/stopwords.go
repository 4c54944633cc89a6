package cluster

// englishStopWords is the standard English stop word list (the NLTK
// set) used for token filtering.
var englishStopWords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you",
	"your", "yours", "yourself", "yourselves", "he", "him", "his",
	"himself", "she", "her", "hers", "herself", "it", "its", "itself",
	"they", "them", "their", "theirs", "themselves", "what", "which",
	"who", "whom", "this", "that", "these", "those", "am", "is", "are",
	"was", "were", "be", "been", "being", "have", "has", "had", "having",
	"do", "does", "did", "doing", "a", "an", "the", "and", "but", "if",
	"or", "because", "as", "until", "while", "of", "at", "by", "for",
	"with", "about", "against", "between", "into", "through", "during",
	"before", "after", "above", "below", "to", "from", "up", "down",
	"in", "out", "on", "off", "over", "under", "again", "further",
	"then", "once", "here", "there", "when", "where", "why", "how",
	"all", "any", "both", "each", "few", "more", "most", "other", "some",
	"such", "no", "nor", "not", "only", "own", "same", "so", "than",
	"too", "very", "s", "t", "can", "will", "just", "don", "should",
	"now",
}

// emailStopWords are terms so common in email that they carry no
// clustering signal.
var emailStopWords = []string{
	"email", "mail", "message", "sent", "received", "reply", "forward",
	"subject", "from", "to", "cc", "bcc", "date", "time",
	"gmail", "outlook", "yahoo", "hotmail",
	"http", "https", "www", "com", "org", "net",
	"unsubscribe", "click", "here", "link",
	"best", "regards", "sincerely", "thanks", "thank", "you",
	"please", "let", "know", "get", "back", "contact",
	"would", "could", "should", "will", "can", "may",
	"one", "two", "three", "first", "second", "last",
	"also", "just", "now", "then", "well", "good", "great",
}

func defaultStopWords() map[string]struct{} {
	m := make(map[string]struct{}, len(englishStopWords)+len(emailStopWords))
	for _, w := range englishStopWords {
		m[w] = struct{}{}
	}
	for _, w := range emailStopWords {
		m[w] = struct{}{}
	}
	return m
}
