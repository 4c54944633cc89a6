package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func signalEmails(n int, set func(*ProcessedEmail)) []ProcessedEmail {
	emails := make([]ProcessedEmail, n)
	for i := range emails {
		emails[i] = ProcessedEmail{SenderDomain: "unknown"}
		set(&emails[i])
	}
	return emails
}

func TestLabelCluster_SignalMajorities(t *testing.T) {
	tests := []struct {
		name     string
		emails   []ProcessedEmail
		expected string
	}{
		{
			name:     "newsletter majority",
			emails:   signalEmails(5, func(e *ProcessedEmail) { e.IsNewsletter = true }),
			expected: "Newsletters & Subscriptions",
		},
		{
			name:     "notification majority",
			emails:   signalEmails(5, func(e *ProcessedEmail) { e.IsNotification = true }),
			expected: "Notifications & Alerts",
		},
		{
			name:     "promotional majority",
			emails:   signalEmails(5, func(e *ProcessedEmail) { e.IsPromotional = true }),
			expected: "Promotions & Marketing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, description := labelCluster(tt.emails, nil, nil)
			assert.Equal(t, tt.expected, label)
			assert.Contains(t, description, "5 emails")
		})
	}
}

func TestLabelCluster_SignalMinorityDoesNotWin(t *testing.T) {
	// 3 of 5 newsletters is 60%, not strictly more, so the signal rule
	// must not fire.
	emails := signalEmails(5, func(e *ProcessedEmail) {})
	emails[0].IsNewsletter = true
	emails[1].IsNewsletter = true
	emails[2].IsNewsletter = true

	label, _ := labelCluster(emails, nil, nil)
	assert.NotEqual(t, "Newsletters & Subscriptions", label)
}

func TestLabelCluster_DominantDomain(t *testing.T) {
	emails := signalEmails(4, func(e *ProcessedEmail) { e.SenderDomain = "github.com" })
	emails[3].SenderDomain = "other.com"

	label, description := labelCluster(emails, nil, nil)
	assert.Equal(t, "Technology & Development", label)
	assert.Contains(t, description, "github.com")
}

func TestLabelCluster_CommonSubjectWords(t *testing.T) {
	emails := []ProcessedEmail{
		{SenderDomain: "unknown", CleanedSubject: "your invoice is ready"},
		{SenderDomain: "unknown", CleanedSubject: "invoice overdue"},
		{SenderDomain: "unknown", CleanedSubject: "new invoice attached"},
	}

	label, _ := labelCluster(emails, nil, nil)
	assert.Equal(t, "Invoices", label)
}

func TestLabelCluster_SizeFallback(t *testing.T) {
	label, description := labelCluster(signalEmails(3, func(e *ProcessedEmail) {}), nil, nil)
	assert.Equal(t, "Small Email Group", label)
	assert.Contains(t, description, "3 emails")

	label, _ = labelCluster(signalEmails(15, func(e *ProcessedEmail) {}), nil, nil)
	assert.Equal(t, "Medium Email Group", label)

	label, _ = labelCluster(signalEmails(25, func(e *ProcessedEmail) {}), nil, nil)
	assert.Equal(t, "Large Email Group", label)
}

func TestDomainLabel(t *testing.T) {
	tests := []struct {
		domain   string
		expected string
	}{
		{"facebook.com", "Social Media"},
		{"amazon.com", "Shopping & E-commerce"},
		{"paypal.com", "Financial Services"},
		{"nytimes.com", "News & Media"},
		{"github.com", "Technology & Development"},
		{"slack.com", "Work & Business"},
		{"acme.com", "Acme Emails"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, domainLabel(tt.domain), "domain %s", tt.domain)
	}
}

func TestCommonSubjectWords(t *testing.T) {
	emails := []ProcessedEmail{
		{CleanedSubject: "weekly report summary"},
		{CleanedSubject: "weekly report numbers"},
		{CleanedSubject: "weekly standup"},
	}

	words := commonSubjectWords(emails)
	// "weekly" appears three times, "report" twice; singletons dropped.
	assert.Equal(t, []string{"weekly", "report"}, words)
}

func TestDominantDomain_TieIsDeterministic(t *testing.T) {
	emails := []ProcessedEmail{
		{SenderDomain: "beta.com"},
		{SenderDomain: "alpha.com"},
	}

	domain, count := dominantDomain(emails)
	assert.Equal(t, "alpha.com", domain)
	assert.Equal(t, 1, count)
}
