package google

// DefaultOAuthScopes are the Google OAuth scopes required for inbox
// clustering and archiving. These scopes are used consistently across
// the application for OAuth configurations.
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Gmail scopes
	"https://mail.google.com/", // Full Gmail access (includes modify)
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.modify",
}
