// Package google provides OAuth2 authentication and token management for the Gmail API.
//
// Tokens are stored per account in the user cache directory, which suits the
// STDIO transport where the server runs on the user's machine. Refreshed
// access tokens are written back to the token file.
package google
