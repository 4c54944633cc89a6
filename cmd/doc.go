// Package cmd implements the command-line interface for inboxgroups.
//
// This package provides the following commands:
//   - cluster: Fetch recent inbox emails and group them into labeled clusters
//   - auth: Authorize Gmail access via the Google OAuth flow
//   - serve: Start the MCP server to provide tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The cluster command is the default command when no subcommand is specified.
package cmd
