// Package google provides shared infrastructure for the Google Drive connector.
//
// This package contains:
//   - TokenSource construction from configured OAuth credentials
//   - Service factories for creating Google API clients
//   - Error handling for common Google API errors (401, 403, 404, 410, 429)
//   - Rate limiting to respect Google API quotas
//
// # Usage
//
//	ts, err := google.NewTokenSource(ctx, google.CredentialsFromConfig(store))
//	svc, err := google.NewDriveService(ctx, ts)
//
// # OAuth2 Scopes
//
// Reading the changes feed and comments needs:
//   - https://www.googleapis.com/auth/drive.readonly (restricted)
//
// For user-created internal apps, restricted scopes don't require verification.
package google
