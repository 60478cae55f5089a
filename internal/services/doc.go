// Package services implements the myFlix backend API client.
//
// Each domain operation maps to exactly one HTTP request against the
// configured base URL. Authenticated endpoints attach a bearer token read
// fresh from the session store on every call via an [oauth2.TokenSource].
package services
