// Package auth issues and validates the bearer tokens that guard the webhook.
//
// Tokens are HS256-signed JWTs minted from a shared secret. The dialogue
// engine presents one on every call; the CLI's token command mints them.
package auth
