// Package auth covers both sides of authentication in opexcore.
//
// Outbound, towards the panels: [InspectToken] reads the claims of a panel
// access token (expiry, subject, privilege hints) without verifying its
// signature, and [PasswordForm] builds the OAuth2 password form most panels
// log in with. [MapLoginError] normalizes login rejections.
//
// Inbound, for the commands that serve panel data: a chain-of-responsibility
// of authenticators with three-outcome voting (Yes, No, Abstain) and an
// HTTP [Middleware] that enforces it, optionally with a per-subject rate
// limit. Identities may be restricted to a subset of panel profiles.
package auth
