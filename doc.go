// Package authlib provides the credential and token lifecycle for an
// authenticated-user workflow: registration, login, token refresh, and
// logout with blacklist-based revocation.
//
// Token lifecycle:
//   - TokenService issues HMAC-signed access and refresh tokens carrying a
//     unique jti claim, the numeric user id, the email, and a type claim.
//     Verify enforces signature, issuer, and expiry; DecodeUnverified exists
//     only so logout can recover the jti/exp of tokens that are already
//     expired or were signed with a rotated secret.
//   - Logout records each jti in the token blacklist together with the
//     token's own expiry; RefreshAccessToken rejects revoked refresh tokens.
//     Plain token verification never consults the blacklist, access tokens
//     stay valid until their short natural expiry.
//
// Accounts:
//   - Users are stored via Bun with a storage-level unique index on email.
//     The repository performs an optimistic lookup for a friendly error, but
//     the unique index is the authoritative arbiter when concurrent
//     registrations race.
//   - Passwords are hashed with Argon2id into a self-describing encoded
//     string. NeedsRehash compares the parameters embedded in a stored hash
//     against the hasher's configured parameters, and Login transparently
//     upgrades stale hashes after a successful verification.
package authlib
