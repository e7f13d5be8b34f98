// Package auth implements the credential and session-token core of the
// backend: password hashing, access/refresh token issuance and validation,
// and the login/refresh/logout lifecycle.
//
// Token lifecycle:
//   - Access tokens are short-lived, carry a profile snapshot (username,
//     display name, email), and authorize individual requests statelessly.
//   - Refresh tokens are long-lived, carry only the principal id, and are
//     valid only while they match the single refresh-token slot persisted on
//     the principal. Every successful refresh rotates the slot, so a
//     superseded token is rejected before it expires.
//
// Persistence is abstracted behind CredentialStore; the package owns no
// state beyond the signing secrets it is configured with.
package auth
