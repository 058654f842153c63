// Package auth provides the account and session core of the task manager:
// bcrypt password hashing, HS256 bearer tokens, a bun backed user store
// whose records carry their active token set, and the fiber gate that
// admits a request only while its token is still in that set.
//
// Sessions:
//   - Register and Login each mint a new token and append it to the user's
//     TokenSet. Every token is independent; Logout removes exactly one and
//     LogoutAll clears the set.
//   - The gate (ProtectedRoute) verifies signature and expiry, loads the
//     owner and checks membership on every request. Nothing is cached, so a
//     revoked token stops working on the next request.
//
// Serialization:
//   - User never emits its password, hash, tokens or avatar key. Handlers can
//     return a *User directly.
//
// Activity sinks:
//   - ActivitySink receives register, login, logout and account deletion
//     events. Sinks run best-effort (errors are logged) so auditing never
//     blocks authentication.
package auth
