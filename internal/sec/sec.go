// Package sec provides authentication and message encryption primitives for
// the web application.
//
// # Authentication
//
// Every request authenticates with HTTP Basic Auth; there are no sessions or
// tokens. End users are checked against bcrypt password hashes stored in the
// database. The operator (admin) is checked against credentials supplied by
// configuration.
//
// IMPORTANT: Basic Auth transmits credentials in base64 encoding (not encrypted).
// TLS must be used in production to protect credentials in transit.
//
// # Encryption
//
// Message bodies are sealed with AES-256-GCM under a single process-wide key.
// The stored form is an [Envelope]: a random 12 byte nonce followed by the
// ciphertext and tag. The envelope carries no key identifier, so only one key
// can be in use at a time.
//
// # Components
//
//   - [DecodeBasicAuth]: Parses an Authorization header into a [Credential]
//   - [Authenticate]: Validates user credentials against the user store
//   - [AuthorizeAdmin]: Validates operator credentials against configuration
//   - [NewUserAuthMiddleware], [NewAdminAuthMiddleware]: HTTP middleware
//   - [GetAuthenticatedUser], [SetAuthenticatedUser]: Context accessors for user info
//   - [Hasher]: bcrypt hashing on a bounded worker pool
//   - [LoadKey], [Cipher]: Key validation and envelope encryption
//
// All failures are reported as [*Error] values whose [Kind] determines the
// response status.
package sec
