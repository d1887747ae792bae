// Package auth implements account registration, credential verification,
// and JWT access tokens.
//
// Passwords are hashed with Argon2id and stored in PHC string format;
// plaintext never touches the database. Login failures are uniform
// (ErrInvalidCredentials) whether the account is missing or the password
// is wrong. Access tokens are HS256 JWTs validated by signature alone.
package auth
