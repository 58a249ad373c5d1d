package domain

// User represents a registered account. PasswordHash is the bcrypt digest,
// never the plaintext.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
}

// Identity is the verified owner resolved from a bearer token.
type Identity struct {
	ID    int64
	Email string
}
