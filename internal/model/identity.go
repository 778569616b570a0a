package model

// Identity is the outcome of session verification: either a known
// user or an anonymous caller. Each route declares which variant it
// accepts instead of duck-typing on a possibly-nil user.
type Identity struct {
	UserID        int64
	Authenticated bool
}

// Authenticated builds an identity for a verified user.
func Authenticated(userID int64) Identity {
	return Identity{UserID: userID, Authenticated: true}
}

// Anonymous builds the identity for requests without a credential.
func Anonymous() Identity {
	return Identity{}
}
