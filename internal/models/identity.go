package models

// Identity is who the current session belongs to. It is either an
// Authenticated account backed by the remote store or a local-only Guest.
type Identity interface {
	// SessionKey identifies the session that owns the snapshot.
	SessionKey() string
	isIdentity()
}

// Authenticated is a real account; ID scopes every remote row.
type Authenticated struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Guest is a demo session. Nothing it does reaches the remote store.
type Guest struct {
	SessionID string `json:"session_id"`
}

func (a Authenticated) SessionKey() string { return "user:" + a.ID }
func (g Guest) SessionKey() string         { return "guest:" + g.SessionID }

func (Authenticated) isIdentity() {}
func (Guest) isIdentity()         {}
