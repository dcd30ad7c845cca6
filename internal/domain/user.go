package domain

// User is the authenticated identity the chat core works with. Account
// management lives outside this service; only id, display name and the
// admin-controlled active flag cross the boundary.
type User struct {
	ID       int64
	Username string
	Active   bool
}
