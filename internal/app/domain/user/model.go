package user

// User owns an ordered collection of tasks. Users are immutable once created.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
