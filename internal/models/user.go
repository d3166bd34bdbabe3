package models

// User identifies a watchlist owner. Profile attributes (name, avatar,
// session state) belong to the application shell, not this core; the
// coordinators only ever see the numeric id.
type User struct {
	ID int64 `json:"id"`
}
