package models

type User struct {
	ID    int64  `json:"id" db:"id" yaml:"id"`
	Name  string `json:"name" db:"name" yaml:"name"`
	Email string `json:"email" db:"email" yaml:"email"`
}

// UserPatch carries a partial user update. Blank fields are ignored.
type UserPatch struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
