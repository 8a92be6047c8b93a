package model

import "time"

// User is a row of the owner directory. Its ID is the owner of every todo
// created while the user is signed in.
type User struct {
	ID         string    `json:"id"`
	CognitoSub string    `json:"cognito_sub"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
