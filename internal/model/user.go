package model

import "time"

type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

func (u User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

type UserCreate struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
}
