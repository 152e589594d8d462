package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	ID                int64     `json:"-"`
	Email             string    `json:"email"`
	Username          string    `json:"username"`
	Password          []byte    `json:"-"`
	PlaintextPassword string    `json:"-"`
	DateJoined        time.Time `json:"dateJoined"`
}

type UserClaim struct {
	Username string `json:"username"`

	jwt.RegisteredClaims
}
