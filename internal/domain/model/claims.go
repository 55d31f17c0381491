package model

import "time"

// Claims is the verified identity carried by a bearer token.
type Claims struct {
	Subject   string    `json:"sub"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}
