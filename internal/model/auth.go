package model

import "github.com/golang-jwt/jwt/v5"

// OperatorClaims are JWT claims for operator authentication
type OperatorClaims struct {
	OperatorID string `json:"operatorId"`
	jwt.RegisteredClaims
}

// SessionClaims are JWT claims for session-scoped tokens
type SessionClaims struct {
	SessionID string `json:"sessionId"`
	Mode      Mode   `json:"mode"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for operator login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token      string `json:"token"`
	OperatorID string `json:"operatorId"`
}
