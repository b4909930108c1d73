package jwttoken

import (
	"mandate/internal/platform/middleware"
)

// JWTServiceAdapter bridges JWTService to the middleware.TokenValidator
// boundary so the middleware package stays free of JWT specifics.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.IdentityClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.IdentityClaims{
		UserID: claims.UserID,
		Admin:  claims.Admin,
	}, nil
}
