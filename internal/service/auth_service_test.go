package service

import (
	"context"
	"testing"

	"github.com/rangerisrael/pet-portal-sub000/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestGoogleLoginRefusedWithoutVerifier(t *testing.T) {
	// Neither a Firebase client nor a Google client ID means the ID token
	// cannot be verified, so no session may be issued.
	svc := AuthService{Config: config.Config{}}

	_, err := svc.LoginWithGoogle(context.Background(), GoogleLoginInput{
		IDToken: "unverifiable",
		Email:   "someone@example.com",
		Name:    "Someone",
	})
	assert.ErrorIs(t, err, ErrGoogleNotConfigured)
}
