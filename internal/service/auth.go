package service

import (
	"github.com/otpstudio/studio-server-go/internal/auth"
	"github.com/otpstudio/studio-server-go/internal/util"
)

// AuthService verifies the shared admin passcode and issues session tokens.
// Every failed attempt produces the same outcome regardless of how close
// the passcode was, so the endpoint leaks nothing about the secret.
type AuthService struct {
	tokens       *auth.TokenService
	passcode     string
	passcodeHash string
}

func NewAuthService(tokens *auth.TokenService, passcode, passcodeHash string) *AuthService {
	return &AuthService{
		tokens:       tokens,
		passcode:     passcode,
		passcodeHash: passcodeHash,
	}
}

// Login returns a signed admin token on success and "" on a wrong passcode.
func (s *AuthService) Login(passcode string) (string, error) {
	if !s.checkPasscode(passcode) {
		return "", nil
	}
	return s.tokens.Issue(auth.RoleAdmin)
}

func (s *AuthService) checkPasscode(passcode string) bool {
	if s.passcodeHash != "" {
		return util.CheckPasscodeHash(passcode, s.passcodeHash)
	}
	if s.passcode == "" {
		return false
	}
	return util.ConstantTimeEqual(passcode, s.passcode)
}
