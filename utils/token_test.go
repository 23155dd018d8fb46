package utils

import (
	"errors"
	"testing"
	"time"
)

func TestToken(t *testing.T) {
	token, err := GenerateToken(42, "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}

	id, err := ParseToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseToken() error: %v", err)
	}
	if id != 42 {
		t.Errorf("ParseToken() = %d, want 42", id)
	}

	if _, err := ParseToken(token, "other"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ParseToken() with a wrong secret = %v, want ErrInvalidToken", err)
	}
	if _, err := ParseToken("garbage", "secret"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ParseToken() of garbage = %v, want ErrInvalidToken", err)
	}

	expired, err := GenerateToken(42, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}
	if _, err := ParseToken(expired, "secret"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ParseToken() of an expired token = %v, want ErrInvalidToken", err)
	}
}
