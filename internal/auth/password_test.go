// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Secret1!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}
	if NeedsRehash(hash) {
		t.Error("fresh hash should not need a rehash")
	}

	other, _ := HashPassword("Secret1!")
	if other == hash {
		t.Error("two hashes of the same password should differ by salt")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("Secret1!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	valid, err := CheckPassword("Secret1!", hash)
	if err != nil || !valid {
		t.Fatalf("correct password rejected: %v, %v", valid, err)
	}

	valid, err = CheckPassword("Secret2!", hash)
	if err != nil || valid {
		t.Fatalf("wrong password accepted: %v, %v", valid, err)
	}
}

func TestCheckPassword_OtherParameters(t *testing.T) {
	// Hash of "changeme" made with m=65536,t=1,p=4.
	hash := "$argon2id$v=19$m=65536,t=1,p=4$mucMvOaS6lZ2LWNS1OEFKw$UYEWv8cvCOO6l2zGeqv3JPVe1nyy0x9GXBfYEuDM544"

	valid, err := CheckPassword("changeme", hash)
	if err != nil || !valid {
		t.Fatalf("stored hash rejected correct password: %v, %v", valid, err)
	}
	if !NeedsRehash(hash) {
		t.Error("hash with old parameters should need a rehash")
	}
}

func TestCheckPassword_Malformed(t *testing.T) {
	for _, h := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA", "$argon2id$v=19$m=x$c2FsdA$aGFzaA"} {
		if _, err := CheckPassword("x", h); err == nil {
			t.Errorf("CheckPassword(%q) should fail", h)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		want     error
	}{
		{"Secret1!", nil},
		{"Aa1!aaaaaaaaaaaaaaaa", nil},
		{"Se1!", ErrPasswordTooShort},
		{"Aa1!aaaaaaaaaaaaaaaaa", ErrPasswordTooLong},
		{"SECRET1!", ErrPasswordNoLower},
		{"secret1!", ErrPasswordNoUpper},
		{"Secrets!", ErrPasswordNoDigit},
		{"Secret12", ErrPasswordNoSpecial},
		{"Secret1^", ErrPasswordNoSpecial},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			if got := ValidatePassword(tt.password); got != tt.want {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}
