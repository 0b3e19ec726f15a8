// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$") {
		t.Errorf("unexpected hash prefix: %s", hash)
	}

	// Two hashes of the same password must differ (random salt)
	hash2, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if hash == hash2 {
		t.Error("two hashes of the same password should not match")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}

	ok, err := CheckPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("CheckPassword() error: %v", err)
	}
	if !ok {
		t.Error("correct password should verify")
	}

	ok, err = CheckPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("CheckPassword() error: %v", err)
	}
	if ok {
		t.Error("wrong password should not verify")
	}
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	if _, err := CheckPassword("anything", "not-a-hash"); err == nil {
		t.Error("malformed hash should return an error")
	}
	if _, err := CheckPassword("anything", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA"); err == nil {
		t.Error("unsupported hash type should return an error")
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, err := HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if NeedsRehash(hash) {
		t.Error("freshly created hash should not need rehash")
	}

	// Old parameters (64MB memory) should trigger a rehash
	old := "$argon2id$v=19$m=65536,t=1,p=4$c29tZXNhbHQ$RdescudvJCsgt3ub+b+dWRWJTmaaJObG"
	if !NeedsRehash(old) {
		t.Error("hash with old parameters should need rehash")
	}

	if !NeedsRehash("garbage") {
		t.Error("unparseable hash should need rehash")
	}
}
