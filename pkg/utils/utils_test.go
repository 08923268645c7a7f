package utils

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"valid", "pike_hunter", true},
		{"digits first", "9lives", true},
		{"too short", "ab", false},
		{"too long", strings.Repeat("a", 21), false},
		{"bad chars", "pike-hunter", false},
		{"underscore first", "_pike", false},
		{"trimmed", "  carp  ", true},
		{"non ascii letter", "gäddan", false},
		{"reserved", "Admin", false},
		{"reserved with spaces", " catchlog ", false},
		{"contains reserved", "admin_pike", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.input)
			if (err == nil) != tt.ok {
				t.Fatalf("ValidateUsername(%q) = %v", tt.input, err)
			}
			var verr *ValidationError
			if err != nil && (!errors.As(err, &verr) || verr.Field != "username") {
				t.Errorf("expected a username ValidationError, got %v", err)
			}
		})
	}

	if got := NormalizeUsername("  PikeHunter "); got != "pikehunter" {
		t.Errorf("NormalizeUsername = %q", got)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Errorf("unexpected hash format %q", hash)
	}

	ok, err := VerifyPassword("correct horse", hash)
	if err != nil || !ok {
		t.Errorf("expected the password to verify, got %v %v", ok, err)
	}
	ok, err = VerifyPassword("wrong horse", hash)
	if err != nil || ok {
		t.Errorf("expected a mismatch, got %v %v", ok, err)
	}
	if _, err := VerifyPassword("x", "plaintext"); err == nil {
		t.Error("expected an error for a malformed hash")
	}

	salt := base64.RawStdEncoding.EncodeToString([]byte("saltsaltsaltsalt"))
	for name, stored := range map[string]string{
		"empty key":  "$argon2id$v=19$m=65536,t=3,p=2$" + salt + "$",
		"short key":  "$argon2id$v=19$m=65536,t=3,p=2$" + salt + "$" + base64.RawStdEncoding.EncodeToString([]byte("short")),
		"empty salt": "$argon2id$v=19$m=65536,t=3,p=2$$" + strings.Split(hash, "$")[5],
	} {
		ok, err := VerifyPassword("correct horse", stored)
		if err == nil || ok {
			t.Errorf("%s: expected an error, got ok=%v err=%v", name, ok, err)
		}
	}

	other, _ := HashPassword("correct horse")
	if other == hash {
		t.Error("expected distinct salts")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Error("expected short password to fail")
	}
	if err := ValidatePassword(strings.Repeat("p", 129)); err == nil {
		t.Error("expected long password to fail")
	}
	if err := ValidatePassword("long enough"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func testKey() string {
	return base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
}

func TestEncryptor(t *testing.T) {
	enc, err := NewEncryptor(testKey())
	if err != nil {
		t.Fatal(err)
	}

	sealed, err := enc.Encrypt("angler@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if sealed == "angler@example.com" {
		t.Fatal("expected ciphertext")
	}
	plain, err := enc.Decrypt(sealed)
	if err != nil || plain != "angler@example.com" {
		t.Errorf("Decrypt = %q, %v", plain, err)
	}

	if s, err := enc.Encrypt(""); s != "" || err != nil {
		t.Errorf("empty input should stay empty, got %q %v", s, err)
	}
	if _, err := enc.Decrypt("c2hvcnQ="); err == nil {
		t.Error("expected an error for short ciphertext")
	}
}

func TestEncryptorKeys(t *testing.T) {
	if _, err := NewEncryptor(""); !errors.Is(err, ErrNoEncryptionKey) {
		t.Errorf("expected ErrNoEncryptionKey, got %v", err)
	}
	if _, err := NewEncryptor("%%%"); err == nil {
		t.Error("expected an error for non-base64 key")
	}
	if _, err := NewEncryptor(base64.StdEncoding.EncodeToString([]byte("short"))); err == nil {
		t.Error("expected an error for a short key")
	}

	var nilEnc *Encryptor
	if _, err := nilEnc.Encrypt("x"); !errors.Is(err, ErrNoEncryptionKey) {
		t.Errorf("nil encryptor should refuse, got %v", err)
	}
}
