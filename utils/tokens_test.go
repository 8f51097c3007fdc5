package utils

import (
	"testing"
	"time"
)

func TestManagerRoundTrip(t *testing.T) {
	m, err := NewManager("signing-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := m.NewJWT("user-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	userID, err := m.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("subject mismatch: %q", userID)
	}
}

func TestManagerRejectsWrongKey(t *testing.T) {
	m1, _ := NewManager("key-one")
	m2, _ := NewManager("key-two")

	token, err := m1.NewJWT("user-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m2.Parse(token); err == nil {
		t.Fatal("expected an error for a token signed with a different key")
	}
}

func TestManagerRejectsExpiredToken(t *testing.T) {
	m, _ := NewManager("signing-key")

	token, err := m.NewJWT("user-1", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.Parse(token); err == nil {
		t.Fatal("expected an error for an expired token")
	}
}

func TestNewManagerRequiresKey(t *testing.T) {
	if _, err := NewManager(""); err == nil {
		t.Fatal("expected an error for an empty signing key")
	}
}

func TestMaskToken(t *testing.T) {
	masked := MaskToken("abcdefghijklmnop")
	if masked != "abcd...mnop" {
		t.Errorf("unexpected mask: %q", masked)
	}
	if MaskToken("short") != "***" {
		t.Errorf("short tokens must be fully masked")
	}
	if MaskToken("") != "***" {
		t.Errorf("empty tokens must be fully masked")
	}
}
