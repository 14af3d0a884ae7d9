package utils

import "testing"

func TestHashAndCheck(t *testing.T) {
	hash, err := HashPassword("babapiro31")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "babapiro31" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPasswordHash("babapiro31", hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestHashIsSalted(t *testing.T) {
	h1, _ := HashPassword("same")
	h2, _ := HashPassword("same")
	if h1 == h2 {
		t.Fatal("two hashes of the same password are identical")
	}
}
