package backup

import (
	"bytes"
	"errors"
	"testing"
)

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if len(salt1) != saltSize {
		t.Errorf("salt length = %d, want %d", len(salt1), saltSize)
	}

	salt2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt 2: %v", err)
	}
	if bytes.Equal(salt1, salt2) {
		t.Error("two salts should not be equal")
	}
}

func TestDeriveKeyDeterminism(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := DeriveKey("mypassphrase", salt)
	key2 := DeriveKey("mypassphrase", salt)

	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase+salt should produce same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}
	if bytes.Equal(key1, DeriveKey("other", salt)) {
		t.Error("different passphrases should produce different keys")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	original := []byte(`{"lists":[{"id":"a","name":"Feira"}]}`)

	sealed, err := Encrypt(original, "test-passphrase-123")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(sealed, []byte("Feira")) {
		t.Error("ciphertext should not contain plaintext")
	}
	if len(sealed) <= saltSize+nonceSize {
		t.Fatalf("sealed length = %d", len(sealed))
	}

	opened, err := Decrypt(sealed, "test-passphrase-123")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(opened, original) {
		t.Errorf("decrypted = %q, want %q", opened, original)
	}
}

func TestEncryptUsesFreshSalt(t *testing.T) {
	a, _ := Encrypt([]byte("same"), "pw")
	b, _ := Encrypt([]byte("same"), "pw")
	if bytes.Equal(a[:saltSize], b[:saltSize]) {
		t.Error("salts should differ between backups")
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	sealed, err := Encrypt([]byte("secret data"), "correct")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := Decrypt(sealed, "wrong"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("err = %v, want ErrDecrypt", err)
	}
}

func TestDecryptTooSmall(t *testing.T) {
	if _, err := Decrypt([]byte("tiny"), "pw"); !errors.Is(err, ErrTruncated) {
		t.Errorf("err = %v, want ErrTruncated", err)
	}
}

func TestPassphraseRequired(t *testing.T) {
	if _, err := Encrypt([]byte("x"), ""); !errors.Is(err, ErrPassphraseRequired) {
		t.Errorf("encrypt err = %v", err)
	}
	if _, err := Decrypt(make([]byte, 64), ""); !errors.Is(err, ErrPassphraseRequired) {
		t.Errorf("decrypt err = %v", err)
	}
}
