package sack

import "testing"

func TestSystemFingerprintExcludesGpgPubkeys(t *testing.T) {
	hashes := []string{"aaaa", "bbbb", "cccc"}
	names := []string{"bash", "gpg-pubkey", "zsh"}

	got := SystemFingerprint(hashes, names)
	want := SystemFingerprint([]string{"aaaa", "cccc"}, []string{"bash", "zsh"})
	if got != want {
		t.Fatalf("SystemFingerprint with a gpg-pubkey entry = %q, want %q (should match the filtered equivalent)", got, want)
	}
}

func TestSystemFingerprintOrderIndependent(t *testing.T) {
	a := SystemFingerprint([]string{"aaaa", "bbbb"}, []string{"bash", "zsh"})
	b := SystemFingerprint([]string{"bbbb", "aaaa"}, []string{"zsh", "bash"})
	if a != b {
		t.Fatalf("SystemFingerprint should be order-independent (sorts hashes): %q != %q", a, b)
	}
}

func TestSystemFingerprintCountPrefix(t *testing.T) {
	got := SystemFingerprint([]string{"aaaa", "bbbb", "cccc"}, []string{"a", "b", "c"})
	if len(got) < 2 || got[0] != '3' || got[1] != ':' {
		t.Fatalf("SystemFingerprint() = %q, want it to start with %q", got, "3:")
	}
}

func TestCacheOpenAndValidRoundTrip(t *testing.T) {
	c, err := OpenCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCache() = %v", err)
	}
	defer c.Close()

	if valid, _ := c.Valid("fedora", "checksum-1"); valid {
		t.Fatalf("a never-stored repo should not report a valid cache")
	}

	if err := c.Store("fedora", "checksum-1"); err != nil {
		t.Fatalf("Store() = %v", err)
	}
	if valid, err := c.Valid("fedora", "checksum-1"); err != nil || !valid {
		t.Fatalf("Valid() after Store() with the same checksum = (%v, %v), want (true, nil)", valid, err)
	}
	if valid, _ := c.Valid("fedora", "checksum-2"); valid {
		t.Fatalf("Valid() with a different checksum should be false")
	}
}
