package fastspring

import (
	"crypto/md5"
	"encoding/hex"
	"testing"
)

func TestVerifyAcceptsValidSignature(t *testing.T) {
	v := NewVerifier("pk_test")
	params := map[string]string{
		"email":     "a@b.com",
		"reference": "ORD1",
		"product":   "modulyn-one-plus",
	}
	params[SignatureParam] = v.Sign(params)

	if !v.Verify(params) {
		t.Fatal("expected valid signature to verify")
	}
}

func TestVerifyConcatenatesValuesInKeyOrder(t *testing.T) {
	v := NewVerifier("secret")
	params := map[string]string{
		"b": "2",
		"a": "1",
		"c": "3",
	}
	sum := md5.Sum([]byte("123secret"))
	params[SignatureParam] = hex.EncodeToString(sum[:])

	if !v.Verify(params) {
		t.Fatal("digest must be computed over values sorted by key")
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	v := NewVerifier("pk_test")
	params := map[string]string{"email": "a@b.com", "reference": "ORD1"}
	params[SignatureParam] = v.Sign(params)
	params["email"] = "evil@b.com"

	if v.Verify(params) {
		t.Fatal("tampered payload must not verify")
	}
}

func TestVerifyRejectsMissingSignature(t *testing.T) {
	v := NewVerifier("pk_test")
	if v.Verify(map[string]string{"email": "a@b.com"}) {
		t.Fatal("payload without signature must not verify")
	}
}

func TestVerifyRejectsWithoutPrivateKey(t *testing.T) {
	v := NewVerifier("")
	params := map[string]string{"email": "a@b.com"}
	params[SignatureParam] = "deadbeef"
	if v.Verify(params) {
		t.Fatal("verifier without key must reject everything")
	}
}

func TestVerifyTreatsMissingValuesAsEmpty(t *testing.T) {
	v := NewVerifier("pk")
	params := map[string]string{
		"a": "",
		"b": "x",
	}
	sum := md5.Sum([]byte("xpk"))
	params[SignatureParam] = hex.EncodeToString(sum[:])

	if !v.Verify(params) {
		t.Fatal("empty values must contribute empty strings to the digest")
	}
}

func TestVerifyAcceptsUppercaseHexDigest(t *testing.T) {
	v := NewVerifier("pk_test")
	params := map[string]string{"reference": "ORD1"}
	digest := v.Sign(params)
	params[SignatureParam] = digestUpper(digest)

	if !v.Verify(params) {
		t.Fatal("digest comparison should be case-insensitive")
	}
}

func digestUpper(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'a' && c <= 'f' {
			out[i] = c - 32
		}
	}
	return string(out)
}
