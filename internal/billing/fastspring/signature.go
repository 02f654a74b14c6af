package fastspring

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"sort"
	"strings"
)

// SignatureParam carries the provider's digest of the request parameters.
const SignatureParam = "security_request_hash"

// Verifier authenticates webhook parameter maps against the shared private key.
type Verifier struct {
	privateKey string
}

func NewVerifier(privateKey string) *Verifier {
	return &Verifier{privateKey: privateKey}
}

// Verify recomputes the provider digest: every parameter except the signature
// itself, keys sorted by codepoint, values concatenated, private key appended,
// MD5 over the UTF-8 bytes. The hex digests are compared in constant time.
// Any malformed input yields false; Verify never panics.
func (v *Verifier) Verify(params map[string]string) bool {
	if v == nil || v.privateKey == "" || len(params) == 0 {
		return false
	}
	supplied := strings.ToLower(strings.TrimSpace(params[SignatureParam]))
	if supplied == "" {
		return false
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		if key == SignatureParam {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(params[key])
	}
	data.WriteString(v.privateKey)

	sum := md5.Sum([]byte(data.String()))
	expected := hex.EncodeToString(sum[:])

	return subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) == 1
}

// Sign computes the digest the provider would send for the given parameters.
// Used by tests and local tooling.
func (v *Verifier) Sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		if key == SignatureParam {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(params[key])
	}
	data.WriteString(v.privateKey)

	sum := md5.Sum([]byte(data.String()))
	return hex.EncodeToString(sum[:])
}
