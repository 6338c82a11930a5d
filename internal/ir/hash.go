package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix
// allows migrating the encoding later.
const (
	DomainTarget = "cliffordt/target/v1"
	DomainResult = "cliffordt/result/v1"
	DomainTable  = "cliffordt/table/v1"
)

// hashWithDomain returns hex(SHA-256(domain ‖ 0x00 ‖ data)). The null byte
// keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TargetID identifies a target compiled under the given search
// parameters. It is stable across runs and is the result cache key.
func TargetID(t Target, p SearchParams) (string, error) {
	canonical, err := MarshalCanonical(NewIRObject(
		O("target", t.Canonical()),
		O("params", p.Canonical()),
	))
	if err != nil {
		return "", fmt.Errorf("TargetID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTarget, canonical), nil
}

// ResultDigest fingerprints a result, for golden comparisons and change
// detection in run history.
func ResultDigest(r Result) (string, error) {
	canonical, err := MarshalCanonical(r.Canonical())
	if err != nil {
		return "", fmt.Errorf("ResultDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainResult, canonical), nil
}

// TableDigest fingerprints the serialized lookup table.
func TableDigest(data []byte) string {
	return hashWithDomain(DomainTable, data)
}

// MustTargetID is like TargetID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustTargetID(t Target, p SearchParams) string {
	id, err := TargetID(t, p)
	if err != nil {
		panic(err)
	}
	return id
}
