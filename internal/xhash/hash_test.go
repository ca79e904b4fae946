package xhash_test

import (
	"testing"

	"github.com/loxflux/loxflux/internal/xhash"
)

func TestStringBytesAgree(t *testing.T) {
	s := "hello, loxflux"
	if xhash.String(s) != xhash.Bytes([]byte(s)) {
		t.Fatal("String and Bytes hashes disagree")
	}
}

func TestDeterministic(t *testing.T) {
	a := xhash.String("module cache key")
	b := xhash.String("module cache key")
	if a != b {
		t.Fatal("hash not deterministic")
	}
}

func TestBitsStablePerNaNPattern(t *testing.T) {
	// NaN bit patterns are hashed as they are: the same bits give the
	// same hash, and two different payloads give different hashes.
	if xhash.Bits(0x7ff8000000000001) != xhash.Bits(0x7ff8000000000001) {
		t.Fatal("Bits hash not stable")
	}
	if xhash.Bits(0x7ff8000000000001) == xhash.Bits(0x7ff8000000000002) {
		t.Fatal("Bits hash collided unexpectedly for distinct bit patterns")
	}
}
