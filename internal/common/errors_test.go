package common

import (
	"errors"
	"testing"
)

func TestTokenReasons_WrapTokenRejected(t *testing.T) {
	reasons := []error{ErrTokenMissing, ErrTokenMalformed, ErrTokenInvalidSignature, ErrTokenExpired}
	for _, r := range reasons {
		if !errors.Is(r, ErrorTokenRejected) {
			t.Fatalf("%v must wrap ErrorTokenRejected", r)
		}
	}
	if errors.Is(ErrTokenExpired, ErrTokenMalformed) {
		t.Fatal("reasons must stay distinguishable")
	}
	if errors.Is(ErrorInsufficientPrivilege, ErrorTokenRejected) {
		t.Fatal("insufficient privilege is not a token rejection")
	}
}
