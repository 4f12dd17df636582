package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDomainErrorsMatchWithAs(t *testing.T) {
	var (
		nf    *NotFoundError
		trans *IllegalTransitionError
		bal   *InsufficientBalanceError
	)
	wrapped := fmt.Errorf("enter settlement: %w", &InsufficientBalanceError{Required: 25_000, Current: 10_000})
	if !errors.As(wrapped, &bal) {
		t.Fatal("InsufficientBalanceError not matched through wrapping")
	}
	if bal.Required != 25_000 || bal.Current != 10_000 {
		t.Fatalf("carried fields lost: %+v", bal)
	}
	if errors.As(wrapped, &nf) || errors.As(wrapped, &trans) {
		t.Fatal("wrong error type matched")
	}
}

func TestDomainErrorMessages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&ValidationError{Field: "reserved_date", Message: "must be YYYY-MM-DD"}, "reserved_date"},
		{&NotFoundError{Entity: "reservation", ID: 7}, "reservation 7 not found"},
		{&IllegalTransitionError{Action: ActionConfirm, From: "SETTLED", Role: "HOSPITAL"}, "confirm"},
		{&InsufficientBalanceError{Required: 100, Current: 40}, "required 100, current 40"},
		{&PayoutClaimConflictError{Requested: 5, Claimed: 3}, "2 of 5"},
	}
	for _, tt := range cases {
		if !strings.Contains(tt.err.Error(), tt.want) {
			t.Fatalf("%T message %q missing %q", tt.err, tt.err.Error(), tt.want)
		}
	}
}
