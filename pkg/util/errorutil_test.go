package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorsCarryCodeAndStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("bad", nil), CodeValidation, http.StatusBadRequest},
		{NewNotFound("service request", nil), CodeNotFound, http.StatusNotFound},
		{NewInvalidTransition("CLOSED", "submit"), CodeInvalidTransition, http.StatusConflict},
		{NewUnauthorized("nope"), CodeUnauthorized, http.StatusUnauthorized},
		{NewForbidden("nope", nil), CodeForbidden, http.StatusForbidden},
		{NewConflict("lost the race", nil), CodeConflict, http.StatusConflict},
		{NewInternalError(errors.New("boom")), CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		domainErr := ToDomainError(tc.err)
		if domainErr.Code != tc.code {
			t.Errorf("code = %q, want %q", domainErr.Code, tc.code)
		}
		if domainErr.HTTPStatus != tc.status {
			t.Errorf("%s status = %d, want %d", tc.code, domainErr.HTTPStatus, tc.status)
		}
	}
}

func TestInvalidTransitionDetails(t *testing.T) {
	t.Parallel()

	domainErr := ToDomainError(NewInvalidTransition("DRAFT", "triage"))
	if domainErr.Details["current_status"] != "DRAFT" || domainErr.Details["action"] != "triage" {
		t.Fatalf("details = %v", domainErr.Details)
	}
}

func TestToDomainErrorWrapsUnknownErrors(t *testing.T) {
	t.Parallel()

	cause := errors.New("pq: connection refused")
	domainErr := ToDomainError(fmt.Errorf("query failed: %w", cause))
	if domainErr.Code != CodeInternal {
		t.Fatalf("code = %q, want INTERNAL_ERROR", domainErr.Code)
	}
	if !errors.Is(domainErr, cause) {
		t.Fatal("wrapped cause lost")
	}
	if ToDomainError(nil) != nil {
		t.Fatal("nil error converted to non-nil")
	}
}

func TestCodeOfUnwrapsNestedErrors(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("while handling request: %w", NewForbidden("nope", nil))
	if !IsCode(wrapped, CodeForbidden) {
		t.Fatalf("CodeOf(wrapped) = %q, want FORBIDDEN", CodeOf(wrapped))
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Fatal("plain error yielded a code")
	}
}
