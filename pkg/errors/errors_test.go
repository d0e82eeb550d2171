package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestMetadataFor_KnownCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeStateConflict, http.StatusUnprocessableEntity},
		{CodeRateLimit, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{CodeDependency, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("MetadataFor(%s).HTTPStatus = %d, want %d", tc.code, got, tc.status)
		}
	}
}

func TestMetadataFor_UnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("NOT_A_CODE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected status for unknown code: %d", meta.HTTPStatus)
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("db down")
	err := Wrap(CodeDependency, cause, "fetching products")

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped error to match its cause with errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAs_ExtractsTypedError(t *testing.T) {
	inner := New(CodeNotFound, "product missing")
	wrapped := Wrap(CodeInternal, inner, "loading detail page")

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected As to find a typed error")
	}
	if typed.Code() != CodeInternal {
		t.Fatalf("expected outermost code, got %s", typed.Code())
	}

	if As(errors.New("plain")) != nil {
		t.Fatal("expected As to return nil for untyped errors")
	}
}

func TestHasCode(t *testing.T) {
	err := Wrap(CodeStateConflict, errors.New("already paid"), "cancelling order")

	if !HasCode(err, CodeStateConflict) {
		t.Fatal("expected HasCode to match the typed code")
	}
	if HasCode(err, CodeNotFound) {
		t.Fatal("expected HasCode to reject a different code")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Fatal("expected HasCode to reject untyped errors")
	}
}

func TestDump_IncludesChainAndCode(t *testing.T) {
	err := Wrap(CodeConflict, errors.New("duplicate row"), "saving address")
	d := Dump(err)

	if d.Code != CodeConflict {
		t.Fatalf("unexpected code %s", d.Code)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected a 2-entry chain, got %d", len(d.Chain))
	}
}
