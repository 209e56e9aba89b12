// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package errors

import (
	stderrors "errors"
	"testing"
)

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindUnknown:     "unknown",
		KindInternal:    "internal",
		KindValidation:  "validation",
		KindNotFound:    "not_found",
		KindConflict:    "conflict",
		KindUnavailable: "unavailable",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestWrapPreservesChain(t *testing.T) {
	base := stderrors.New("boom")
	err := Wrap(base, KindUnavailable, "driver call")

	if !Is(err, base) {
		t.Error("wrapped error lost its chain")
	}
	if GetKind(err) != KindUnavailable {
		t.Errorf("GetKind = %v, want unavailable", GetKind(err))
	}
	if err.Error() != "driver call: boom" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, KindInternal, "x") != nil {
		t.Error("Wrap(nil) must be nil")
	}
	if Wrapf(nil, KindInternal, "x %d", 1) != nil {
		t.Error("Wrapf(nil) must be nil")
	}
}

func TestGetKindForeignError(t *testing.T) {
	if GetKind(stderrors.New("plain")) != KindUnknown {
		t.Error("foreign errors must report KindUnknown")
	}
}

func TestAttr(t *testing.T) {
	err := New(KindValidation, "bad label")
	err = Attr(err, "label", 16)

	var e *Error
	if !As(err, &e) {
		t.Fatal("expected *Error")
	}
	if e.Attributes["label"] != 16 {
		t.Errorf("attribute lost: %v", e.Attributes)
	}
}
