package errors

import (
	stderrors "errors"
	"testing"
)

func TestWrapPreservesCode(t *testing.T) {
	base := DatasetInvalid("adhesion_by_year", "duplicate year 2010")
	wrapped := Wrap(base, "loading datasets")

	if GetCode(wrapped) != CodeDatasetInvalid {
		t.Errorf("expected code %s, got %s", CodeDatasetInvalid, GetCode(wrapped))
	}
	if !stderrors.Is(wrapped, base) {
		t.Error("wrapped error should match the original via errors.Is")
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("wrapping nil should return nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("wrapf on nil should return nil")
	}
}

func TestWrapForeignErrorGetsInternalCode(t *testing.T) {
	err := Wrap(stderrors.New("disk full"), "writing manifest")
	if GetCode(err) != CodeInternalError {
		t.Errorf("expected %s, got %s", CodeInternalError, GetCode(err))
	}
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeIOFailed, stderrors.New("permission denied"))
	if GetCode(err) != CodeIOFailed {
		t.Errorf("expected %s, got %s", CodeIOFailed, GetCode(err))
	}
	if !IsAppError(err) {
		t.Error("WithCode should produce an AppError")
	}
}

func TestConstructorMessages(t *testing.T) {
	cases := []struct {
		name string
		err  *AppError
		code string
	}{
		{"dataset missing", DatasetMissing("yearly_summary"), CodeDatasetMissing},
		{"consistency", ConsistencyFailed("sector total 14001 != yearly total 14000"), CodeConsistencyFailed},
		{"not found", NotFound("dataset adhesion_by_size"), CodeNotFound},
		{"config", ConfigInvalid("SELLOS_LISTEN_ADDR is empty"), CodeConfigInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Error() == "" {
				t.Error("error message should not be empty")
			}
		})
	}
}
