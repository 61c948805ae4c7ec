package results

import (
	"errors"
	"testing"
)

func TestOperationResult(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := SuccessResult[int, error](42)
		if !r.IsSuccess() || r.IsFailure() {
			t.Fatalf("expected success only, got %+v", r)
		}
		if *r.Success != 42 {
			t.Errorf("expected 42, got %d", *r.Success)
		}
	})

	t.Run("failure", func(t *testing.T) {
		r := FailureResult[int, error](errors.New("boom"))
		if r.IsSuccess() || !r.IsFailure() {
			t.Fatalf("expected failure only, got %+v", r)
		}
		if (*r.Failure).Error() != "boom" {
			t.Errorf("unexpected failure: %v", *r.Failure)
		}
	})

	t.Run("zero value is neither", func(t *testing.T) {
		var r OperationResult[int, error]
		if r.IsSuccess() || r.IsFailure() {
			t.Fatalf("zero value should be empty, got %+v", r)
		}
	})
}
