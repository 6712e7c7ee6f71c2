package results

import "testing"

func TestSuccess(t *testing.T) {
	r := Success("payload")
	if !r.Ok {
		t.Fatal("Success() Ok = false, want true")
	}
	if r.Data != "payload" {
		t.Errorf("Data = %q, want %q", r.Data, "payload")
	}
	if r.Error != "" || r.Code != "" {
		t.Errorf("Error/Code = %q/%q, want empty", r.Error, r.Code)
	}
}

func TestFailure(t *testing.T) {
	t.Run("carries message and code", func(t *testing.T) {
		r := Failure[int]("missing profile", CodeNotFound)
		if r.Ok {
			t.Fatal("Failure() Ok = true, want false")
		}
		if r.Error != "missing profile" {
			t.Errorf("Error = %q, want %q", r.Error, "missing profile")
		}
		if r.Code != CodeNotFound {
			t.Errorf("Code = %q, want %q", r.Code, CodeNotFound)
		}
	})

	t.Run("empty code defaults to UNKNOWN_ERROR", func(t *testing.T) {
		r := Failure[int]("something broke", "")
		if r.Code != CodeUnknownError {
			t.Errorf("Code = %q, want %q", r.Code, CodeUnknownError)
		}
	})
}

func TestPropagate(t *testing.T) {
	orig := Failure[string]("quota hit", CodeQuotaExceeded)
	moved := Propagate[int](orig)
	if moved.Ok {
		t.Fatal("Propagate() Ok = true, want false")
	}
	if moved.Error != orig.Error || moved.Code != orig.Code {
		t.Errorf("propagated = %q/%q, want %q/%q", moved.Error, moved.Code, orig.Error, orig.Code)
	}
}
