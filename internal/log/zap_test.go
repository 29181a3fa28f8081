package log

import "testing"

func TestInit(t *testing.T) {
	if l := Init("production"); l == nil || Logger != l {
		t.Fatalf("expected production logger")
	}
	if l := Init("development"); l == nil || Logger != l {
		t.Fatalf("expected development logger")
	}
}
