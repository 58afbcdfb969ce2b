package ocr

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSplitLines(t *testing.T) {
	for _, tt := range []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "Hello\nWorld", []string{"Hello", "World"}},
		{"crlf and blanks", "  Hello \r\n\r\n World\n\n", []string{"Hello", "World"}},
		{"empty", "", []string{}},
		{"whitespace only", " \n\t\n", []string{}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLines(tt.in)
			if got == nil {
				t.Fatal("SplitLines returned nil, want non-nil slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("SplitLines(%q) = %q, want %q", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("corrupt header")
	var err error = &Error{URI: "file:///x.png", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
	var oe *Error
	if !errors.As(err, &oe) || oe.URI != "file:///x.png" {
		t.Errorf("errors.As = %+v", oe)
	}
}

func TestFakeResults(t *testing.T) {
	f := NewFake()
	f.Set("a", "A", "B")
	f.Set("empty")
	f.Fail("bad", errors.New("unreadable"))
	ctx := context.Background()

	got, err := f.Recognize(ctx, "a")
	if err != nil || len(got) != 2 || got[0] != "A" {
		t.Errorf("a = %q, %v", got, err)
	}
	got, err = f.Recognize(ctx, "empty")
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("empty = %#v, %v; want empty non-nil", got, err)
	}
	var oe *Error
	if _, err := f.Recognize(ctx, "bad"); !errors.As(err, &oe) {
		t.Errorf("bad err = %v, want *Error", err)
	}
	if _, err := f.Recognize(ctx, "unknown"); err == nil {
		t.Error("unknown uri should fail")
	}
	if n := len(f.Calls()); n != 4 {
		t.Errorf("Calls = %d, want 4", n)
	}
}

func TestFakeHold(t *testing.T) {
	f := NewFake()
	f.Set("slow", "done")
	release := f.Hold("slow")

	out := make(chan []string, 1)
	go func() {
		lines, _ := f.Recognize(context.Background(), "slow")
		out <- lines
	}()

	select {
	case <-out:
		t.Fatal("held call returned before release")
	case <-time.After(20 * time.Millisecond):
	}
	release()
	release() // idempotent
	select {
	case lines := <-out:
		if len(lines) != 1 || lines[0] != "done" {
			t.Errorf("lines = %q", lines)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out after release")
	}
}
