package capture

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestStdoutCapturesWrites(t *testing.T) {
	out, err := Stdout(func() error {
		fmt.Print("hello, capture")
		return nil
	})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if out != "hello, capture" {
		t.Fatalf("unexpected capture: %q", out)
	}
}

func TestStdoutMultipleWrites(t *testing.T) {
	out, err := Stdout(func() error {
		os.Stdout.WriteString("line one\n")
		os.Stdout.WriteString("line two\n")
		return nil
	})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if out != "line one\nline two\n" {
		t.Fatalf("unexpected capture: %q", out)
	}
}

func TestStdoutEmpty(t *testing.T) {
	out, err := Stdout(func() error { return nil })
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty capture, got %q", out)
	}
}

func TestRunReturnsOpError(t *testing.T) {
	boom := errors.New("op failed")
	out, err := Stdout(func() error {
		os.Stdout.WriteString("partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected op error, got %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output on error, got %q", out)
	}

	// The stream must be usable and unredirected afterward.
	out, err = Stdout(func() error {
		os.Stdout.WriteString("after")
		return nil
	})
	if err != nil || out != "after" {
		t.Fatalf("stream not restored: %q %v", out, err)
	}
}

func TestRunRestoresOnPanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		out, err := Stdout(func() error {
			os.Stdout.WriteString("after panic")
			return nil
		})
		if err != nil || out != "after panic" {
			t.Fatalf("stream not restored: %q %v", out, err)
		}
	}()
	Stdout(func() error {
		os.Stdout.WriteString("mid-write")
		panic("boom")
	})
}

func TestIOReusable(t *testing.T) {
	c, err := New(StdoutFD)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()

	first, err := c.Run(func() error {
		os.Stdout.WriteString("first")
		return nil
	})
	if err != nil || first != "first" {
		t.Fatalf("first capture: %q %v", first, err)
	}
	second, err := c.Run(func() error {
		os.Stdout.WriteString("second")
		return nil
	})
	if err != nil || second != "second" {
		t.Fatalf("second capture: %q %v", second, err)
	}
}
