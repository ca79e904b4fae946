package pathutil_test

import (
	"path/filepath"
	"testing"

	"github.com/loxflux/loxflux/internal/pathutil"
)

func TestAbsIsIdempotent(t *testing.T) {
	a, err := pathutil.Abs("/tmp/scripts", "./lib/math.lox")
	if err != nil {
		t.Fatal(err)
	}
	b, err := pathutil.Abs(pathutil.Dir(a), filepath.Base(a))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("not idempotent: %q != %q", a, b)
	}
}

func TestAbsKeepsAbsolutePaths(t *testing.T) {
	got, err := pathutil.Abs("/ignored", "/srv/app/main.lox")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/srv/app/main.lox" {
		t.Fatalf("got %q", got)
	}
}
