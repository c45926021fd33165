package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "key")
	if err := os.WriteFile(file, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}
	t.Setenv("CLOSAI_TEST_SECRET", " from-env ")

	cases := []struct {
		name string
		src  Source
		want string
	}{
		{name: "file wins", src: Source{File: file, Env: "CLOSAI_TEST_SECRET", Value: "inline"}, want: "from-file"},
		{name: "env before value", src: Source{Env: "CLOSAI_TEST_SECRET", Value: "inline"}, want: "from-env"},
		{name: "value", src: Source{Env: "CLOSAI_TEST_UNSET", Value: " inline "}, want: "inline"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Load(tc.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	if _, err := Load(Source{Name: "api key", File: empty, Value: "ignored"}); err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty file error, got %v", err)
	}

	if _, err := Load(Source{Name: "api key", File: filepath.Join(dir, "missing")}); err == nil {
		t.Fatal("expected error for missing file")
	}

	_, err := Load(Source{Name: "api key", Env: "CLOSAI_TEST_UNSET"})
	if err == nil || !strings.Contains(err.Error(), "CLOSAI_TEST_UNSET") {
		t.Fatalf("expected hint about the variable, got %v", err)
	}
}
