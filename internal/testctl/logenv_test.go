package testctl

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSetLogLevel(t *testing.T) {
	t.Cleanup(func() { SetLogLevel("info") })
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"err":     zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		SetLogLevel(in)
		if got := logger.GetLevel(); got != want {
			t.Fatalf("%s: level=%v want %v", in, got, want)
		}
	}
}

func TestEnvStr(t *testing.T) {
	key := "TESTCTL_ENV_STR"
	t.Setenv(key, "")
	if got := envStr(key, "def"); got != "def" {
		t.Fatalf("envStr default: got %q", got)
	}
	t.Setenv(key, "val")
	if got := envStr(key, "def"); got != "val" {
		t.Fatalf("envStr set: got %q", got)
	}
}

func TestEnvBool(t *testing.T) {
	key := "TESTCTL_ENV_BOOL"
	t.Setenv(key, "")
	if !envBool(key, true) || envBool(key, false) {
		t.Fatal("envBool should return the default when unset")
	}
	for _, v := range []string{"1", "true", "YES"} {
		t.Setenv(key, v)
		if !envBool(key, false) {
			t.Fatalf("envBool %q -> false", v)
		}
	}
	t.Setenv(key, "no")
	if envBool(key, true) {
		t.Fatal("envBool no -> true")
	}
}

func TestEnvInt(t *testing.T) {
	key := "TESTCTL_ENV_INT"
	t.Setenv(key, "")
	if got := envInt(key, 7); got != 7 {
		t.Fatalf("envInt default -> %d", got)
	}
	t.Setenv(key, "42")
	if got := envInt(key, 0); got != 42 {
		t.Fatalf("envInt 42 -> %d", got)
	}
	t.Setenv(key, "bad")
	if got := envInt(key, 5); got != 5 {
		t.Fatalf("envInt bad -> %d", got)
	}
}
