package cache_test

import (
	"errors"
	"testing"
	"time"

	"souk/common/cache"
)

func TestOptions_Key(t *testing.T) {
	cases := []struct {
		ns, key, want string
		err           error
	}{
		{"", "job-1", "job-1", nil},
		{"estimates", "job-1", "estimates:job-1", nil},
		{"estimates", "", "", cache.ErrInvalidKey},
	}
	for _, c := range cases {
		got, err := cache.Options{Namespace: c.ns}.Key(c.key)
		if got != c.want || !errors.Is(err, c.err) {
			t.Errorf("Key(%q, %q) = %q, %v; want %q, %v", c.ns, c.key, got, err, c.want, c.err)
		}
	}
}

func TestOptions_TTL(t *testing.T) {
	o := cache.Options{DefaultTTL: time.Hour}
	if got := o.TTL(0); got != time.Hour {
		t.Errorf("TTL(0) = %v, want 1h", got)
	}
	if got := o.TTL(time.Second); got != time.Second {
		t.Errorf("TTL(1s) = %v", got)
	}
}

func TestEncodeDecode(t *testing.T) {
	data, err := cache.Encode("abc")
	if err != nil || string(data) != "abc" {
		t.Fatalf("Encode(string) = %q, %v", data, err)
	}
	var s string
	if err := cache.Decode(data, &s); err != nil || s != "abc" {
		t.Errorf("Decode(*string) = %q, %v", s, err)
	}
	if _, err := cache.Encode(struct{}{}); !errors.Is(err, cache.ErrInvalidValue) {
		t.Errorf("Encode(struct) error = %v, want ErrInvalidValue", err)
	}
	if err := cache.Decode(data, s); !errors.Is(err, cache.ErrInvalidValue) {
		t.Errorf("Decode(non-pointer) error = %v, want ErrInvalidValue", err)
	}
}
