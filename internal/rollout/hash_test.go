package rollout

import (
	"strconv"
	"testing"
)

func TestRollingHash_KnownValues(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{in: "", want: 0},
		{in: "a", want: 97},
		{in: "ab", want: 97*31 + 98},
		{in: "abc", want: (97*31+98)*31 + 99},
	}
	for _, tt := range tests {
		if got := (RollingHash{}).Sum32(tt.in); got != tt.want {
			t.Errorf("Sum32(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestBucket_Deterministic(t *testing.T) {
	for _, h := range []Hasher{RollingHash{}, XXHash{}} {
		b1 := Bucket(h, "feature_x", "user-123")
		b2 := Bucket(h, "feature_x", "user-123")
		if b1 != b2 {
			t.Errorf("%T: Bucket is not deterministic: got %d and %d", h, b1, b2)
		}
		if b1 < 1 || b1 > 100 {
			t.Errorf("%T: bucket out of range: %d", h, b1)
		}
	}
}

func TestBucket_NilHasherUsesRolling(t *testing.T) {
	if Bucket(nil, "k", "u1") != Bucket(RollingHash{}, "k", "u1") {
		t.Fatal("nil hasher should fall back to RollingHash")
	}
}

func TestBucket_Distribution(t *testing.T) {
	for _, h := range []Hasher{RollingHash{}, XXHash{}} {
		counts := make([]int, 101)
		for i := 0; i < 10000; i++ {
			b := Bucket(h, "feature_x", "user-"+strconv.Itoa(i))
			if b < 1 || b > 100 {
				t.Fatalf("%T: bucket out of range: %d", h, b)
			}
			counts[b]++
		}
		// ~100 users per bucket; the rolling hash is only roughly uniform.
		for b := 1; b <= 100; b++ {
			if counts[b] == 0 || counts[b] > 300 {
				t.Errorf("%T: bucket %d has %d users, expected ~100", h, b, counts[b])
			}
		}
	}
}
