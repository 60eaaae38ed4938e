package qcache

import (
	"strings"
	"testing"
)

func TestBuildKey(t *testing.T) {
	c := &Cache{}

	k1 := c.buildKey([]string{"kirin", "beer"}, 10)
	if !strings.HasPrefix(k1, keyPrefix) {
		t.Errorf("key %q lacks the %q prefix", k1, keyPrefix)
	}
	if k2 := c.buildKey([]string{"kirin", "beer"}, 10); k2 != k1 {
		t.Errorf("same query produced different keys: %q vs %q", k1, k2)
	}
	if k3 := c.buildKey([]string{"kirin", "beer"}, 20); k3 == k1 {
		t.Error("different limit produced the same key")
	}
	// The NUL separator keeps term boundaries unambiguous.
	if k4 := c.buildKey([]string{"kirinbeer"}, 10); k4 == k1 {
		t.Error("joined terms collide with separate terms")
	}
	if k5 := c.buildKey([]string{"kirin beer"}, 10); k5 == k1 {
		t.Error("space-joined terms collide with separate terms")
	}
}
