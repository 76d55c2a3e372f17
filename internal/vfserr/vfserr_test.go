package vfserr

import (
	"errors"
	"syscall"
	"testing"

	"github.com/hanwen/go-fuse/v2/fuse"
)

func TestToStatusMapsEveryKind(t *testing.T) {
	cases := []struct {
		kind Kind
		want fuse.Status
	}{
		{KindDbError, fuse.EIO},
		{KindRowNotFound, fuse.ENOENT},
		{KindBadPath, fuse.ENOENT},
		{KindNoMemory, fuse.Status(syscall.ENOMEM)},
		{KindNoData, fuse.Status(syscall.ENODATA)},
		{KindRange, fuse.Status(syscall.ERANGE)},
	}

	for _, c := range cases {
		got := ToStatus(New(c.kind, "boom"))
		if got != c.want {
			t.Errorf("ToStatus(%s) = %v, want %v", c.kind, got, c.want)
		}
	}
}

func TestToStatusNilIsOK(t *testing.T) {
	if got := ToStatus(nil); got != fuse.OK {
		t.Errorf("ToStatus(nil) = %v, want OK", got)
	}
}

func TestToStatusUnclassifiedIsEIO(t *testing.T) {
	if got := ToStatus(errors.New("plain")); got != fuse.EIO {
		t.Errorf("ToStatus(plain) = %v, want EIO", got)
	}
}

func TestIsMatchesOnKindOnly(t *testing.T) {
	a := New(KindRowNotFound, "row 7 missing")
	b := New(KindRowNotFound, "row 9 missing")
	if !errors.Is(a, b) {
		t.Errorf("expected errors with the same kind to match via errors.Is")
	}

	c := New(KindBadPath, "row 7 missing")
	if errors.Is(a, c) {
		t.Errorf("expected errors with different kinds to not match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := Wrap(cause, KindDbError, "step failed")
	if !errors.Is(wrapped, cause) {
		t.Errorf("expected Wrap to preserve the cause for errors.Is")
	}
}
