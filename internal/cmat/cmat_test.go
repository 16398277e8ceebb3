package cmat

import (
	"math"
	"testing"
)

func TestMulIdentity(t *testing.T) {
	a := Matrix{
		{1 + 2i, 3, 0},
		{0, 5i, 1},
		{2, 0, 4 - 1i},
	}
	id := Identity()

	var left, right Matrix
	Mul(&left, &id, &a)
	Mul(&right, &a, &id)

	if d := MaxAbsDiff(&left, &a); d > 0 {
		t.Fatalf("I*a differs from a by %g", d)
	}
	if d := MaxAbsDiff(&right, &a); d > 0 {
		t.Fatalf("a*I differs from a by %g", d)
	}
}

func TestMulAgainstManual(t *testing.T) {
	a := Matrix{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	}
	b := Matrix{
		{1i, 0, 0},
		{0, 1i, 0},
		{0, 0, 1i},
	}
	var got Matrix
	Mul(&got, &a, &b)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := a[i][j] * 1i
			if got[i][j] != want {
				t.Fatalf("got[%d][%d] = %v, want %v", i, j, got[i][j], want)
			}
		}
	}
}

func TestAddPhased(t *testing.T) {
	m := Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	var dst Matrix
	AddPhased(&dst, math.Pi/2, &m)

	for i := 0; i < 3; i++ {
		if math.Abs(real(dst[i][i])) > 1e-15 || math.Abs(imag(dst[i][i])-1) > 1e-15 {
			t.Fatalf("dst[%d][%d] = %v, want i", i, i, dst[i][i])
		}
	}

	// Accumulating the opposite phase restores a real diagonal.
	AddPhased(&dst, -math.Pi/2, &m)
	for i := 0; i < 3; i++ {
		if math.Abs(real(dst[i][i])) < 1e-15 {
			t.Fatalf("accumulation lost the real part at [%d][%d]: %v", i, i, dst[i][i])
		}
	}
}

func TestClear(t *testing.T) {
	m := Matrix{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	m.Clear()
	if m != (Matrix{}) {
		t.Fatalf("Clear left non-zero elements: %v", m)
	}
}
