package sequence

import (
	"reflect"
	"testing"
)

func TestMissing(t *testing.T) {
	tests := []struct {
		name    string
		numbers []int
		want    []int
	}{
		{"vazio", nil, []int{}},
		{"um número", []int{5}, []int{}},
		{"ímpares", []int{1, 3, 5}, []int{2, 4}},
		{"série A", []int{1, 2, 4, 7}, []int{3, 5, 6}},
		{"desordenado com repetidos", []int{7, 4, 1, 4, 2, 7}, []int{3, 5, 6}},
		{"contíguo", []int{10, 11, 12}, []int{}},
		{"começa em zero", []int{0, 3}, []int{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Missing(tt.numbers)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Missing(%v) = %v, esperado %v", tt.numbers, got, tt.want)
			}
		})
	}
}

func TestMissingProperties(t *testing.T) {
	inputs := [][]int{
		{3, 9, 4, 15, 15, 20},
		{100, 1},
		{2, 4, 6, 8, 10, 11},
	}
	for _, in := range inputs {
		got := Missing(in)

		seen := make(map[int]bool)
		lo, hi := in[0], in[0]
		for _, n := range in {
			seen[n] = true
			if n < lo {
				lo = n
			}
			if n > hi {
				hi = n
			}
		}

		for i, n := range got {
			if seen[n] {
				t.Errorf("%v: %d faltante mas presente na entrada", in, n)
			}
			if n < lo || n > hi {
				t.Errorf("%v: %d fora do intervalo [%d, %d]", in, n, lo, hi)
			}
			if i > 0 && got[i-1] >= n {
				t.Errorf("%v: resultado não é estritamente crescente: %v", in, got)
			}
			seen[n] = true
		}
		for n := lo; n <= hi; n++ {
			if !seen[n] {
				t.Errorf("%v: %d não coberto pela união", in, n)
			}
		}
	}
}

func TestMissingDoesNotReorderInput(t *testing.T) {
	in := []int{5, 1, 3}
	Missing(in)
	if !reflect.DeepEqual(in, []int{5, 1, 3}) {
		t.Errorf("entrada alterada: %v", in)
	}
}

func TestFirstNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"123", 123, true},
		{"000045", 45, true},
		{"NF 77-B", 77, true},
		{"12/34", 12, true},
		{"", 0, false},
		{"sem número", 0, false},
		{"99999999999999999999999", 0, false},
	}
	for _, tt := range tests {
		got, ok := FirstNumber(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FirstNumber(%q) = %d, %v; esperado %d, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSpan(t *testing.T) {
	tests := []struct {
		numbers []int
		want    int
	}{
		{nil, 0},
		{[]int{7}, 0},
		{[]int{7, 4, 1, 4}, 6},
		{[]int{1, 50000000}, 49999999},
	}
	for _, tt := range tests {
		if got := Span(tt.numbers); got != tt.want {
			t.Errorf("Span(%v) = %d, esperado %d", tt.numbers, got, tt.want)
		}
	}
}

func TestMissingCapacityMatchesResult(t *testing.T) {
	got := Missing([]int{10, 1, 4, 4, 7})
	if len(got) != cap(got) {
		t.Errorf("len = %d, cap = %d", len(got), cap(got))
	}
	if !reflect.DeepEqual(got, []int{2, 3, 5, 6, 8, 9}) {
		t.Errorf("Missing = %v", got)
	}
}
