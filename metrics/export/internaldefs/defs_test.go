package internaldefs

import "testing"

func TestDefinitionsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range CounterDefs {
		if seen[def.Name] {
			t.Fatalf("duplicate metric name %s", def.Name)
		}
		seen[def.Name] = true
	}
	if len(HistogramBounds) != BucketCount || len(HistogramBoundSuffix) != BucketCount {
		t.Fatal("bound tables must cover every bucket")
	}
	if len(HistogramUpperBounds) != BucketCount-1 {
		t.Fatal("finite bounds must exclude +Inf")
	}
}

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [BucketCount]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}
