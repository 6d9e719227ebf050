package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Sternrassler/reddit-harvest/pkg/listing"
	"github.com/google/go-cmp/cmp"
)

func ids(recs []listing.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestTopByScore(t *testing.T) {
	recs := append(sampleRecords(), listing.Record{ID: "d4", Score: ptr(120)})

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{"all scored, ties in source order", 10, []string{"b2", "a1", "d4"}},
		{"limited", 1, []string{"b2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(TopByScore(recs, tt.n))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("TopByScore() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteChart(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteChart(&buf, "r/championsleague", sampleRecords(), 0); err != nil {
		t.Fatalf("WriteChart() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{"<html", "echarts", "r/championsleague", "b2"} {
		if !strings.Contains(out, want) {
			t.Errorf("chart output missing %q", want)
		}
	}
}

func TestWriteChart_NoScores(t *testing.T) {
	recs := []listing.Record{{ID: "x"}}
	if err := WriteChart(&bytes.Buffer{}, "t", recs, 5); !errors.Is(err, ErrNoRecords) {
		t.Errorf("WriteChart() error = %v, want ErrNoRecords", err)
	}
}
