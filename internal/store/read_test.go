package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/roach88/radixrunner/internal/radix"
)

func TestReadRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-1")
	run.RegionPath = "/dev/shm/radix"
	if err := s.WriteRun(ctx, run); err != nil {
		t.Fatal(err)
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() = %v", err)
	}
	if got.Label != "test" || got.Policy != "live" || got.RegionPath != "/dev/shm/radix" {
		t.Errorf("ReadRun() = %+v", got)
	}
	if got.RegionSize != 16<<20 {
		t.Errorf("RegionSize = %d", got.RegionSize)
	}
	if !got.StartedAt.Equal(testStart) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, testStart)
	}
	if got.FinishedAt != nil {
		t.Errorf("FinishedAt = %v, want nil", got.FinishedAt)
	}
	if !reflect.DeepEqual(got.Shadows, run.Shadows) {
		t.Errorf("Shadows = %+v, want %+v", got.Shadows, run.Shadows)
	}
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadRun(context.Background(), "missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("ReadRun() = %v, want ErrRunNotFound", err)
	}
}

func TestListRuns_OrderedByID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ListRuns() on empty store = %#v, want empty slice", empty)
	}

	for _, id := range []string{"run-c", "run-a", "run-b"} {
		if err := s.WriteRun(ctx, createTestRun(id)); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	if want := []string{"run-a", "run-b", "run-c"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ListRuns() ids = %v, want %v", ids, want)
	}
}

func TestReadSamples_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	if err := s.WriteRun(ctx, createTestRun("run-1")); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteRun(ctx, createTestRun("run-2")); err != nil {
		t.Fatal(err)
	}

	for _, seq := range []int64{3, 1, 2} {
		if _, err := s.WriteSample(ctx, createTestSample("run-1", seq, uint64(seq)*4096)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.WriteSample(ctx, createTestSample("run-2", 1, 7)); err != nil {
		t.Fatal(err)
	}

	got, err := s.ReadSamples(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadSamples() = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ReadSamples() returned %d samples, want 3", len(got))
	}
	for i, sample := range got {
		if sample.Seq != int64(i+1) {
			t.Errorf("sample %d seq = %d", i, sample.Seq)
		}
	}
}

func TestReadSamples_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	if err := s.WriteRun(ctx, createTestRun("run-1")); err != nil {
		t.Fatal(err)
	}

	want := createTestSample("run-1", 2, ^uint64(0))
	want.Digits = radix.DecodeAll(want.Raw)
	if _, err := s.WriteSample(ctx, want); err != nil {
		t.Fatal(err)
	}

	got, err := s.ReadSamples(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d samples", len(got))
	}
	if !reflect.DeepEqual(got[0], want) {
		t.Errorf("ReadSamples()[0] = %+v\nwant %+v", got[0], want)
	}
}

func TestReadSamples_Empty(t *testing.T) {
	s := createTestStore(t)
	got, err := s.ReadSamples(context.Background(), "none")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ReadSamples() = %#v, want empty slice", got)
	}
}

func TestReadRunStats(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	if err := s.WriteRun(ctx, createTestRun("run-1")); err != nil {
		t.Fatal(err)
	}

	st, err := s.ReadRunStats(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if st != (RunStats{}) {
		t.Errorf("stats of empty run = %+v", st)
	}

	for seq := int64(2); seq <= 5; seq++ {
		if _, err := s.WriteSample(ctx, createTestSample("run-1", seq, uint64(seq))); err != nil {
			t.Fatal(err)
		}
	}
	st, err = s.ReadRunStats(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	want := RunStats{Samples: 4, FirstSeq: 2, LastSeq: 5, MaxTicksPerSecond: 5000}
	if st != want {
		t.Errorf("ReadRunStats() = %+v, want %+v", st, want)
	}
}
