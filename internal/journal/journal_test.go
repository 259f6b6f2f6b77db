package journal

import (
	"testing"
	"time"
)

func outcomeAt(op Op, tick uint64, at time.Time) Outcome {
	return Outcome{Op: op, Tick: tick, Time: at, Path: "maps/demo.json"}
}

func TestRecordAndDrain(t *testing.T) {
	j := New(8, 0)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	j.Record(outcomeAt(OpSave, 1, base))
	j.Record(outcomeAt(OpLoad, 2, base.Add(time.Second)))

	drained := j.Drain()
	if len(drained) != 2 || drained[0].Op != OpSave || drained[1].Op != OpLoad {
		t.Fatalf("unexpected drain %+v", drained)
	}
	if j.Drain() != nil {
		t.Fatalf("second drain should be empty")
	}
	if j.Len() != 2 {
		t.Fatalf("drain should not shrink the retained window, len=%d", j.Len())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	j := New(8, 0)
	j.Record(outcomeAt(OpSave, 1, time.Now()))
	snap := j.Snapshot()
	snap[0].Op = OpExport
	if j.Snapshot()[0].Op != OpSave {
		t.Fatalf("snapshot should not alias journal storage")
	}
}

func TestCapacityDropsOldest(t *testing.T) {
	j := New(3, 0)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for tick := uint64(1); tick <= 5; tick++ {
		j.Record(outcomeAt(OpSave, tick, base.Add(time.Duration(tick)*time.Second)))
	}
	snap := j.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 retained, got %d", len(snap))
	}
	if snap[0].Tick != 3 || snap[2].Tick != 5 {
		t.Fatalf("expected ticks 3..5, got %+v", snap)
	}
}

func TestMaxAgePrunesAgainstNewest(t *testing.T) {
	j := New(16, 10*time.Second)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	j.Record(outcomeAt(OpSave, 1, base))
	j.Record(outcomeAt(OpSave, 2, base.Add(5*time.Second)))
	j.Record(outcomeAt(OpSave, 3, base.Add(12*time.Second)))
	snap := j.Snapshot()
	if len(snap) != 2 || snap[0].Tick != 2 {
		t.Fatalf("expected outcomes within 10s of newest, got %+v", snap)
	}
}

func TestRestoreKeepsOrder(t *testing.T) {
	j := New(8, 0)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	j.Record(outcomeAt(OpSave, 1, base))
	drained := j.Drain()
	j.Record(outcomeAt(OpLoad, 2, base.Add(time.Second)))
	j.Restore(drained)

	again := j.Drain()
	if len(again) != 2 || again[0].Tick != 1 || again[1].Tick != 2 {
		t.Fatalf("restore should prepend, got %+v", again)
	}
}

func TestNilJournalIsInert(t *testing.T) {
	var j *Journal
	j.Record(Outcome{Op: OpSave})
	if j.Drain() != nil || j.Snapshot() != nil || j.Len() != 0 {
		t.Fatalf("nil journal should be a no-op")
	}
}

func TestOutcomeOK(t *testing.T) {
	if !(Outcome{}).OK() {
		t.Fatalf("empty error should be ok")
	}
	if (Outcome{Err: "disk full"}).OK() {
		t.Fatalf("error outcome should not be ok")
	}
}
