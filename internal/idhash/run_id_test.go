package idhash

import (
	"testing"

	"github.com/google/uuid"
)

func TestComputeRunID_Deterministic(t *testing.T) {
	a := ComputeRunID("score", 3, 100, 200, 42, 1700000000000000000)
	b := ComputeRunID("score", 3, 100, 200, 42, 1700000000000000000)
	if a != b {
		t.Errorf("Determinism failed: %s != %s", a, b)
	}

	id, err := uuid.Parse(a)
	if err != nil {
		t.Fatalf("run id is not a uuid: %v", err)
	}
	if id.Version() != 5 {
		t.Errorf("expected version 5, got %d", id.Version())
	}
}

func TestComputeRunID_DifferentInputs(t *testing.T) {
	base := ComputeRunID("score", 3, 100, 200, 42, 1)
	if base == ComputeRunID("score", 4, 100, 200, 42, 1) {
		t.Error("different threshold should produce different id")
	}
	if base == ComputeRunID("score", 3, 100, 200, 42, 2) {
		t.Error("different creation time should produce different id")
	}
	if base == ComputeRunID("grid", 3, 100, 200, 42, 1) {
		t.Error("different strategy should produce different id")
	}
}
