package frames

import "testing"

func TestSortByIndexOrders(t *testing.T) {
	records := []FrameRecord{
		{GlobalIndex: 4},
		{GlobalIndex: 0},
		{GlobalIndex: 2},
	}
	SortByIndex(records)
	for i, want := range []int{0, 2, 4} {
		if records[i].GlobalIndex != want {
			t.Fatalf("position %d: GlobalIndex = %d, want %d", i, records[i].GlobalIndex, want)
		}
	}
}

func TestValidateSequence(t *testing.T) {
	ok := []FrameRecord{{GlobalIndex: 0}, {GlobalIndex: 1}, {GlobalIndex: 5}}
	if err := ValidateSequence(ok); err != nil {
		t.Fatalf("ValidateSequence: %v", err)
	}

	dup := []FrameRecord{{GlobalIndex: 0}, {GlobalIndex: 1}, {GlobalIndex: 1}}
	if err := ValidateSequence(dup); err == nil {
		t.Fatal("expected error for duplicate index")
	}

	descending := []FrameRecord{{GlobalIndex: 2}, {GlobalIndex: 1}}
	if err := ValidateSequence(descending); err == nil {
		t.Fatal("expected error for descending index")
	}

	if err := ValidateSequence(nil); err != nil {
		t.Fatalf("empty sequence should validate: %v", err)
	}
}

func TestSetMetadataAllocates(t *testing.T) {
	var result ExtractionResult
	result.SetMetadata("source", "clip.mp4")
	if result.Metadata["source"] != "clip.mp4" {
		t.Fatalf("Metadata = %v", result.Metadata)
	}
}
