package store

import "testing"

func TestDefragmentPreservesOrderAndContent(t *testing.T) {
	s := openTestStore(t)

	if err := s.CreateFile("a", []byte("aaa")); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if err := s.CreateFile("b", []byte("bbbb")); err != nil {
		t.Fatalf("create b: %v", err)
	}
	if err := s.OverwriteFile("a", []byte("AA")); err != nil {
		t.Fatalf("overwrite a: %v", err)
	}
	if err := s.CreateFile("c", []byte("ccccc")); err != nil {
		t.Fatalf("create c: %v", err)
	}
	if err := s.DeleteFile("b"); err != nil {
		t.Fatalf("delete b: %v", err)
	}

	if err := s.Defragment(); err != nil {
		t.Fatalf("defragment: %v", err)
	}

	names, err := s.ListFiles()
	if err != nil {
		t.Fatalf("listFiles: %v", err)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "c" {
		t.Fatalf("listFiles after defragment = %v, want [a c]", names)
	}

	liveBytes := int64(headerSize+1+2) + int64(headerSize+1+5) // "a"->"AA", "c"->"ccccc"
	avail, err := s.AvailableSpace()
	if err != nil {
		t.Fatalf("availableSpace: %v", err)
	}
	if want := int32(testCapacity - 8 - liveBytes); avail != want {
		t.Fatalf("available after defragment = %d, want %d", avail, want)
	}

	if got, err := s.ReadFile("a"); err != nil || string(got) != "AA" {
		t.Fatalf("read a = %v, %v", got, err)
	}
	if got, err := s.ReadFile("c"); err != nil || string(got) != "ccccc" {
		t.Fatalf("read c = %v, %v", got, err)
	}
}

func TestDefragmentOnEmptyStoreIsNoop(t *testing.T) {
	s := openTestStore(t)
	if err := s.Defragment(); err != nil {
		t.Fatalf("defragment: %v", err)
	}
	avail, err := s.AvailableSpace()
	if err != nil || avail != testCapacity-8 {
		t.Fatalf("available = %d, %v", avail, err)
	}
}

func TestDefragmentThenCreateReclaimsSpace(t *testing.T) {
	s := openTestStore(t)
	if err := s.CreateFile("a", make([]byte, 100)); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if err := s.DeleteFile("a"); err != nil {
		t.Fatalf("delete a: %v", err)
	}
	beforeDefrag := mustAvailable(t, s)
	if err := s.Defragment(); err != nil {
		t.Fatalf("defragment: %v", err)
	}
	afterDefrag := mustAvailable(t, s)
	if afterDefrag <= beforeDefrag {
		t.Fatalf("defragment did not reclaim space: before=%d after=%d", beforeDefrag, afterDefrag)
	}
	if afterDefrag != testCapacity-8 {
		t.Fatalf("available after defragmenting all-tombstoned store = %d, want %d", afterDefrag, testCapacity-8)
	}
}
