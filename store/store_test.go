package store

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

const testCapacity = 1024

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "container.bin")
	s, err := Open(path, testCapacity)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustAvailable(t *testing.T, s *Store) int32 {
	t.Helper()
	n, err := s.AvailableSpace()
	if err != nil {
		t.Fatalf("AvailableSpace: %v", err)
	}
	return n
}

// TestEndToEndScenario walks five create/overwrite/delete/defragment
// scenarios end to end, with exact on-disk sizes recomputed for this
// implementation's record layout (9 + len(name) + len(content)). The
// read-channel scenario is TestReadChannelPinsAgainstWriters.
func TestEndToEndScenario(t *testing.T) {
	s := openTestStore(t)

	// 1. Create "a" with [0x01,0x02,0x03] (on-disk 9+1+3=13).
	if err := s.CreateFile("a", []byte{0x01, 0x02, 0x03}); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if want, got := int32(testCapacity-8-13), mustAvailable(t, s); want != got {
		t.Fatalf("available after create a = %d, want %d", got, want)
	}
	got, err := s.ReadFile("a")
	if err != nil || !bytes.Equal(got, []byte{0x01, 0x02, 0x03}) {
		t.Fatalf("read a = %v, %v", got, err)
	}

	// 2. Overwrite "a" with [0x09] (on-disk 9+1+1=11); old tombstoned.
	if err := s.OverwriteFile("a", []byte{0x09}); err != nil {
		t.Fatalf("overwrite a: %v", err)
	}
	names, err := s.ListFiles()
	if err != nil || len(names) != 1 || names[0] != "a" {
		t.Fatalf("listFiles after overwrite = %v, %v", names, err)
	}
	if got, err := s.ReadFile("a"); err != nil || !bytes.Equal(got, []byte{0x09}) {
		t.Fatalf("read a after overwrite = %v, %v", got, err)
	}
	if want, got := int32(testCapacity-8-13-11), mustAvailable(t, s); want != got {
		t.Fatalf("available after overwrite = %d, want %d", got, want)
	}

	// 3. Defragment: only the live 11-byte record remains.
	if err := s.Defragment(); err != nil {
		t.Fatalf("defragment: %v", err)
	}
	if want, got := int32(testCapacity-8-11), mustAvailable(t, s); want != got {
		t.Fatalf("available after defragment = %d, want %d", got, want)
	}
	if got, err := s.ReadFile("a"); err != nil || !bytes.Equal(got, []byte{0x09}) {
		t.Fatalf("read a after defragment = %v, %v", got, err)
	}

	// 4. Create "b" with a payload sized to leave little room, then
	// fail to admit "c".
	avail := mustAvailable(t, s)
	bPayload := make([]byte, int(avail)-9-1-10) // leave exactly 10 bytes free after "b"
	if err := s.CreateFile("b", bPayload); err != nil {
		t.Fatalf("create b: %v", err)
	}
	remaining := mustAvailable(t, s)
	if remaining != 10 {
		t.Fatalf("available after create b = %d, want 10", remaining)
	}
	cPayload := make([]byte, 100)
	err = s.CreateFile("c", cPayload)
	if err == nil {
		t.Fatalf("expected InsufficientSpace creating c")
	}
	if !errors.Is(err, ErrInsufficientSpace) {
		t.Fatalf("create c error = %v, want ErrInsufficientSpace", err)
	}

	// 5. Delete "a"; space is not reclaimed until defragment.
	beforeDelete := mustAvailable(t, s)
	if err := s.DeleteFile("a"); err != nil {
		t.Fatalf("delete a: %v", err)
	}
	if ok, err := s.FileExists("a"); err != nil || ok {
		t.Fatalf("fileExists a after delete = %v, %v", ok, err)
	}
	names, err = s.ListFiles()
	if err != nil || len(names) != 1 || names[0] != "b" {
		t.Fatalf("listFiles after delete = %v, %v", names, err)
	}
	if got := mustAvailable(t, s); got != beforeDelete {
		t.Fatalf("available changed on delete: before=%d after=%d", beforeDelete, got)
	}
}

func TestCreateFileInsufficientSpace(t *testing.T) {
	s := openTestStore(t)
	if err := s.CreateFile("big", make([]byte, testCapacity)); !errors.Is(err, ErrInsufficientSpace) {
		t.Fatalf("expected ErrInsufficientSpace, got %v", err)
	}
}

func TestCreateFileEmptyNameRejected(t *testing.T) {
	s := openTestStore(t)
	if err := s.CreateFile("", []byte("x")); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestReadFileNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.ReadFile("missing"); err != ErrFileNotFound {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestOverwriteCreatesWhenAbsent(t *testing.T) {
	s := openTestStore(t)
	if err := s.OverwriteFile("fresh", []byte("hello")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, err := s.ReadFile("fresh"); err != nil || string(got) != "hello" {
		t.Fatalf("read fresh = %v, %v", got, err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.CreateFile("x", []byte("1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.DeleteFile("x"); err != nil {
		t.Fatalf("delete 1: %v", err)
	}
	availAfterFirst := mustAvailable(t, s)
	if err := s.DeleteFile("x"); err != nil {
		t.Fatalf("delete 2: %v", err)
	}
	if got := mustAvailable(t, s); got != availAfterFirst {
		t.Fatalf("second delete changed available space: %d vs %d", got, availAfterFirst)
	}
}

func TestFormatResetsCursorPreservesCapacity(t *testing.T) {
	s := openTestStore(t)
	if err := s.CreateFile("x", []byte("hello")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Format(); err != nil {
		t.Fatalf("format: %v", err)
	}
	names, err := s.ListFiles()
	if err != nil || len(names) != 0 {
		t.Fatalf("listFiles after format = %v, %v", names, err)
	}
	if got := mustAvailable(t, s); got != testCapacity-8 {
		t.Fatalf("available after format = %d, want %d", got, testCapacity-8)
	}
	if s.capacityTotal != testCapacity {
		t.Fatalf("capacity changed across format: %d", s.capacityTotal)
	}
}

func TestReopenRecoversCursor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "container.bin")
	s, err := Open(path, testCapacity)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.CreateFile("a", []byte("content")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(path, testCapacity)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	if got, err := s2.ReadFile("a"); err != nil || string(got) != "content" {
		t.Fatalf("read after reopen = %v, %v", got, err)
	}
}

func TestRoundTripArbitraryContent(t *testing.T) {
	s := openTestStore(t)
	cases := []struct {
		name    string
		content []byte
	}{
		{"empty", nil},
		{"one", []byte{0x00}},
		{"binary", []byte{0xff, 0x00, 0xde, 0xad, 0xbe, 0xef}},
	}
	for _, c := range cases {
		if err := s.CreateFile(c.name, c.content); err != nil {
			t.Fatalf("create %s: %v", c.name, err)
		}
		got, err := s.ReadFile(c.name)
		if err != nil {
			t.Fatalf("read %s: %v", c.name, err)
		}
		if !bytes.Equal(got, c.content) {
			t.Fatalf("round trip %s = %v, want %v", c.name, got, c.content)
		}
	}
}
