package store

import (
	"bytes"
	"io"
	"testing"
)

func TestReadChannelPositionalAndSequentialReads(t *testing.T) {
	s := openTestStore(t)
	content := []byte("hello, container filesystem")
	if err := s.CreateFile("f", content); err != nil {
		t.Fatalf("create: %v", err)
	}

	ch, err := s.OpenReadChannel("f")
	if err != nil {
		t.Fatalf("openReadChannel: %v", err)
	}
	defer ch.Close()

	if ch.Len() != int64(len(content)) {
		t.Fatalf("Len() = %d, want %d", ch.Len(), len(content))
	}

	buf := make([]byte, 5)
	n, err := ch.Read(buf)
	if err != nil || n != 5 || !bytes.Equal(buf, content[:5]) {
		t.Fatalf("first read = %d %v %q", n, err, buf)
	}

	rest, err := io.ReadAll(ch)
	if err != nil || !bytes.Equal(rest, content[5:]) {
		t.Fatalf("rest read = %v %q", err, rest)
	}

	small := make([]byte, 3)
	n, err = ch.ReadAt(small, 0)
	if err != nil || n != 3 || !bytes.Equal(small, content[:3]) {
		t.Fatalf("readAt = %d %v %q", n, err, small)
	}
}

func TestReadChannelNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.OpenReadChannel("nope"); err != ErrFileNotFound {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestReadChannelPinsAgainstWriters(t *testing.T) {
	s := openTestStore(t)
	if err := s.CreateFile("b", []byte("payload bytes here")); err != nil {
		t.Fatalf("create: %v", err)
	}

	ch, err := s.OpenReadChannel("b")
	if err != nil {
		t.Fatalf("openReadChannel: %v", err)
	}

	buf := make([]byte, 7)
	if _, err := ch.Read(buf); err != nil {
		t.Fatalf("read: %v", err)
	}

	done := make(chan struct{})
	go func() {
		_ = s.DeleteFile("b")
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("delete completed before read channel was closed")
	default:
	}

	if err := ch.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	<-done

	if ok, err := s.FileExists("b"); err != nil || ok {
		t.Fatalf("fileExists after delete = %v, %v", ok, err)
	}
}
