package utils

import (
	"testing"
)

func TestOpenStorage(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", "")

	m, err := OpenStorage("beancounters_storage_test")
	if err != nil {
		t.Skipf("gdata unavailable on this platform: %v", err)
	}

	if err := m.SaveObjectProp("check", "value", []byte("1")); err != nil {
		t.Fatalf("SaveObjectProp failed: %v", err)
	}
	data, err := m.LoadObjectProp("check", "value")
	if err != nil {
		t.Fatalf("LoadObjectProp failed: %v", err)
	}
	if string(data) != "1" {
		t.Errorf("expected %q, got %q", "1", data)
	}
}
