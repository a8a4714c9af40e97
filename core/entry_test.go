package core

import (
	"strings"
	"testing"
)

func TestEntryPool(t *testing.T) {
	e1 := GetEntry()
	if e1 == nil {
		t.Fatal("GetEntry() returned nil")
	}
	if len(e1.Fields) != 0 {
		t.Errorf("Expected empty fields, got %d", len(e1.Fields))
	}
	if e1.Level != InfoLevel {
		t.Errorf("Expected InfoLevel on fresh entry, got %v", e1.Level)
	}

	e1.Message = "test"
	e1.Level = ErrorLevel
	e1.Fields = append(e1.Fields, Field{Key: "test", Str: "value"})
	PutEntry(e1)

	e2 := GetEntry()
	if e2 == nil {
		t.Fatal("GetEntry() returned nil after PutEntry()")
	}
	if e2.Message != "" {
		t.Errorf("Expected empty message after pool reset, got %q", e2.Message)
	}
	if len(e2.Fields) != 0 {
		t.Errorf("Expected empty fields after pool reset, got %d", len(e2.Fields))
	}
	if e2.Level != InfoLevel {
		t.Errorf("Expected level reset to InfoLevel, got %v", e2.Level)
	}
}

func TestPutEntryNil(t *testing.T) {
	PutEntry(nil)
}

func TestGetCaller(t *testing.T) {
	caller := GetCaller(0)
	if !caller.Defined {
		t.Fatal("GetCaller() returned undefined CallerInfo")
	}
	if caller.ShortFile != "entry_test.go" {
		t.Errorf("ShortFile = %q, want entry_test.go", caller.ShortFile)
	}
	if caller.Line == 0 {
		t.Error("Expected non-zero line number")
	}
	if !strings.HasSuffix(caller.Function, "TestGetCaller") {
		t.Errorf("Function = %q, want suffix TestGetCaller", caller.Function)
	}
}

func BenchmarkGetEntry(b *testing.B) {
	for i := 0; i < b.N; i++ {
		e := GetEntry()
		PutEntry(e)
	}
}

func BenchmarkGetEntryWithFields(b *testing.B) {
	for i := 0; i < b.N; i++ {
		e := GetEntry()
		e.Message = "test message"
		e.Level = InfoLevel
		e.Fields = append(e.Fields, Field{Key: "key1", Str: "value1"})
		e.Fields = append(e.Fields, Field{Key: "key2", Int64: 42})
		PutEntry(e)
	}
}
