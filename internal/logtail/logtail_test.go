package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "read all (0)", maxLines: 0, expected: expectedAll},
		{name: "read all (negative)", maxLines: -1, expected: expectedAll},
		{name: "read partial (5)", maxLines: 5, expected: expectedAll[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: expectedAll},
		{name: "read more than exists (20)", maxLines: 20, expected: expectedAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v, want nil, nil", got, err)
	}
}

func TestParseAndFormat(t *testing.T) {
	line := `{"time":"2026-10-19T14:03:09.120+05:30","level":"warn","order_id":"ord_1","tick":3,"error":"dial tcp: refused","message":"status poll failed"}`
	entry := Parse(line)
	if entry.Level != "warn" || entry.Message != "status poll failed" {
		t.Fatalf("Parse = %+v", entry)
	}
	if entry.Fields["tick"] != "3" || entry.Fields["order_id"] != "ord_1" {
		t.Fatalf("Fields = %v", entry.Fields)
	}

	want := `2026-10-19T14:03:09.120+05:30 WARN  status poll failed error="dial tcp: refused" order_id=ord_1 tick=3`
	if got := entry.Format(); got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}
}

func TestParse_NonJSONPassesThrough(t *testing.T) {
	for _, line := range []string{"plain text", "{broken", ""} {
		if got := Parse(line).Format(); got != line {
			t.Fatalf("Format(%q) = %q, want unchanged", line, got)
		}
	}
}

func TestFilter(t *testing.T) {
	lines := []string{
		`{"time":"t1","level":"debug","message":"request sent","path":"/menu/pl"}`,
		`{"time":"t2","level":"info","message":"order status changed","order_id":"ord_1"}`,
		`{"time":"t3","level":"warn","message":"status poll failed","order_id":"ord_2"}`,
		"",
		"stray line about ORD_1",
	}

	got := Filter(lines, Query{Contains: "ord_1"})
	want := []string{"t2 INFO  order status changed order_id=ord_1", "stray line about ORD_1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Filter(contains) = %q, want %q", got, want)
	}

	got = Filter(lines, Query{MinLevel: "info"})
	if len(got) != 3 || !strings.HasPrefix(got[0], "t2 INFO") {
		t.Fatalf("Filter(min info) = %q", got)
	}

	got = Filter(lines, Query{})
	if len(got) != 4 {
		t.Fatalf("Filter(all) = %q, want 4 lines", got)
	}
}
