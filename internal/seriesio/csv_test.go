package seriesio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/heatflex/heatflex/core/faults"
)

func TestReadWithHeader(t *testing.T) {
	in := "timestamp,value\n2024-10-01T00:00:00Z,100\n2024-10-01T01:00:00Z,200\n"
	s, err := Read(strings.NewReader(in), "co2", false)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(s.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(s.Points))
	}
	if s.Name != "co2" {
		t.Fatalf("name = %q", s.Name)
	}
	want := time.Date(2024, 10, 1, 1, 0, 0, 0, time.UTC)
	if !s.Points[1].Time.Equal(want) || s.Points[1].Value != 200 {
		t.Fatalf("point[1] = %v %v", s.Points[1].Time, s.Points[1].Value)
	}
}

func TestReadWithoutHeader(t *testing.T) {
	in := "2024-10-01T00:00:00Z,1.5\n2024-10-01T01:00:00Z,2.5\n"
	s, err := Read(strings.NewReader(in), "price", false)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(s.Points) != 2 || s.Points[0].Value != 1.5 {
		t.Fatalf("unexpected points: %+v", s.Points)
	}
}

func TestReadIgnoreTimezone(t *testing.T) {
	in := "2024-10-01T00:00:00+02:00,42\n"
	s, err := Read(strings.NewReader(in), "heat", true)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	if !s.Points[0].Time.Equal(want) {
		t.Fatalf("time = %v, want %v", s.Points[0].Time, want)
	}
}

func TestReadBadValue(t *testing.T) {
	in := "timestamp,value\n2024-10-01T00:00:00Z,abc\n"
	_, err := Read(strings.NewReader(in), "co2", false)
	if !errors.Is(err, faults.ErrData) {
		t.Fatalf("err = %v, want ErrData", err)
	}
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(strings.NewReader("timestamp,value\n"), "co2", false)
	if !errors.Is(err, faults.ErrData) {
		t.Fatalf("err = %v, want ErrData", err)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), "co2", false)
	if !errors.Is(err, faults.ErrData) {
		t.Fatalf("err = %v, want ErrData", err)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "co2.csv")
	data := "timestamp,value\n2024-10-01T00:00:00Z,300\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := ReadFile(path, "co2", false)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(s.Points) != 1 || s.Points[0].Value != 300 {
		t.Fatalf("unexpected points: %+v", s.Points)
	}
}
