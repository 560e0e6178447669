package dates

import (
	"testing"
	"time"
)

func TestParsePointDayPrecision(t *testing.T) {
	got, err := ParsePoint("Jan 01 2017")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestParsePointMonthPrecision(t *testing.T) {
	got, err := ParsePoint("Feb 2017")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2017, time.February, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestParsePointRejectsOtherLayouts(t *testing.T) {
	for _, s := range []string{"2017-01-01", "01/02/2017", "", "January 1, 2017"} {
		if _, err := ParsePoint(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestISORoundTrip(t *testing.T) {
	d := time.Date(2017, time.March, 6, 0, 0, 0, 0, time.UTC)
	parsed, err := ParseISO(FormatISO(d))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parsed.Equal(d) {
		t.Errorf("expected %v, got %v", d, parsed)
	}
}

func TestParseISOInvalid(t *testing.T) {
	if _, err := ParseISO("Jan 01 2017"); err == nil {
		t.Error("expected error for non-ISO input")
	}
}
