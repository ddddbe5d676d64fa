package ods

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"PT12H30M45S", 12*time.Hour + 30*time.Minute + 45*time.Second, false},
		{"PT36H00M00S", 36 * time.Hour, false},
		{"PT0.5S", 500 * time.Millisecond, false},
		{"P1DT2H", 26 * time.Hour, false},
		{"-PT1H", -time.Hour, false},
		{"P2D", 48 * time.Hour, false},
		{"", 0, true},
		{"P", 0, true},
		{"12:30:00", 0, true},
		{"P1Y", 0, true},
		{"P1M", 0, true},
		{"PT5X", 0, true},
		{"PTH", 0, true},
		{"PT1H2", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDuration(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "PT0H00M00S"},
		{90 * time.Minute, "PT1H30M00S"},
		{36*time.Hour + 5*time.Second, "PT36H00M05S"},
		{1500 * time.Millisecond, "PT0H00M01.5S"},
		{-time.Hour, "-PT1H00M00S"},
	}
	for _, tt := range tests {
		got := formatDuration(tt.in)
		if got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
		back, err := parseDuration(got)
		if err != nil || back != tt.in {
			t.Errorf("parseDuration(%q) = %v, %v; want %v", got, back, err, tt.in)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2020-03-04", time.Date(2020, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"2020-03-04T06:30:00", time.Date(2020, 3, 4, 6, 30, 0, 0, time.UTC)},
		{"2020-03-04T06:30:00.25", time.Date(2020, 3, 4, 6, 30, 0, 250000000, time.UTC)},
		{"2020-03-04T06:30:00Z", time.Date(2020, 3, 4, 6, 30, 0, 0, time.UTC)},
		{"2020-03-04T06:30:00+02:00", time.Date(2020, 3, 4, 4, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.in)
		if err != nil {
			t.Errorf("parseDate(%q) failed: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := parseDate("04/03/2020"); err == nil {
		t.Error("parseDate(04/03/2020) succeeded")
	}
}

func TestParagraphs(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "<text:p>plain</text:p>"},
		{"a b", "<text:p>a b</text:p>"},
		{"a   b", `<text:p>a <text:s text:c="2"/>b</text:p>`},
		{"  lead", `<text:p><text:s text:c="2"/>lead</text:p>`},
		{"trail ", `<text:p>trail<text:s/></text:p>`},
		{"a\tb", "<text:p>a<text:tab/>b</text:p>"},
		{"one\ntwo", "<text:p>one</text:p><text:p>two</text:p>"},
		{"one\r\ntwo", "<text:p>one</text:p><text:p>two</text:p>"},
		{"x<y & \x01z", "<text:p>x&lt;y &amp; z</text:p>"},
		{"", "<text:p></text:p>"},
	}
	for _, tt := range tests {
		if got := paragraphs(tt.in); got != tt.want {
			t.Errorf("paragraphs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
