package xlsx

import (
	"errors"
	"strconv"
	"testing"

	"github.com/tsawler/sheetstream/model"
)

// stylesWithXf builds a styles part whose cellXfs entry 1 is xf.
func stylesWithXf(xf string, numFmts string) []byte {
	return []byte(`<styleSheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">` +
		`<numFmts>` + numFmts + `</numFmts>` +
		`<cellXfs><xf numFmtId="0"/>` + xf + `</cellXfs></styleSheet>`)
}

func TestStyleTable_IsDateStyle(t *testing.T) {
	tests := []struct {
		name string
		xf   string
		want bool
	}{
		{"general format", `<xf numFmtId="0" applyNumberFormat="1"/>`, false},
		{"number format not applied", `<xf numFmtId="14" applyNumberFormat="0"/>`, false},
		{"non-date builtin", `<xf numFmtId="9" applyNumberFormat="1"/>`, false},
		{"no numFmtId", `<xf applyNumberFormat="1"/>`, false},
		{"builtin date without apply flag", `<xf numFmtId="14"/>`, true},
		{"builtin non-date without apply flag", `<xf numFmtId="9"/>`, false},
		{"custom format not found", `<xf numFmtId="165" applyNumberFormat="1"/>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := parseStyles(stylesWithXf(tt.xf, `<numFmt numFmtId="166" formatCode="yyyy"/>`))
			if err != nil {
				t.Fatalf("parseStyles() failed: %v", err)
			}
			if got := st.IsDateStyle(1); got != tt.want {
				t.Errorf("IsDateStyle(1) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStyleTable_DefaultStyleIsNeverDate(t *testing.T) {
	st, err := parseStyles([]byte(`<styleSheet><cellXfs><xf numFmtId="14"/></cellXfs></styleSheet>`))
	if err != nil {
		t.Fatal(err)
	}
	if st.IsDateStyle(0) {
		t.Error("IsDateStyle(0) = true")
	}
	if st.IsDateStyle(5) || st.IsDateStyle(-1) {
		t.Error("out of range indexes should not be dates")
	}
}

func TestStyleTable_BuiltinDateFormats(t *testing.T) {
	for _, id := range []int{14, 15, 16, 17, 18, 19, 20, 21, 22, 45, 46, 47} {
		st, err := parseStyles(stylesWithXf(`<xf numFmtId="`+strconv.Itoa(id)+`" applyNumberFormat="1"/>`, ""))
		if err != nil {
			t.Fatal(err)
		}
		if !st.IsDateStyle(1) {
			t.Errorf("numFmtId %d should be a date format", id)
		}
	}
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{`[$-409]dddd\,\ mmmm\ d\,\ yy`, true},
		{`[$-409]d\-mmm\-yy;@`, true},
		{`[$-409]d\-mmm\-yyyy;@`, true},
		{`mm/dd/yy;@`, true},
		{`MM/DD/YY;@`, true},
		{`[$-F800]dddd\,\ mmmm\ dd\,\ yyyy`, true},
		{`m/d;@`, true},
		{`m/d/yy;@`, true},
		{`[$-409]d\-mmm;@`, true},
		{`[$-409]dd\-mmm\-yy;@`, true},
		{`[$-409]mmm\-yy;@`, true},
		{`[$-409]mmmm\-yy;@`, true},
		{`[$-409]mmmm\ d\,\ yyyy;@`, true},
		{`[$-409]m/d/yy\ h:mm\ AM/PM;@`, true},
		{`m/d/yy\ h:mm;@`, true},
		{`[$-409]mmmmm;@`, true},
		{`[$-409]MMmmM;@`, true},
		{`[$-409]mmmmm\-yy;@`, true},
		{`m/d/yyyy;@`, true},
		{`[$-409]m/d/yy\--h:mm;@`, true},
		{`General`, false},
		{`GENERAL`, false},
		{`\ma\yb\e`, false},
		{`[Red]foo;`, false},
		{`0.00"days"`, false},
		{`0;[Red]yyyy`, false},
		{`[Red]yyyy;0`, true},
		{`YYYY-MM-DD`, true},
		{`0.00;"dd"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := isDateFormatCode(tt.code); got != tt.want {
				t.Errorf("isDateFormatCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestStyleTable_FormatCode(t *testing.T) {
	st, err := parseStyles(stylesWithXf(`<xf numFmtId="165"/><xf numFmtId="14"/><xf numFmtId="300"/>`,
		`<numFmt numFmtId="165" formatCode="dd/mm/yyyy"/>`))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		index int
		want  string
	}{
		{0, "General"},
		{1, "dd/mm/yyyy"},
		{2, builtinNumFmts[14]},
		{3, "General"},
		{9, "General"},
	}
	for _, tt := range tests {
		if got := st.FormatCode(tt.index); got != tt.want {
			t.Errorf("FormatCode(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestParseStyles_Malformed(t *testing.T) {
	_, err := parseStyles([]byte(`<styleSheet><cellXfs>`))
	var xerr *model.XMLError
	if !errors.As(err, &xerr) || xerr.Part != partStyles {
		t.Errorf("parseStyles() error = %v, want *model.XMLError for %s", err, partStyles)
	}
}
