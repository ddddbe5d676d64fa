package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{",", ',', false},
		{";", ';', false},
		{"tab", '\t', false},
		{"TAB", '\t', false},
		{`\t`, '\t', false},
		{"§", '§', false},
		{"", 0, true},
		{";;", 0, true},
	}
	for _, tt := range tests {
		got, err := parseDelimiter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDelimiter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDelimiter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSheets(t *testing.T) {
	in := writeInput(t, "in.csv", "a,b\n")
	stdout, stderr, code := runCLI(t, "sheets", in)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	if stdout != "0\t\tactive\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestDump(t *testing.T) {
	in := writeInput(t, "in.csv", "id;name\n;\n1;Ann\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "defaults",
			args: []string{"dump", "-d", ";", in},
			want: "id\tname\n1\tAnn\n",
		},
		{
			name: "keys",
			args: []string{"dump", "-d", ";", "--keys", in},
			want: "1\tid\tname\n3\t1\tAnn\n",
		},
		{
			name: "preserve empty rows",
			args: []string{"dump", "-d", ";", "-k", "--preserve-empty-rows", in},
			want: "1\tid\tname\n2\t\t\n3\t1\tAnn\n",
		},
		{
			name: "wrong delimiter",
			args: []string{"dump", in},
			want: "id;name\n;\n1;Ann\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, code := runCLI(t, tt.args...)
			if code != 0 {
				t.Fatalf("exit code = %d, stderr: %s", code, stderr)
			}
			if stdout != tt.want {
				t.Errorf("stdout = %q, want %q", stdout, tt.want)
			}
		})
	}
}

func TestDump_Errors(t *testing.T) {
	in := writeInput(t, "in.csv", "a\n")
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing file", []string{"dump", filepath.Join(t.TempDir(), "none.csv")}, "opening"},
		{"unknown sheet", []string{"dump", "--sheet", "Nope", in}, `no sheet named "Nope"`},
		{"bad delimiter", []string{"dump", "-d", "ab", in}, "single character"},
		{"no arguments", []string{"dump"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := runCLI(t, tt.args...)
			if code == 0 {
				t.Fatal("exit code = 0, want failure")
			}
			if !strings.Contains(stderr, tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.wantErr)
			}
		})
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	in := writeInput(t, "in.csv", "name,qty\nbolt,12\nnut,30\n")
	for _, ext := range []string{".xlsx", ".ods"} {
		t.Run(ext, func(t *testing.T) {
			dir := t.TempDir()
			book := filepath.Join(dir, "book"+ext)
			if _, stderr, code := runCLI(t, "convert", "--temp-dir", dir, in, book); code != 0 {
				t.Fatalf("convert to %s failed: %s", ext, stderr)
			}

			stdout, stderr, code := runCLI(t, "sheets", book)
			if code != 0 {
				t.Fatalf("sheets failed: %s", stderr)
			}
			if stdout != "0\tSheet1\tactive\n" {
				t.Errorf("sheets = %q", stdout)
			}

			back := filepath.Join(dir, "back.csv")
			if _, stderr, code := runCLI(t, "convert", "--no-bom", "-d", ";", book, back); code != 0 {
				t.Fatalf("convert back failed: %s", stderr)
			}
			data, err := os.ReadFile(back)
			if err != nil {
				t.Fatal(err)
			}
			if want := "name;qty\nbolt;12\nnut;30\n"; string(data) != want {
				t.Errorf("csv = %q, want %q", data, want)
			}
		})
	}
}

func TestConvert_MaxRows(t *testing.T) {
	in := writeInput(t, "in.csv", "1\n2\n3\n4\n5\n")
	out := filepath.Join(t.TempDir(), "split.xlsx")
	if _, stderr, code := runCLI(t, "convert", "--max-rows", "2", in, out); code != 0 {
		t.Fatalf("convert failed: %s", stderr)
	}
	stdout, stderr, code := runCLI(t, "sheets", out)
	if code != 0 {
		t.Fatalf("sheets failed: %s", stderr)
	}
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		names = append(names, strings.Split(line, "\t")[1])
	}
	if got := strings.Join(names, ","); got != "Sheet1,Sheet2,Sheet3" {
		t.Errorf("sheets = %s, want Sheet1,Sheet2,Sheet3", got)
	}

	stdout, _, _ = runCLI(t, "dump", "--sheet", "Sheet3", out)
	if stdout != "5\n" {
		t.Errorf("dump Sheet3 = %q, want %q", stdout, "5\n")
	}
}

func TestConvert_ExplicitFormat(t *testing.T) {
	in := writeInput(t, "in.csv", "x\n")
	out := filepath.Join(t.TempDir(), "data.bin")
	if _, stderr, code := runCLI(t, "convert", "--to", "ods", in, out); code != 0 {
		t.Fatalf("convert failed: %s", stderr)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		t.Errorf("output is not a zip container")
	}
	stdout, _, code := runCLI(t, "dump", out)
	if code != 0 || stdout != "x\n" {
		t.Errorf("dump = %q (exit %d), want %q", stdout, code, "x\n")
	}
}

func TestConvert_Errors(t *testing.T) {
	in := writeInput(t, "in.csv", "x\n")
	dir := t.TempDir()
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown extension", []string{"convert", in, filepath.Join(dir, "out.txt")}, "unsupported"},
		{"unknown --to", []string{"convert", "--to", "pdf", in, filepath.Join(dir, "out.pdf")}, "unsupported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := runCLI(t, tt.args...)
			if code == 0 {
				t.Fatal("exit code = 0, want failure")
			}
			if !strings.Contains(strings.ToLower(stderr), tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.wantErr)
			}
		})
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("failed conversions left %d files behind", len(entries))
	}
}

func TestVerboseLogsToStderr(t *testing.T) {
	in := writeInput(t, "in.csv", "x\n")
	stdout, stderr, code := runCLI(t, "sheets", "-v", in)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(stderr, "msg=opened") || !strings.Contains(stderr, "format=") {
		t.Errorf("stderr = %q, want a debug record", stderr)
	}
	if strings.Contains(stdout, "opened") {
		t.Errorf("log record leaked into stdout: %q", stdout)
	}
}
