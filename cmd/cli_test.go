// SPDX-License-Identifier: MIT
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"eeg/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Execute(context.Background(), args, &out)
	return out.String(), err
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rec.csv")
	content := "seconds,chan,voltage\n0.5,O1,2\n0,O1,1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseCommand(t *testing.T) {
	out, err := run(t, "parse", "--rows", writeCSV(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var reports []struct {
		Format string `json:"format"`
		Rows   []struct {
			Channel string
			Seconds float64
		} `json:"rows"`
	}
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(reports) != 1 || reports[0].Format != "delimited" || len(reports[0].Rows) != 2 {
		t.Fatalf("reports = %+v", reports)
	}
	if reports[0].Rows[0].Seconds != 0 {
		t.Errorf("rows not sorted: %+v", reports[0].Rows)
	}
}

func TestIngestCommandParquet(t *testing.T) {
	parquetPath := filepath.Join(t.TempDir(), "rows.parquet")
	out, err := run(t, "ingest", "-q", "--store", "parquet", "--parquet-path", parquetPath,
		"--participant", "p-9", "--batch-size", "1", writeCSV(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"participantId": "p-9"`) || !strings.Contains(out, `"batches": 2`) {
		t.Errorf("unexpected output:\n%s", out)
	}
	if _, err := os.Stat(parquetPath); err != nil {
		t.Errorf("parquet file not written: %v", err)
	}
}

func TestConfigFileAndValidation(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "eeg.yaml")
	if err := os.WriteFile(cfgPath, []byte("store:\n  kind: s3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := run(t, "--config", cfgPath, "parse", writeCSV(t))
	if err == nil || !strings.Contains(err.Error(), "store.s3.bucket") {
		t.Errorf("expected validation error for missing bucket, got %v", err)
	}

	_, err = run(t, "ingest", "--batch-size", "0", writeCSV(t))
	if err == nil || !strings.Contains(err.Error(), config.ErrInvalid.Error()) {
		t.Errorf("expected invalid batch size error, got %v", err)
	}

	_, err = run(t, "sniff", "--channels", "0", writeCSV(t))
	if err == nil || !strings.Contains(err.Error(), "sniff.channels") {
		t.Errorf("expected invalid channel count error, got %v", err)
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"plot"}},
		{"missing argument", []string{"sniff"}},
		{"missing file", []string{"parse", filepath.Join(t.TempDir(), "nope.csv")}},
		{"bad log level", []string{"--log-level", "loud", "parse", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestWavName(t *testing.T) {
	tests := map[string]string{
		"rec.dat":        "rec.wav",
		"dir/rec.dat.gz": "dir/rec.wav",
		"rec":            "rec.wav",
	}
	for in, want := range tests {
		if got := wavName(in); got != want {
			t.Errorf("wavName(%q) = %q, want %q", in, got, want)
		}
	}
}
