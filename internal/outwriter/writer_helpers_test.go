package outwriter

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/pulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		precision int
		value     float64
		expected  string
	}{
		{1, 42.25, "42.2"}, // exact half rounds to even
		{1, 4.26, "4.3"},
		{2, 0.8765, "0.88"},
		{2, -12.5, "-12.50"},
		{1, 0, "0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			fmtFloat, intFmt := createFormatters(tt.precision)
			assert.Equal(t, tt.expected, fmtFloat(tt.value))
			assert.Equal(t, "%d", intFmt)
		})
	}
}

func TestEncoders(t *testing.T) {
	interval := schema.Interval{Lower: 9.5, Upper: 10.5}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeJSON(&buf, map[string]any{"metric": "cost", "periods": 3}))
		assert.Equal(t, "{\n  \"metric\": \"cost\",\n  \"periods\": 3\n}\n", buf.String())
	})

	t.Run("json error", func(t *testing.T) {
		var buf bytes.Buffer
		err := writeJSON(&buf, make(chan int))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to encode JSON")
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		data := struct {
			Metric    string            `yaml:"metric"`
			Intervals []schema.Interval `yaml:"intervals"`
		}{Metric: "cost", Intervals: []schema.Interval{interval}}
		require.NoError(t, writeYAML(&buf, data))
		assert.Equal(t, "metric: cost\nintervals:\n  - lower: 9.5\n    upper: 10.5\n", buf.String())
	})
}

func TestWriteCSVWithHeader(t *testing.T) {
	tests := []struct {
		name     string
		rows     [][]string
		expected string
	}{
		{
			name:     "forecast rows",
			rows:     [][]string{{"cost", "1", "60.0"}, {"cost", "2", "70.0"}},
			expected: "metric,step,forecast\ncost,1,60.0\ncost,2,70.0\n",
		},
		{
			name:     "header only",
			expected: "metric,step,forecast\n",
		},
		{
			name:     "quoted message",
			rows:     [][]string{{"error_count", "1", "rising, fast"}},
			expected: "metric,step,forecast\nerror_count,1,\"rising, fast\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeCSVWithHeader(&buf, []string{"metric", "step", "forecast"}, func(w *csv.Writer) error {
				return w.WriteAll(tt.rows)
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, buf.String())
		})
	}

	t.Run("row error propagates", func(t *testing.T) {
		var buf bytes.Buffer
		err := writeCSVWithHeader(&buf, []string{"metric"}, func(*csv.Writer) error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestWriteWithFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		write   func(io.Writer) error
		wantErr bool
		want    string
	}{
		{
			name:  "stdout",
			path:  "",
			write: func(w io.Writer) error { _, err := io.WriteString(w, ""); return err },
		},
		{
			name: "file",
			path: filepath.Join(dir, "forecasts.csv"),
			write: func(w io.Writer) error {
				return writeCSVWithHeader(w, []string{"metric"}, func(*csv.Writer) error { return nil })
			},
			want: "metric\n",
		},
		{
			name:    "writer error",
			path:    filepath.Join(dir, "broken.json"),
			write:   func(io.Writer) error { return assert.AnError },
			wantErr: true,
		},
		{
			name:    "missing directory",
			path:    filepath.Join(dir, "missing", "out.json"),
			write:   func(io.Writer) error { return nil },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := writeWithFile(tt.path, tt.write, "Wrote test output")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.path != "" {
				content, err := os.ReadFile(tt.path)
				require.NoError(t, err)
				assert.Equal(t, tt.want, string(content))
			}
		})
	}
}

func TestOptionalFormatters(t *testing.T) {
	fmtFloat, _ := createFormatters(1)
	hours := 5
	at := "2026-03-01T12:00:00Z"
	value := 4.26

	assert.Equal(t, "", optionalInt(nil))
	assert.Equal(t, "5", optionalInt(&hours))
	assert.Equal(t, "", optionalString(nil))
	assert.Equal(t, at, optionalString(&at))
	assert.Equal(t, "", optionalFloat(nil, fmtFloat))
	assert.Equal(t, "4.3", optionalFloat(&value, fmtFloat))
}
