package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradejournal/internal/adapters/yamlfile"
)

const snapshotFixture = `
capital: "10000"
strategies:
  - id: s1
    name: Breakout
trades:
  - id: t1
    symbolName: AAPL
    positionType: buy
    openDate: "2024-03-10"
    openTime: "09:30"
    entryPrice: 100
    quantity: 10
    strategyId: s1
    closeEvents:
      - id: e1
        date: "2024-03-11"
        quantitySold: 4
        sellPrice: 110
        result: 40
  - id: t2
    symbolName: MSFT
    positionType: sell
    openDate: "2024-04-01"
    openTime: "10:00"
    entryPrice: 400
    quantity: 2
    closeDate: "2024-04-02"
    closeTime: "15:00"
    sellPrice: 390
    result: "20"
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func runWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seededDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	db := filepath.Join(dir, "journal.db")
	snap := filepath.Join(dir, "snap.yaml")
	require.NoError(t, os.WriteFile(snap, []byte(snapshotFixture), 0644))

	out, err := run(t, "--db", db, "--log-level", "error", "import", snap)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 trades, 1 strategies (0 skipped)")
	return db
}

func TestCalc(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"buy", []string{"calc", "--entry", "100", "--exit", "150", "--qty", "10"}, "500.00", false},
		{"sell", []string{"calc", "--entry", "100", "--exit", "150", "--qty", "10", "--side", "sell"}, "-500.00", false},
		{"sold overrides qty", []string{"calc", "--entry", "100", "--exit", "110", "--qty", "10", "--sold", "3"}, "30.00", false},
		{"bad side", []string{"calc", "--entry", "1", "--exit", "2", "--qty", "1", "--side", "long"}, "", true},
		{"missing qty", []string{"calc", "--entry", "1", "--exit", "2"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(out))
		})
	}
}

func TestImportIsIdempotent(t *testing.T) {
	db := seededDB(t)
	snap := filepath.Join(t.TempDir(), "again.yaml")
	require.NoError(t, os.WriteFile(snap, []byte(snapshotFixture), 0644))

	out, err := run(t, "--db", db, "--log-level", "error", "import", snap)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 0 trades, 0 strategies (3 skipped)")
}

func TestTradesAndSummary(t *testing.T) {
	db := seededDB(t)

	out, err := run(t, "--db", db, "trades", "open")
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL")
	assert.NotContains(t, out, "MSFT")
	assert.Contains(t, out, "40.00")

	out, err = run(t, "--db", db, "trades", "closed")
	require.NoError(t, err)
	assert.Contains(t, out, "MSFT")
	assert.Contains(t, out, "20.00")

	_, err = run(t, "--db", db, "trades", "pending")
	assert.Error(t, err)

	out, err = run(t, "--db", db, "summary", "--group-by", "month")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "3-2024"))
	assert.True(t, strings.HasPrefix(lines[2], "4-2024"))

	out, err = run(t, "--db", db, "summary", "--group-by", "total")
	require.NoError(t, err)
	assert.Contains(t, out, "60.00")

	_, err = run(t, "--db", db, "summary", "--group-by", "week")
	assert.Error(t, err)

	out, err = run(t, "--db", db, "winloss")
	require.NoError(t, err)
	assert.Contains(t, out, "11-03-2024")
	assert.Contains(t, out, "02-04-2024")

	out, err = run(t, "--db", db, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, `"totalCloses": 2`)
}

func TestExport(t *testing.T) {
	db := seededDB(t)
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "out.yaml")
	_, err := run(t, "--db", db, "export", "--format", "yaml", "--out", yamlPath)
	require.NoError(t, err)
	doc, err := yamlfile.Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "10000", doc.Capital)
	assert.Len(t, doc.Trades, 2)
	assert.Len(t, doc.Strategies, 1)

	out, err := run(t, "--db", db, "export", "--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "t2,MSFT,sell"))

	_, err = run(t, "--db", db, "export", "--format", "xml")
	assert.Error(t, err)
}

func TestCalcWatch(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr string
	}{
		{
			name:  "auto result after edits settle",
			input: "entry=100\nexit=150\nqty=10\n",
			want:  []string{"result: 500.00", "final: 500.00 (auto)"},
		},
		{
			name:  "typed result switches to manual",
			input: "entry=100\nexit=150\nqty=10\nresult=42\nexit=200\n",
			want:  []string{"mode: manual", "final: 42 (manual)"},
		},
		{
			name:  "reset returns to auto",
			input: "result=42\nreset\nside=sell\nentry=100\nexit=150\nqty=10\n",
			want:  []string{"mode: auto", "final: -500.00 (auto)"},
		},
		{
			name:    "unknown field",
			input:   "price=100\n",
			wantErr: "unknown field",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := filepath.Join(t.TempDir(), "journal.db")
			out, err := runWithInput(t, tt.input, "--db", db, "--log-level", "error", "calc", "--watch")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}
