package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dompetku/internal/model"
)

// runCLI executes one dompetku invocation against the database at db.
func runCLI(t *testing.T, db, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db", db, "--env-file", "", "--log-level", "error"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, db, "", args...)
	require.NoError(t, err, out)
	return out
}

func newWorkspace(t *testing.T) (db, dir string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("HOME", dir)
	return filepath.Join(dir, "data", "dompetku.db"), dir
}

func TestLedgerWorkflow(t *testing.T) {
	db, dir := newWorkspace(t)

	out := mustRun(t, db, "categories", "add", "Kopi", "--color", "#112233")
	assert.Contains(t, out, `Created category "Kopi"`)
	assert.Contains(t, mustRun(t, db, "categories", "list"), "Kopi")

	mustRun(t, db, "tx", "add", "Es kopi", "25.000", "-c", "Kopi", "--date", "2024-02-10", "--note", "susu")
	mustRun(t, db, "tx", "add", "Gaji", "1.000.000", "--type", "income", "--date", "2024-02-01")

	out = mustRun(t, db, "tx", "list", "--month", "2024-02")
	assert.Contains(t, out, "Es kopi")
	assert.Contains(t, out, "-Rp 25.000")
	assert.Contains(t, out, "+Rp 1.000.000")
	assert.Contains(t, out, "2 of 2 transaction(s)")

	out = mustRun(t, db, "tx", "list", "--search", "SUSU")
	assert.Contains(t, out, "Es kopi")
	assert.NotContains(t, out, "Gaji")

	out = mustRun(t, db, "stats", "--month", "2024-02")
	assert.Contains(t, out, "Rp 975.000")
	assert.Contains(t, out, "Kopi")

	mustRun(t, db, "savings", "set", "20")
	out = mustRun(t, db, "savings", "show", "--month", "2024-02")
	assert.Contains(t, out, "Rp 200.000")
	assert.Contains(t, out, "Reached")

	out = mustRun(t, db, "categories", "delete", "Kopi")
	assert.Contains(t, out, "Moved 1 transaction(s)")
	assert.Contains(t, mustRun(t, db, "tx", "list", "-c", model.DefaultCategoryName), "Es kopi")

	backupPath := filepath.Join(dir, "backups", "ledger.json")
	out = mustRun(t, db, "export", backupPath)
	assert.Contains(t, out, "Exported 2 transaction(s)")

	mustRun(t, db, "reset", "--force")
	assert.Contains(t, mustRun(t, db, "tx", "list"), "No transactions found")

	out = mustRun(t, db, "import", backupPath)
	assert.Contains(t, out, "Replaced data with 2 transaction(s)")
	assert.Contains(t, mustRun(t, db, "tx", "list"), "Gaji")
}

func TestTransactionCommandErrors(t *testing.T) {
	db, _ := newWorkspace(t)

	tests := []struct {
		name string
		args []string
	}{
		{"zero amount", []string{"tx", "add", "Kopi", "0"}},
		{"unparseable amount", []string{"tx", "add", "Kopi", "lima"}},
		{"unknown category", []string{"tx", "add", "Kopi", "5000", "-c", "Tidak ada"}},
		{"unknown type", []string{"tx", "add", "Kopi", "5000", "--type", "transfer"}},
		{"bad date", []string{"tx", "add", "Kopi", "5000", "--date", "10/02/2024"}},
		{"unknown sort", []string{"tx", "list", "--sort", "name"}},
		{"missing transaction", []string{"tx", "delete", "nope"}},
		{"protected category", []string{"categories", "delete", model.DefaultCategoryName}},
		{"savings out of range", []string{"savings", "set", "150"}},
		{"invalid backup", []string{"import", "does-not-exist.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, db, "", tt.args...)
			assert.Error(t, err)
		})
	}

	assert.Contains(t, mustRun(t, db, "tx", "list"), "No transactions found")
}

func TestResetPromptsForConfirmation(t *testing.T) {
	db, _ := newWorkspace(t)
	mustRun(t, db, "tx", "add", "Parkir", "5000", "-c", "Transport")

	out, err := runCLI(t, db, "n\n", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset cancelled")
	assert.Contains(t, mustRun(t, db, "tx", "list"), "Parkir")

	out, err = runCLI(t, db, "y\n", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "All data deleted")
	assert.Contains(t, mustRun(t, db, "tx", "list"), "No transactions found")
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{input: "35000", want: 35000},
		{input: "35.000", want: 35000},
		{input: "Rp 1.250.000", want: 1250000},
		{input: "1.250.000,50", want: 1250000.5},
		{input: "12.5", want: 12.5},
		{input: "-5000", want: -5000},
		{input: "lima ribu", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestParseType(t *testing.T) {
	for in, want := range map[string]model.TransactionType{
		"":            model.TransactionTypeExpense,
		"OUT":         model.TransactionTypeExpense,
		"pengeluaran": model.TransactionTypeExpense,
		"income":      model.TransactionTypeIncome,
		"Pemasukan":   model.TransactionTypeIncome,
	} {
		got, err := parseType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseType("transfer")
	assert.Error(t, err)
}

func TestDateHelpers(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01", resolveDate("today", now))
	assert.Equal(t, "2024-02-29", resolveDate("yesterday", now))
	assert.Equal(t, "2024-01-05", resolveDate(" 2024-01-05 ", now))

	r, err := monthRange("2024-02")
	require.NoError(t, err)
	assert.Equal(t, model.DateRange{From: "2024-02-01", To: "2024-02-29"}, r)
	assert.Equal(t, "2024-02", describeRange(r))
	assert.Equal(t, "2024-02-01 s/d 2024-02-10", describeRange(model.DateRange{From: "2024-02-01", To: "2024-02-10"}))
	assert.Equal(t, "semua waktu", describeRange(model.DateRange{}))

	_, err = monthRange("Feb 2024")
	assert.Error(t, err)
}

func TestFindCategory(t *testing.T) {
	cats := []model.Category{{ID: "c1", Name: "Makanan"}, {ID: "c2", Name: "Transport"}}
	assert.Equal(t, "c1", findCategory(cats, "Makanan").ID)
	assert.Equal(t, "Transport", findCategory(cats, "c2").Name)
	assert.Nil(t, findCategory(cats, "Hiburan"))
}
