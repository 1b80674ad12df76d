package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabsplit-dev/tabsplit/internal/config"
	"github.com/tabsplit-dev/tabsplit/internal/model"
	"github.com/tabsplit-dev/tabsplit/internal/money"
	"github.com/tabsplit-dev/tabsplit/internal/plan"
	"github.com/tabsplit-dev/tabsplit/internal/split"
)

func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func usd(t *testing.T, v string) money.Money {
	t.Helper()
	m, err := money.Parse(v, "USD")
	require.NoError(t, err)
	return m
}

func writeFixtures(t *testing.T) (receiptPath, planPath string) {
	t.Helper()
	dir := t.TempDir()

	receipt := model.Receipt{
		Merchant: "Thai Garden",
		Items: []model.ReceiptItem{
			{ID: "i1", Name: "Pad Thai", Amount: usd(t, "20.00"), Quantity: 1},
			{ID: "i2", Name: "Curry", Amount: usd(t, "20.00"), Quantity: 1},
		},
		Tax:      usd(t, "4.00"),
		Tip:      usd(t, "6.00"),
		Total:    usd(t, "50.00"),
		Currency: "USD",
	}
	receiptPath = filepath.Join(dir, "receipt.json")
	require.NoError(t, plan.SaveReceipt(receiptPath, receipt))

	p := &plan.Plan{
		Participants: []model.Participant{
			{ID: "alice", Name: "Alice"},
			{ID: "bob", Name: "Bob"},
		},
		Assignments: map[string]split.ItemAssignment{
			"i1": {Sharers: []string{"alice"}},
			"i2": {Sharers: []string{"bob"}},
		},
	}
	planPath = filepath.Join(dir, "plan.yaml")
	require.NoError(t, plan.Save(planPath, p))

	return receiptPath, planPath
}

func TestInit_CreatesProject(t *testing.T) {
	dir := t.TempDir()
	out, _, err := runCommand(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized tabsplit project")

	cfg, err := config.Load(filepath.Join(dir, "tabsplit.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "receipts.db"), cfg.Storage.DBPath)

	p, err := plan.Load(filepath.Join(dir, "plans", "example.yaml"))
	require.NoError(t, err)
	assert.Len(t, p.Participants, 2)

	for _, d := range []string{"data", "receipts", "plans"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestSplit_PrintsShareTable(t *testing.T) {
	receiptPath, planPath := writeFixtures(t)

	out, _, err := runCommand(t, "split", receiptPath, "--plan", planPath)
	require.NoError(t, err)
	assert.Contains(t, out, "PARTICIPANT")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "bob")
	assert.Contains(t, out, "25.00 USD")
	assert.Contains(t, out, "50.00 USD")
}

func TestSplit_DetailedListsItems(t *testing.T) {
	receiptPath, planPath := writeFixtures(t)

	out, _, err := runCommand(t, "split", receiptPath, "--plan", planPath, "--detailed")
	require.NoError(t, err)
	assert.Contains(t, out, "Pad Thai")
	assert.Contains(t, out, "SHARED BY")
}

func TestSplit_JSONOutput(t *testing.T) {
	receiptPath, planPath := writeFixtures(t)

	out, _, err := runCommand(t, "split", receiptPath, "--plan", planPath, "--json")
	require.NoError(t, err)

	var breakdown model.SettlementBreakdown
	require.NoError(t, json.Unmarshal([]byte(out), &breakdown))
	assert.Equal(t, "25.00 USD", breakdown.Shares["alice"].TotalOwed.String())
}

func TestSplit_PayerPrintsTransfers(t *testing.T) {
	receiptPath, planPath := writeFixtures(t)

	out, _, err := runCommand(t, "split", receiptPath, "--plan", planPath, "--payer", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "FROM")
	assert.Contains(t, out, "bob")
}

func TestSplit_UnassignedItemFails(t *testing.T) {
	receiptPath, _ := writeFixtures(t)

	p := &plan.Plan{
		Participants: []model.Participant{{ID: "alice", Name: "Alice"}},
		Assignments: map[string]split.ItemAssignment{
			"i1": {Sharers: []string{"alice"}},
		},
	}
	planPath := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, plan.Save(planPath, p))

	_, _, err := runCommand(t, "split", receiptPath, "--plan", planPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "have not been assigned splits")
	assert.Contains(t, err.Error(), "Curry")
}

func TestSplit_RequiresPlanFlag(t *testing.T) {
	receiptPath, _ := writeFixtures(t)
	_, _, err := runCommand(t, "split", receiptPath)
	require.Error(t, err)
}

func TestImport_ParsesCSVToJSON(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "receipt.csv")
	csvData := "kind,name,amount,quantity\nitem,Coffee,4.00,1\ntax,,0.40,\ntotal,,4.40,\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csvData), 0o644))

	out, _, err := runCommand(t, "import", csvPath, "--merchant", "Cafe")
	require.NoError(t, err)

	var receipt model.Receipt
	require.NoError(t, json.Unmarshal([]byte(out), &receipt))
	assert.Equal(t, "Cafe", receipt.Merchant)
	assert.Equal(t, "4.40 USD", receipt.Total.String())
}

func TestImport_StoreAndList(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.DBPath = filepath.Join(dir, "receipts.db")
	configPath := filepath.Join(dir, "tabsplit.yaml")
	require.NoError(t, config.Save(configPath, cfg))

	csvPath := filepath.Join(dir, "receipt.csv")
	csvData := "kind,name,amount,quantity\nitem,Coffee,4.00,1\ntotal,,4.00,\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csvData), 0o644))

	out, _, err := runCommand(t, "--config", configPath, "import", csvPath, "--store", "--merchant", "Cafe")
	require.NoError(t, err)
	assert.Contains(t, out, "stored receipt")

	out, _, err = runCommand(t, "--config", configPath, "receipts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Cafe")
}

func TestReceipts_ListEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.DBPath = filepath.Join(dir, "receipts.db")
	configPath := filepath.Join(dir, "tabsplit.yaml")
	require.NoError(t, config.Save(configPath, cfg))

	out, _, err := runCommand(t, "--config", configPath, "receipts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no receipts stored")
}
