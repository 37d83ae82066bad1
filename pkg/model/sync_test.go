package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSyncStatus_CloneDoesNotAlias(t *testing.T) {
	now := time.Now()
	rows := 5
	orig := SyncStatus{Phase: SyncPhaseCompleted, LastRunAt: &now, RowsSynced: &rows}

	cp := orig.Clone()
	*orig.RowsSynced = 99
	*orig.LastRunAt = now.Add(time.Hour)

	if *cp.RowsSynced != 5 {
		t.Errorf("clone RowsSynced = %d, want 5", *cp.RowsSynced)
	}
	if !cp.LastRunAt.Equal(now) {
		t.Errorf("clone LastRunAt changed with original")
	}
}

func TestTable_Records(t *testing.T) {
	tbl := &Table{
		Columns: []string{"name", "age"},
		Rows:    [][]string{{"ann", "31"}, {"bob", "42"}},
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tbl.Len())
	}
	recs := tbl.Records()
	if recs[1]["name"] != "bob" || recs[1]["age"] != "42" {
		t.Errorf("Records()[1] = %v", recs[1])
	}

	var nilTable *Table
	if nilTable.Len() != 0 {
		t.Error("nil table Len should be 0")
	}
}

func TestCredentials_MissingAndJSON(t *testing.T) {
	c := &Credentials{Type: "service_account", ClientEmail: "svc@example.iam.gserviceaccount.com"}
	missing := c.Missing()
	if len(missing) != 8 {
		t.Errorf("Missing() = %v, want 8 fields", missing)
	}

	data, err := c.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var decoded map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["type"] != "service_account" {
		t.Errorf("type = %q", decoded["type"])
	}
	if decoded["client_email"] != "svc@example.iam.gserviceaccount.com" {
		t.Errorf("client_email = %q", decoded["client_email"])
	}
}

func TestDBConfig_Target(t *testing.T) {
	c := DBConfig{Database: "analytics", TableName: "leads"}
	if c.Target() != "analytics.leads" {
		t.Errorf("Target = %q", c.Target())
	}
}
