package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Credentials is a Google service-account key as downloaded from the console.
type Credentials struct {
	Type                    string `json:"type" yaml:"type"`
	ProjectID               string `json:"project_id" yaml:"project_id"`
	PrivateKeyID            string `json:"private_key_id" yaml:"private_key_id"`
	PrivateKey              string `json:"private_key" yaml:"private_key"`
	ClientEmail             string `json:"client_email" yaml:"client_email"`
	ClientID                string `json:"client_id" yaml:"client_id"`
	AuthURI                 string `json:"auth_uri" yaml:"auth_uri"`
	TokenURI                string `json:"token_uri" yaml:"token_uri"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url" yaml:"auth_provider_x509_cert_url"`
	ClientX509CertURL       string `json:"client_x509_cert_url" yaml:"client_x509_cert_url"`
}

// JSON returns the key file encoding expected by Google auth libraries.
func (c *Credentials) JSON() ([]byte, error) {
	return json.Marshal(c)
}

// Missing lists the required key fields that are empty.
func (c *Credentials) Missing() []string {
	var missing []string
	required := []struct{ name, value string }{
		{"type", c.Type},
		{"project_id", c.ProjectID},
		{"private_key_id", c.PrivateKeyID},
		{"private_key", c.PrivateKey},
		{"client_email", c.ClientEmail},
		{"client_id", c.ClientID},
		{"auth_uri", c.AuthURI},
		{"token_uri", c.TokenURI},
		{"auth_provider_x509_cert_url", c.AuthProviderX509CertURL},
		{"client_x509_cert_url", c.ClientX509CertURL},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// DBConfig identifies the destination table of a sync.
// For sqlite, Database is the file path and Host/Port/User/Password are ignored.
type DBConfig struct {
	DBType    string `json:"db_type" yaml:"db_type"`
	Host      string `json:"host" yaml:"host"`
	Port      int    `json:"port" yaml:"port"`
	User      string `json:"user" yaml:"user"`
	Password  string `json:"password" yaml:"password"`
	Database  string `json:"database" yaml:"database"`
	TableName string `json:"table_name" yaml:"table_name"`
}

// Target returns "database.table" for log and response messages.
func (c DBConfig) Target() string {
	return fmt.Sprintf("%s.%s", c.Database, c.TableName)
}

// SyncJobSpec is the immutable configuration of the recurring job,
// captured when the job is started.
type SyncJobSpec struct {
	SourceID    string
	Credentials Credentials
	Sheet       string
	Destination DBConfig
	Interval    time.Duration
}

// Table is a rectangular dataset: a header row plus string cells.
// Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Records returns the rows as column-keyed maps.
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

// SyncStatus is the observable state of the most recent sync cycle.
type SyncStatus struct {
	Phase      SyncPhase  `json:"phase"`
	LastRunAt  *time.Time `json:"last_run_at"`
	RowsSynced *int       `json:"rows_synced"`
	Error      string     `json:"error,omitempty"`
}

// Clone returns a deep copy so callers never share pointers with the tracker.
func (s SyncStatus) Clone() SyncStatus {
	out := SyncStatus{Phase: s.Phase, Error: s.Error}
	if s.LastRunAt != nil {
		t := *s.LastRunAt
		out.LastRunAt = &t
	}
	if s.RowsSynced != nil {
		n := *s.RowsSynced
		out.RowsSynced = &n
	}
	return out
}

// RunRecord is one finished cycle in the in-memory run history.
type RunRecord struct {
	ID         string    `json:"id"`
	Trigger    Trigger   `json:"trigger"`
	SourceID   string    `json:"source_id"`
	Target     string    `json:"target"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Phase      SyncPhase `json:"phase"`
	Rows       int       `json:"rows"`
	Error      string    `json:"error,omitempty"`
}

// Duration returns how long the cycle took.
func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
