package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/me/sheetsync/pkg/model"
)

// jobFile is the YAML form of a sync job. The service-account key is
// either inline under credentials or read from credentials_file, which is
// resolved relative to the job file.
type jobFile struct {
	model.AutoSyncRequest `yaml:",inline"`
	CredentialsFile       string `yaml:"credentials_file"`
}

// loadJob reads a job file and resolves its credentials.
func loadJob(path string) (*model.AutoSyncRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}

	var job jobFile
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parse job file %s: %w", path, err)
	}
	if job.SpreadsheetID == "" {
		return nil, fmt.Errorf("job file %s: spreadsheet_id is required", path)
	}

	if job.CredentialsFile != "" {
		if job.Credentials != nil {
			return nil, fmt.Errorf("job file %s: set credentials or credentials_file, not both", path)
		}
		credPath := job.CredentialsFile
		if !filepath.IsAbs(credPath) {
			credPath = filepath.Join(filepath.Dir(path), credPath)
		}
		raw, err := os.ReadFile(credPath)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		var creds model.Credentials
		if err := json.Unmarshal(raw, &creds); err != nil {
			return nil, fmt.Errorf("parse credentials file %s: %w", credPath, err)
		}
		job.Credentials = &creds
	}
	if job.Credentials == nil {
		return nil, fmt.Errorf("job file %s: credentials or credentials_file is required", path)
	}

	req := job.AutoSyncRequest
	return &req, nil
}
