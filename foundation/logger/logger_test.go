package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/logger"
)

func Test_ServiceField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")

	log, err := logger.New("NODE", path)
	if err != nil {
		t.Fatalf("Should be able to construct a logger: %s", err)
	}

	log.Infow("startup", "status", "initializing")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Should be able to read the log file: %s", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("Should write a json log entry: %s", err)
	}

	if entry["service"] != "NODE" || entry["msg"] != "startup" || entry["status"] != "initializing" {
		t.Fatalf("Should carry the service field, got %v.", entry)
	}
}
