package internal

import (
	"path/filepath"
	"testing"

	"github.com/ChristianPRO1982/audio-splitter/testutil"
)

func TestOpenDatabase(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{
			name:    "in memory",
			path:    ":memory:",
			wantErr: false,
		},
		{
			name:    "new file",
			path:    filepath.Join(t.TempDir(), "audio-splitter.db"),
			wantErr: false,
		},
		{
			name:    "missing parent directory",
			path:    filepath.Join(t.TempDir(), "missing", "dir", "audio-splitter.db"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := OpenDatabase(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("OpenDatabase() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil {
				return
			}
			defer db.Close()

			for _, table := range []string{"projects", "exports"} {
				var name string
				err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
				if err != nil {
					t.Errorf("table %s missing after OpenDatabase: %v", table, err)
				}
			}
		})
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)

	for i := 0; i < 2; i++ {
		if err := Migrate(db); err != nil {
			t.Fatalf("Migrate() run %d error = %v", i+1, err)
		}
	}
}
