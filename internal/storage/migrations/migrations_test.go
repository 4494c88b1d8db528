package migrations

import (
	"io/fs"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	input := `-- header comment
CREATE TABLE a (x UInt8) ENGINE = Memory;

-- second
CREATE TABLE b (y String) ENGINE = Memory;
`
	stmts := splitStatements(input)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if stmts[1] != "CREATE TABLE b (y String) ENGINE = Memory" {
		t.Errorf("unexpected second statement %q", stmts[1])
	}
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	if err := validateNoSemicolonInStrings("SELECT 'a''b'; SELECT 1;"); err != nil {
		t.Errorf("escaped quote should be accepted: %v", err)
	}
	if err := validateNoSemicolonInStrings("SELECT 'a;b';"); err == nil {
		t.Error("semicolon in literal should be rejected")
	}
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default:@localhost:9000/lotto")
	if err != nil {
		t.Fatalf("databaseFromDSN failed: %v", err)
	}
	if db != "lotto" {
		t.Errorf("expected lotto, got %q", db)
	}
	if _, err := databaseFromDSN("clickhouse://localhost:9000"); err == nil {
		t.Error("dsn without database should fail")
	}
}

func TestEmbeddedMigrationsAreOrdered(t *testing.T) {
	for _, tc := range []struct {
		fsys fs.FS
		dir  string
	}{
		{PostgresFS, "postgres"},
		{ClickhouseFS, "clickhouse"},
	} {
		files, err := sqlFiles(tc.fsys, tc.dir)
		if err != nil {
			t.Fatalf("sqlFiles(%s) failed: %v", tc.dir, err)
		}
		if len(files) == 0 {
			t.Errorf("no embedded %s migrations", tc.dir)
		}
		for i := 1; i < len(files); i++ {
			if files[i] <= files[i-1] {
				t.Errorf("%s migrations not sorted: %v", tc.dir, files)
			}
		}
		for _, f := range files {
			data, _ := fs.ReadFile(tc.fsys, tc.dir+"/"+f)
			if err := validateNoSemicolonInStrings(string(data)); err != nil {
				t.Errorf("%s/%s: %v", tc.dir, f, err)
			}
		}
	}
}

func TestPendingFiles(t *testing.T) {
	files := []string{"001_draws.sql", "002_optimization_runs.sql", "003_next.sql"}
	got := pendingFiles(files, map[string]bool{"001_draws.sql": true})
	if len(got) != 2 || got[0] != "002_optimization_runs.sql" || got[1] != "003_next.sql" {
		t.Errorf("unexpected pending files %v", got)
	}
	if got := pendingFiles(files, map[string]bool{"001_draws.sql": true, "002_optimization_runs.sql": true, "003_next.sql": true}); len(got) != 0 {
		t.Errorf("expected nothing pending, got %v", got)
	}
}
