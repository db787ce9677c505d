package history

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"

	"vrt/internal/domain"
)

// Recorder stores run summaries in a MySQL table so regressions can be
// tracked across runs. It is optional: without a configured DSN every
// call is a no-op.
type Recorder struct {
	dsn string
}

// NewRecorder creates a Recorder from the environment. VRT_HISTORY_DSN
// takes a full DSN; otherwise one is assembled from DB_HOST, DB_PORT,
// DB_USERNAME, DB_PASSWORD and DB_DATABASE when DB_DATABASE is set.
// The .env file has already been loaded by the config package.
func NewRecorder() *Recorder {
	if dsn := os.Getenv("VRT_HISTORY_DSN"); dsn != "" {
		return &Recorder{dsn: dsn}
	}

	dbName := os.Getenv("DB_DATABASE")
	if dbName == "" {
		return &Recorder{}
	}

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "127.0.0.1"
	}
	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "3306"
	}
	dbUser := os.Getenv("DB_USERNAME")
	if dbUser == "" {
		dbUser = "root"
	}
	dbPassword := os.Getenv("DB_PASSWORD")

	return &Recorder{
		dsn: fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", dbUser, dbPassword, dbHost, dbPort, dbName),
	}
}

// Enabled reports whether run history recording is configured.
func (r *Recorder) Enabled() bool {
	return r.dsn != ""
}

// Record inserts a summary row for the finished run, creating the
// history table on first use.
func (r *Recorder) Record(report *domain.Report) error {
	if !r.Enabled() {
		return nil
	}

	db, err := sql.Open("mysql", r.dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to history database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping history database: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS render_test_runs (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		suite VARCHAR(255) NOT NULL,
		total_cases INT NOT NULL,
		passed INT NOT NULL,
		failed_diff INT NOT NULL,
		failed_process INT NOT NULL,
		missing_reference INT NOT NULL,
		duration_seconds DOUBLE NOT NULL,
		workers INT NOT NULL,
		started_at VARCHAR(64) NOT NULL,
		finished_at VARCHAR(64) NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}

	meta := report.Meta
	_, err = db.Exec(
		`INSERT INTO render_test_runs
		(suite, total_cases, passed, failed_diff, failed_process, missing_reference, duration_seconds, workers, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.Suite, meta.TotalCases, meta.Passed, meta.FailedDiff, meta.FailedProcess,
		meta.MissingReference, meta.DurationSeconds, meta.Workers, meta.StartedAt, meta.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run summary: %w", err)
	}
	return nil
}
