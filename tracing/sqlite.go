package tracing

import (
	"database/sql"
	"fmt"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// SQLiteTraceWriter is a writer that writes trace data to a SQLite database.
type SQLiteTraceWriter struct {
	*sql.DB
	taskStatement   *sql.Stmt
	accessStatement *sql.Stmt

	dbName    string
	tasks     []Task
	accesses  []AccessEntry
	batchSize int
}

// NewSQLiteTraceWriter creates a new SQLiteTraceWriter. The database file is
// path with a ".sqlite3" suffix. An empty path picks a unique name.
func NewSQLiteTraceWriter(path string) *SQLiteTraceWriter {
	w := &SQLiteTraceWriter{
		dbName:    path,
		batchSize: 100000,
	}

	atexit.Register(func() { w.Flush() })

	return w
}

// FileName returns the name of the database file.
func (t *SQLiteTraceWriter) FileName() string {
	return t.dbName + ".sqlite3"
}

// Init establishes a connection to the database.
func (t *SQLiteTraceWriter) Init() {
	if t.dbName == "" {
		t.dbName = "lmdma_trace_" + xid.New().String()
	}

	filename := t.FileName()

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	fmt.Fprintf(os.Stderr, "Database created for tracing: %s\n", filename)

	t.DB = db

	t.createTables()
	t.prepareStatements()
}

func (t *SQLiteTraceWriter) createTables() {
	t.mustExecute(`
		CREATE TABLE trace (
			task_id    VARCHAR(200) NOT NULL,
			parent_id  VARCHAR(200),
			kind       VARCHAR(100),
			what       VARCHAR(100),
			location   VARCHAR(100),
			start_time FLOAT,
			end_time   FLOAT,
			steps      INTEGER
		);`)
	t.mustExecute(`
		CREATE TABLE register_access (
			time     FLOAT,
			location VARCHAR(100),
			kind     VARCHAR(10),
			reg_name VARCHAR(20),
			value    INTEGER,
			ordered  BOOLEAN
		);`)
	t.mustExecute(`CREATE INDEX trace_kind ON trace (kind);`)
	t.mustExecute(`CREATE INDEX access_register ON register_access (reg_name);`)
}

func (t *SQLiteTraceWriter) prepareStatements() {
	stmt, err := t.Prepare(`INSERT INTO trace VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		panic(err)
	}
	t.taskStatement = stmt

	stmt, err = t.Prepare(`INSERT INTO register_access VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		panic(err)
	}
	t.accessStatement = stmt
}

// Write buffers a task.
func (t *SQLiteTraceWriter) Write(task Task) {
	t.tasks = append(t.tasks, task)
	if len(t.tasks)+len(t.accesses) >= t.batchSize {
		t.Flush()
	}
}

// WriteAccess buffers a register access.
func (t *SQLiteTraceWriter) WriteAccess(entry AccessEntry) {
	t.accesses = append(t.accesses, entry)
	if len(t.tasks)+len(t.accesses) >= t.batchSize {
		t.Flush()
	}
}

// Flush writes all the buffered data to the database.
func (t *SQLiteTraceWriter) Flush() {
	if t.DB == nil || len(t.tasks)+len(t.accesses) == 0 {
		return
	}

	t.mustExecute("BEGIN TRANSACTION")
	defer t.mustExecute("COMMIT TRANSACTION")

	for _, task := range t.tasks {
		_, err := t.taskStatement.Exec(
			task.ID,
			task.ParentID,
			task.Kind,
			task.What,
			task.Location,
			task.StartTime,
			task.EndTime,
			len(task.Steps),
		)
		if err != nil {
			panic(err)
		}
	}

	for _, a := range t.accesses {
		_, err := t.accessStatement.Exec(
			a.Time, a.Location, a.Kind, a.Register, a.Value, a.Ordered)
		if err != nil {
			panic(err)
		}
	}

	t.tasks = nil
	t.accesses = nil
}

func (t *SQLiteTraceWriter) mustExecute(query string) sql.Result {
	res, err := t.Exec(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}
