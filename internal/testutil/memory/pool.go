package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/constants"
)

// Pool imitates a connection pool over schema-scoped row counters. Each
// checked-out Conn tracks its own search_path the way a PostgreSQL session
// does, and unqualified table names resolve against it.
type Pool struct {
	mu         sync.Mutex
	counts     map[string]map[string]int64
	acquired   int
	released   int
	discarded  int
	statements []string
	// FailReset makes RESET search_path fail on every connection.
	FailReset bool
}

func NewPool() *Pool {
	return &Pool{counts: map[string]map[string]int64{}}
}

func (p *Pool) SetCount(schema, table string, n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.counts[schema] == nil {
		p.counts[schema] = map[string]int64{}
	}
	p.counts[schema][table] = n
}

func (p *Pool) CountIn(schema, table string) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[schema][table]
}

func (p *Pool) Acquisitions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired
}

// Outstanding is the number of connections neither released nor discarded.
func (p *Pool) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired - p.released - p.discarded
}

func (p *Pool) Discarded() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.discarded
}

func (p *Pool) Statements() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.statements...)
}

func (p *Pool) record(sql string) {
	p.mu.Lock()
	p.statements = append(p.statements, sql)
	p.mu.Unlock()
}

func (p *Pool) Acquire(ctx context.Context) (composables.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.acquired++
	p.mu.Unlock()
	return &Conn{pool: p, searchPath: constants.SharedSchema}, nil
}

func (p *Pool) Begin(ctx context.Context) (pgx.Tx, error) {
	return NewTx(), nil
}

func (p *Pool) Ping(ctx context.Context) error {
	return nil
}

func (p *Pool) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errNoSQL
}

func (p *Pool) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return errBatch{}
}

func (p *Pool) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	p.record(sql)
	return pgconn.CommandTag{}, errNoSQL
}

func (p *Pool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	p.record(sql)
	return nil, errNoSQL
}

func (p *Pool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	p.record(sql)
	return errRow{}
}

type Conn struct {
	pool       *Pool
	mu         sync.Mutex
	searchPath string
}

func (c *Conn) SearchPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchPath
}

func (c *Conn) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	c.pool.record(sql)
	switch {
	case strings.HasPrefix(sql, "SELECT set_config('search_path'"):
		path, _ := arguments[0].(string)
		c.mu.Lock()
		c.searchPath = strings.Trim(path, `"`)
		c.mu.Unlock()
		return pgconn.NewCommandTag("SELECT 1"), nil
	case sql == "RESET search_path":
		if c.pool.FailReset {
			return pgconn.CommandTag{}, fmt.Errorf("memory: connection lost")
		}
		c.mu.Lock()
		c.searchPath = constants.SharedSchema
		c.mu.Unlock()
		return pgconn.NewCommandTag("RESET"), nil
	case strings.HasPrefix(sql, "INSERT INTO "):
		table := strings.Fields(strings.TrimPrefix(sql, "INSERT INTO "))[0]
		schema := c.SearchPath()
		c.pool.mu.Lock()
		if c.pool.counts[schema] == nil {
			c.pool.counts[schema] = map[string]int64{}
		}
		c.pool.counts[schema][table]++
		c.pool.mu.Unlock()
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return pgconn.CommandTag{}, errNoSQL
}

// QueryRow answers SELECT COUNT(*) FROM <table> for the current search_path.
func (c *Conn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	c.pool.record(sql)
	const prefix = "SELECT COUNT(*) FROM "
	if !strings.HasPrefix(sql, prefix) {
		return errRow{}
	}
	table := strings.Fields(strings.TrimPrefix(sql, prefix))[0]
	if strings.Contains(table, ".") {
		return errRow{}
	}
	n := c.pool.CountIn(c.SearchPath(), table)
	return countRow(n)
}

func (c *Conn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	c.pool.record(sql)
	return nil, errNoSQL
}

func (c *Conn) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errNoSQL
}

func (c *Conn) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return errBatch{}
}

func (c *Conn) Begin(ctx context.Context) (pgx.Tx, error) {
	return NewTx(), nil
}

func (c *Conn) Release() {
	c.pool.mu.Lock()
	c.pool.released++
	c.pool.mu.Unlock()
}

func (c *Conn) Discard(ctx context.Context) error {
	c.pool.mu.Lock()
	c.pool.discarded++
	c.pool.mu.Unlock()
	return nil
}

type countRow int64

func (r countRow) Scan(dest ...any) error {
	if len(dest) != 1 {
		return fmt.Errorf("memory: expected 1 scan target, got %d", len(dest))
	}
	switch v := dest[0].(type) {
	case *int64:
		*v = int64(r)
	case *int:
		*v = int(r)
	default:
		return fmt.Errorf("memory: unsupported scan target %T", dest[0])
	}
	return nil
}
