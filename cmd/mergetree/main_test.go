package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/vegasq/mergetree/deletionvector"
	"github.com/vegasq/mergetree/internal/predicate"
	"github.com/vegasq/mergetree/options"
	"github.com/vegasq/mergetree/output"
)

// changelogRow is one record of an orders changelog file.
type changelogRow struct {
	OrderID int64   `parquet:"order_id"`
	Qty     int64   `parquet:"qty"`
	Price   float64 `parquet:"price"`
	Status  string  `parquet:"status"`
	Seq     int64   `parquet:"_SEQUENCE_NUMBER"`
	Kind    string  `parquet:"_VALUE_KIND"`
}

const ordersTable = `
name: orders
primary-key: [order_id]
fields:
  - name: order_id
    type: BIGINT
  - name: qty
    type: BIGINT
  - name: price
    type: DOUBLE
  - name: status
    type: STRING
options:
  merge-engine: aggregation
  aggregation.remove-record-on-delete: "true"
  fields.qty.aggregate-function: sum
  fields.price.aggregate-function: max
  fields.price.ignore-retract: "true"
`

// createChangelog writes rows to a parquet file in dir.
func createChangelog(t *testing.T, dir, filename string, rows []changelogRow) string {
	t.Helper()
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	require.NoError(t, err)

	writer := parquet.NewGenericWriter[changelogRow](f)
	_, err = writer.Write(rows)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, f.Close())

	return path
}

type fixture struct {
	dir   string
	table string
	first string
	other string
}

// newFixture writes the orders table and two changelog files:
//
//	order 1: +I qty 2, +I qty 3 status paid
//	order 2: +I qty 5, -U qty 1
//	order 3: +I, -D
func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()

	table := filepath.Join(dir, "orders.yaml")
	require.NoError(t, os.WriteFile(table, []byte(ordersTable), 0o644))

	return fixture{
		dir:   dir,
		table: table,
		first: createChangelog(t, dir, "orders-1.parquet", []changelogRow{
			{OrderID: 1, Qty: 2, Price: 10, Status: "new", Seq: 1, Kind: "+I"},
			{OrderID: 2, Qty: 5, Price: 3, Status: "new", Seq: 2, Kind: "+I"},
			{OrderID: 1, Qty: 3, Price: 12, Status: "paid", Seq: 3, Kind: "+I"},
		}),
		other: createChangelog(t, dir, "orders-2.parquet", []changelogRow{
			{OrderID: 2, Qty: 1, Price: 3, Status: "new", Seq: 4, Kind: "-U"},
			{OrderID: 3, Qty: 7, Price: 1, Status: "new", Seq: 5, Kind: "+I"},
			{OrderID: 3, Qty: 7, Price: 1, Status: "new", Seq: 6, Kind: "-D"},
		}),
	}
}

// execute runs the command line args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	saved := newLogger
	newLogger = func(bool) (*zap.Logger, error) { return zaptest.NewLogger(t), nil }
	t.Cleanup(func() { newLogger = saved })

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCompact(t *testing.T) {
	f := newFixture(t)

	got, err := execute(t, "compact", "--table", f.table, "--format", "csv", f.first, f.other)
	require.NoError(t, err)

	assert.Equal(t, "order_id,qty,price,status\n1,5,12,paid\n2,4,3,\n", got)
}

func TestCompact_Glob(t *testing.T) {
	f := newFixture(t)

	got, err := execute(t, "compact", "-t", f.table, "-f", "csv", filepath.Join(f.dir, "orders-*.parquet"))
	require.NoError(t, err)

	assert.Equal(t, "order_id,qty,price,status\n1,5,12,paid\n2,4,3,\n", got)
}

func TestCompact_JSONL(t *testing.T) {
	f := newFixture(t)

	got, err := execute(t, "compact", "--table", f.table, f.first, f.other)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(got), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, map[string]interface{}{
		"order_id": 1.0,
		"qty":      5.0,
		"price":    12.0,
		"status":   "paid",
	}, first)

	var second map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Nil(t, second["status"], "retracted last_non_null_value")
}

func TestCompact_Where(t *testing.T) {
	f := newFixture(t)

	// The retraction of order 2 is filtered out, so its insert stands.
	got, err := execute(t, "compact", "--table", f.table, "--format", "csv",
		"--where", "_VALUE_KIND = '+I'", f.first, f.other)
	require.NoError(t, err)

	assert.Equal(t, "order_id,qty,price,status\n1,5,12,paid\n2,5,3,new\n3,7,1,new\n", got)
}

func TestCompact_DeletionVectorStore(t *testing.T) {
	f := newFixture(t)
	store := filepath.Join(f.dir, "dv.db")

	got, err := execute(t, "compact", "--table", f.table, "--format", "csv", "--dv-store", store, f.first, f.other)
	require.NoError(t, err)
	assert.Equal(t, "order_id,qty,price,status\n1,5,12,paid\n2,4,3,\n", got)

	// Every row was consumed by the first run.
	got, err = execute(t, "compact", "--table", f.table, "--format", "csv", "--dv-store", store, f.first, f.other)
	require.NoError(t, err)
	assert.Empty(t, got)

	third := createChangelog(t, f.dir, "orders-3.parquet", []changelogRow{
		{OrderID: 1, Qty: 1, Price: 20, Status: "shipped", Seq: 7, Kind: "+I"},
	})
	got, err = execute(t, "compact", "--table", f.table, "--format", "csv", "--dv-store", store, f.first, f.other, third)
	require.NoError(t, err)
	assert.Equal(t, "order_id,qty,price,status\n1,1,20,shipped\n", got)

	dvs, err := deletionvector.OpenStore(zaptest.NewLogger(t), store)
	require.NoError(t, err)
	defer func() { require.NoError(t, dvs.Close()) }()

	files, err := dvs.Files(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{f.first, f.other, third}, files)

	dv, err := dvs.Get(context.Background(), f.first)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2}, dv.Positions())
}

func TestCompact_Errors(t *testing.T) {
	f := newFixture(t)

	t.Run("missing table flag", func(t *testing.T) {
		_, err := execute(t, "compact", f.first)
		require.Error(t, err)
	})

	t.Run("no files", func(t *testing.T) {
		_, err := execute(t, "compact", "--table", f.table)
		require.Error(t, err)
	})

	t.Run("bad table", func(t *testing.T) {
		bad := filepath.Join(f.dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("name: bad\nfields: []\n"), 0o644))
		_, err := execute(t, "compact", "--table", bad, f.first)
		require.Error(t, err)
		assert.True(t, options.Error.Has(err))
	})

	t.Run("bad where", func(t *testing.T) {
		_, err := execute(t, "compact", "--table", f.table, "--where", "qty >", f.first)
		require.Error(t, err)
		assert.True(t, predicate.Error.Has(err))
	})

	t.Run("where type mismatch", func(t *testing.T) {
		_, err := execute(t, "compact", "--table", f.table, "--where", "status > 1", f.first)
		require.Error(t, err)
		assert.True(t, predicate.Error.Has(err))
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := execute(t, "compact", "--table", f.table, "--format", "xml", f.first)
		require.Error(t, err)
		assert.True(t, output.Error.Has(err))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "compact", "--table", f.table, f.first, filepath.Join(f.dir, "missing.parquet"))
		require.Error(t, err)
	})
}

func decodeLines(t *testing.T, out string) []map[string]interface{} {
	t.Helper()

	var rows []map[string]interface{}
	decoder := json.NewDecoder(strings.NewReader(out))
	for decoder.More() {
		var row map[string]interface{}
		require.NoError(t, decoder.Decode(&row))
		rows = append(rows, row)
	}
	return rows
}

func TestInspect(t *testing.T) {
	f := newFixture(t)

	got, err := execute(t, "inspect", "--where", "qty > 2", f.first)
	require.NoError(t, err)

	rows := decodeLines(t, got)
	require.Len(t, rows, 2)
	assert.Equal(t, 1.0, rows[0][rowPositionColumn])
	assert.Equal(t, 2.0, rows[0]["order_id"])
	assert.Equal(t, 2.0, rows[1][rowPositionColumn])
	assert.Equal(t, "paid", rows[1]["status"])
	assert.Equal(t, "+I", rows[1]["_VALUE_KIND"])
	assert.NotContains(t, rows[0], fileColumn)
}

func TestInspect_MultipleFiles(t *testing.T) {
	f := newFixture(t)

	got, err := execute(t, "inspect", f.first, f.other)
	require.NoError(t, err)

	rows := decodeLines(t, got)
	require.Len(t, rows, 6)
	assert.Equal(t, f.first, rows[0][fileColumn])
	assert.Equal(t, f.other, rows[3][fileColumn])
	assert.Equal(t, 0.0, rows[3][rowPositionColumn])
	assert.Equal(t, "-D", rows[5]["_VALUE_KIND"])
}

func TestInspect_DeletionVectorStore(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.dir, "dv.db")

	store, err := deletionvector.OpenStore(zaptest.NewLogger(t), path)
	require.NoError(t, err)
	builder := deletionvector.NewBuilder()
	require.NoError(t, builder.Delete(f.first, 0))
	require.NoError(t, builder.Delete(f.first, 2))
	require.NoError(t, store.MergeAll(context.Background(), builder))
	require.NoError(t, store.Close())

	got, err := execute(t, "inspect", "--dv-store", path, f.first)
	require.NoError(t, err)

	rows := decodeLines(t, got)
	require.Len(t, rows, 1)
	assert.Equal(t, 1.0, rows[0][rowPositionColumn])
}

func TestSchema(t *testing.T) {
	f := newFixture(t)

	got, err := execute(t, "schema", "--format", "csv", f.first)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(got), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "name,type,physical_type,logical_type,optional,repeated", lines[0])

	byName := make(map[string]string)
	for _, line := range lines[1:] {
		name, rest, _ := strings.Cut(line, ",")
		byName[name] = rest
	}
	assert.True(t, strings.HasPrefix(byName["order_id"], "BIGINT,INT64,"), byName["order_id"])
	assert.True(t, strings.HasPrefix(byName["status"], "STRING,BYTE_ARRAY,"), byName["status"])
	assert.True(t, strings.HasPrefix(byName["price"], "DOUBLE,DOUBLE,"), byName["price"])
	assert.True(t, strings.HasSuffix(byName["qty"], ",false,false"), byName["qty"])
}
