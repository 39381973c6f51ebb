// Package reader provides pull-based record iteration with row positions.
//
// A PositionIterator yields the records of one batch together with the
// zero-based position, within the source file, of the record the next call
// to Next will return. Positions let downstream consumers such as deletion
// vector builders refer to rows without reading them again.
//
// # Basic Usage
//
// Draining a parquet file batch by batch:
//
//	r, err := reader.Open(ctx, "data.parquet", reader.DefaultBatchSize)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	err = reader.ForEachRemainingWithPosition(r, func(pos int64, row map[string]interface{}) error {
//	    fmt.Printf("%d: %v\n", pos, row)
//	    return nil
//	})
//
// # Composition
//
// Transform and Filter wrap an iterator without losing position tracking:
//
//	it = reader.Filter(it, func(row map[string]interface{}) bool {
//	    return row["status"] == "active"
//	})
//	names := reader.Transform(it, func(row map[string]interface{}) string {
//	    return row["name"].(string)
//	})
//
// # Resource Management
//
// Records returned by a batch stay valid until ReleaseBatch is called on
// it; the file reader recycles the batch buffer afterwards. Wrappers never
// own buffers, they forward ReleaseBatch to their source.
//
// The package uses github.com/parquet-go/parquet-go for the underlying
// parquet file operations.
package reader
