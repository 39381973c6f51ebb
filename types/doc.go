// Package types declares the logical data types of table fields.
//
// Types are written in their textual form inside table configuration files
// and parsed with ParseDataType:
//
//	t, err := types.ParseDataType("ARRAY<ROW<sku STRING, qty BIGINT>>")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(t.ElementType().FieldCount()) // 2
//
// # Supported Types
//
//   - BIGINT (alias LONG), INT (alias INTEGER)
//   - DOUBLE, FLOAT
//   - STRING (alias VARCHAR), BOOLEAN (alias BOOL), BYTES (alias BINARY)
//   - ARRAY<T>
//   - ROW<name T, ...>
//
// Runtime values for each kind are int64, int32, float64, float32, string,
// bool, []byte, data.Array and data.Row respectively. A nil value is the
// absence of a value for every kind.
package types
