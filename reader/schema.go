package reader

import (
	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/mergetree/types"
)

// Column describes a leaf column of a parquet file.
type Column struct {
	// Path is the dot separated column name, e.g. "items.list.element.sku".
	Path string
	// Type is the table field type the column reads as, or empty when the
	// column has no scalar equivalent.
	Type         string
	PhysicalType string
	LogicalType  string
	Optional     bool
	// Repeated is set when the column or any of its parents repeats.
	Repeated bool
}

// Columns returns the leaf columns of the file.
func (r *FileReader) Columns() []Column {
	return Columns(r.Schema())
}

// Columns flattens schema into its leaf columns.
func Columns(schema *parquet.Schema) []Column {
	var columns []Column
	for _, field := range schema.Fields() {
		columns = appendColumns(columns, field, "", false)
	}
	return columns
}

func appendColumns(columns []Column, field parquet.Field, prefix string, parentRepeated bool) []Column {
	name := field.Name()
	if prefix != "" {
		name = prefix + "." + name
	}
	repeated := parentRepeated || field.Repeated()

	if children := field.Fields(); len(children) > 0 {
		for _, child := range children {
			columns = appendColumns(columns, child, name, repeated)
		}
		return columns
	}

	return append(columns, Column{
		Path:         name,
		Type:         fieldType(field),
		PhysicalType: physicalType(field),
		LogicalType:  logicalType(field),
		Optional:     field.Optional(),
		Repeated:     repeated,
	})
}

func physicalType(field parquet.Field) string {
	if field.Type() == nil {
		return "GROUP"
	}

	switch field.Type().Kind() {
	case parquet.Boolean:
		return "BOOLEAN"
	case parquet.Int32:
		return "INT32"
	case parquet.Int64:
		return "INT64"
	case parquet.Int96:
		return "INT96"
	case parquet.Float:
		return "FLOAT"
	case parquet.Double:
		return "DOUBLE"
	case parquet.ByteArray:
		return "BYTE_ARRAY"
	case parquet.FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return "UNKNOWN"
	}
}

func logicalType(field parquet.Field) string {
	if field.Type() == nil || field.Type().LogicalType() == nil {
		return ""
	}
	return field.Type().LogicalType().String()
}

// fieldType maps a leaf column onto the scalar table type its values
// convert to.
func fieldType(field parquet.Field) string {
	if field.Type() == nil {
		return ""
	}

	switch field.Type().Kind() {
	case parquet.Boolean:
		return types.KindBoolean.String()
	case parquet.Int32:
		return types.KindInt.String()
	case parquet.Int64:
		return types.KindBigInt.String()
	case parquet.Float:
		return types.KindFloat.String()
	case parquet.Double:
		return types.KindDouble.String()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		switch logicalType(field) {
		case "STRING", "UTF8", "ENUM", "JSON":
			return types.KindString.String()
		}
		return types.KindBytes.String()
	}
	return ""
}
