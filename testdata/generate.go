// Generates sample orders changelog files for trying out mergetree:
//
//	cd testdata && go run generate.go
//	mergetree compact --table orders.yaml --format table 'orders-*.parquet'
package main

import (
	"log"
	"os"

	"github.com/parquet-go/parquet-go"
)

type Item struct {
	SKU string `parquet:"sku"`
	Qty int64  `parquet:"qty"`
}

type Order struct {
	OrderID  int64   `parquet:"order_id"`
	Total    float64 `parquet:"total"`
	Tags     *string `parquet:"tags,optional"`
	Items    []Item  `parquet:"items,list"`
	Updated  int64   `parquet:"updated"`
	Sequence int64   `parquet:"_SEQUENCE_NUMBER"`
	Kind     string  `parquet:"_VALUE_KIND"`
}

func tag(s string) *string { return &s }

func write(name string, orders []Order) {
	file, err := os.Create(name)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[Order](file)
	if _, err := writer.Write(orders); err != nil {
		log.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		log.Fatal(err)
	}

	log.Printf("Generated %s with %d records", name, len(orders))
}

func main() {
	write("orders-1.parquet", []Order{
		{OrderID: 1, Total: 10, Tags: tag("web"), Items: []Item{{"a", 1}, {"b", 2}}, Updated: 100, Sequence: 1, Kind: "+I"},
		{OrderID: 2, Total: 4.5, Items: []Item{{"c", 1}}, Updated: 101, Sequence: 2, Kind: "+I"},
	})
	write("orders-2.parquet", []Order{
		{OrderID: 1, Total: 2.5, Tags: tag("gift"), Items: []Item{{"b", 5}}, Updated: 102, Sequence: 3, Kind: "+I"},
		{OrderID: 2, Total: 4.5, Items: []Item{{"c", 1}}, Updated: 103, Sequence: 4, Kind: "-U"},
		{OrderID: 3, Total: 7, Items: []Item{{"d", 3}}, Updated: 104, Sequence: 5, Kind: "+I"},
	})

	table := `name: orders
primary-key: [order_id]
fields:
  - name: order_id
    type: BIGINT
  - name: total
    type: DOUBLE
  - name: tags
    type: STRING
  - name: items
    type: ARRAY<ROW<sku STRING, qty BIGINT>>
  - name: updated
    type: BIGINT
options:
  merge-engine: aggregation
  sequence.field: updated
  fields.total.aggregate-function: sum
  fields.tags.aggregate-function: listagg
  fields.tags.ignore-retract: "true"
  fields.items.aggregate-function: nested_update
  fields.items.nested-key: sku
`
	if err := os.WriteFile("orders.yaml", []byte(table), 0o644); err != nil {
		log.Fatal(err)
	}
	log.Println("Generated orders.yaml")
}
