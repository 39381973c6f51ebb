package compact

import (
	"context"
	"sort"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/vegasq/mergetree/reader"
)

var mon = monkit.Package()

// Stats summarizes one compaction.
type Stats struct {
	InputRecords int64
	Retractions  int64
	Groups       int64
	OutputRows   int64
	DroppedRows  int64
}

// Compactor merges changelog records by key.
type Compactor struct {
	log      *zap.Logger
	newMerge MergeFunctionFactory

	// OnConsumed, if set, is called with the source of every record read.
	OnConsumed func(Source) error
}

// NewCompactor returns a compactor folding key groups with merge functions
// from factory.
func NewCompactor(log *zap.Logger, factory MergeFunctionFactory) *Compactor {
	return &Compactor{
		log:      log.Named("compactor"),
		newMerge: factory,
	}
}

type sortedRecord struct {
	kv      KeyValue
	arrival int
}

// Compact drains readers, closing them, and returns the merged rows in key
// order. Records of a key are folded in sequence number order, ties broken
// by the order they were read. Keys whose merged row is a delete are
// dropped.
func (c *Compactor) Compact(ctx context.Context, readers []reader.RecordReader[KeyValue]) (_ []KeyValue, _ Stats, err error) {
	defer mon.Task()(&ctx)(&err)
	defer func() { err = errs.Combine(err, Error.Wrap(reader.CloseAll(readers...))) }()

	var stats Stats
	var records []sortedRecord
	for i, r := range readers {
		err := reader.ForEachRemaining(r, func(kv KeyValue) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if c.OnConsumed != nil {
				if err := c.OnConsumed(kv.Source); err != nil {
					return err
				}
			}
			if kv.Kind.IsRetract() {
				stats.Retractions++
			}
			records = append(records, sortedRecord{kv: kv, arrival: len(records)})
			return nil
		})
		if err != nil {
			return nil, stats, Error.New("reader %d: %w", i, err)
		}
		c.log.Debug("drained reader", zap.Int("reader", i), zap.Int("records", len(records)))
	}
	stats.InputRecords = int64(len(records))

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if cmp := a.kv.Key.Compare(b.kv.Key); cmp != 0 {
			return cmp < 0
		}
		if a.kv.Seq != b.kv.Seq {
			return a.kv.Seq < b.kv.Seq
		}
		return a.arrival < b.arrival
	})

	merge := c.newMerge()
	var merged []KeyValue
	for start := 0; start < len(records); {
		end := start + 1
		for end < len(records) && records[end].kv.Key == records[start].kv.Key {
			end++
		}

		merge.Reset()
		for _, record := range records[start:end] {
			if err := merge.Add(record.kv); err != nil {
				return nil, stats, err
			}
		}
		stats.Groups++

		if result, ok := merge.Result(); ok {
			if result.Kind.IsRetract() {
				stats.DroppedRows++
			} else {
				merged = append(merged, result)
			}
		}
		start = end
	}
	stats.OutputRows = int64(len(merged))

	mon.Counter("compact_input_records").Inc(stats.InputRecords)
	mon.Counter("compact_retractions").Inc(stats.Retractions)
	mon.Counter("compact_merged_groups").Inc(stats.Groups)
	mon.Counter("compact_dropped_rows").Inc(stats.DroppedRows)

	c.log.Info("compaction finished",
		zap.Int64("input", stats.InputRecords),
		zap.Int64("retractions", stats.Retractions),
		zap.Int64("groups", stats.Groups),
		zap.Int64("output", stats.OutputRows),
		zap.Int64("dropped", stats.DroppedRows))

	return merged, stats, nil
}
