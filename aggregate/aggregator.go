package aggregate

import (
	"sort"
	"sync"

	"github.com/zeebo/errs"

	"github.com/vegasq/mergetree/types"
)

var (
	// Error is the class of data errors raised while aggregating.
	Error = errs.Class("aggregate")

	// ErrConfig is the class of configuration and value shape errors. It is
	// fatal for the merge that raised it.
	ErrConfig = errs.Class("aggregate config")

	// ErrUnsupportedRetract is returned by Retract of aggregators that cannot
	// undo a contribution.
	ErrUnsupportedRetract = errs.Class("unsupported retract")
)

// FieldAggregator merges the values of one field across row versions.
//
// Agg and Retract return the new accumulator and never modify their
// arguments.
type FieldAggregator interface {
	// Name returns the registered function name.
	Name() string
	// Agg folds input into accumulator.
	Agg(accumulator, input any) (any, error)
	// Retract removes the effect of a previously folded value.
	Retract(accumulator, retracted any) (any, error)
}

// FieldOptions carries the per-field settings an aggregator may use.
type FieldOptions struct {
	// NestedKey lists the nested fields identifying an element of a nested
	// table. Used by nested_update.
	NestedKey []string
	// Distinct makes collect drop duplicate elements.
	Distinct bool
	// ListAggDelimiter separates values joined by listagg.
	ListAggDelimiter string
}

// Factory creates an aggregator for a field of the given declared type.
type Factory func(field string, dataType *types.DataType, opts FieldOptions) (FieldAggregator, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes an aggregate function available by name. It panics if the
// name is registered twice.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("aggregate: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic("aggregate: Register called twice for " + name)
	}
	registry[name] = factory
}

// New creates the named aggregator for a field.
func New(name, field string, dataType *types.DataType, opts FieldOptions) (FieldAggregator, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, ErrConfig.New("unknown aggregate function %q for field %q", name, field)
	}
	return factory(field, dataType, opts)
}

// Names returns the registered function names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(PrimaryKeyName, newPrimaryKey)
	Register(LastValueName, newLastValue)
	Register(LastNonNullValueName, newLastNonNullValue)
	Register(FirstNonNullValueName, newFirstNonNullValue)
	Register(SumName, newSum)
	Register(ProductName, newProduct)
	Register(MaxName, newMax)
	Register(MinName, newMin)
	Register(ListAggName, newListAgg)
	Register(BoolAndName, newBoolAnd)
	Register(BoolOrName, newBoolOr)
	Register(CollectName, newCollect)
	Register(NestedUpdateName, newNestedUpdate)
}

// base holds what every aggregator knows about its field.
type base struct {
	name  string
	field string
}

func (b base) Name() string { return b.name }

func (b base) unsupportedRetract() error {
	return ErrUnsupportedRetract.New(
		"aggregate function %q does not support retraction; set 'fields.%s.ignore-retract'='true' to ignore retraction messages",
		b.name, b.field)
}

func (b base) wrongShape(value any, want string) error {
	return ErrConfig.New("field %q (%s): value of type %T is not %s", b.field, b.name, value, want)
}

func (b base) wrongType(dataType *types.DataType, want string) error {
	return ErrConfig.New("field %q: aggregate function %q requires %s, got %s", b.field, b.name, want, dataType)
}

// shortcut applies the absence identity shared by most aggregators.
func shortcut(accumulator, input any) (any, bool) {
	if accumulator == nil {
		return input, true
	}
	if input == nil {
		return accumulator, true
	}
	return nil, false
}
