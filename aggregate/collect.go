package aggregate

import (
	"github.com/vegasq/mergetree/codegen"
	"github.com/vegasq/mergetree/data"
	"github.com/vegasq/mergetree/types"
)

// CollectName is the registered name of the array collecting aggregator.
const CollectName = "collect"

// collect concatenates array values, optionally dropping duplicate
// elements. Retract removes every element equal to a retracted one.
type collect struct {
	base
	elementType *types.DataType
	distinct    bool
}

func newCollect(field string, dataType *types.DataType, opts FieldOptions) (FieldAggregator, error) {
	b := base{name: CollectName, field: field}
	if dataType.Kind != types.KindArray {
		return nil, b.wrongType(dataType, "an ARRAY type")
	}
	return &collect{base: b, elementType: dataType.ElementType(), distinct: opts.Distinct}, nil
}

func (c *collect) Agg(accumulator, input any) (any, error) {
	if accumulator == nil && input == nil {
		return nil, nil
	}

	var elements []any
	for _, value := range []any{accumulator, input} {
		if value == nil {
			continue
		}
		arr, err := c.array(value)
		if err != nil {
			return nil, err
		}
		for i := 0; i < arr.Size(); i++ {
			elements = append(elements, arr.Element(i))
		}
	}

	if c.distinct {
		elements = c.dedup(elements)
	} else if accumulator == nil || input == nil {
		// identity: hand back the present operand untouched
		if accumulator == nil {
			return input, nil
		}
		return accumulator, nil
	}
	return data.GenericArray(elements), nil
}

func (c *collect) Retract(accumulator, retracted any) (any, error) {
	if accumulator == nil || retracted == nil {
		return accumulator, nil
	}
	acc, err := c.array(accumulator)
	if err != nil {
		return nil, err
	}
	ret, err := c.array(retracted)
	if err != nil {
		return nil, err
	}

	removed := make(map[codegen.BinaryKey]struct{}, ret.Size())
	for i := 0; i < ret.Size(); i++ {
		removed[codegen.EncodeValue(c.elementType, ret.Element(i))] = struct{}{}
	}

	result := make(data.GenericArray, 0, acc.Size())
	for i := 0; i < acc.Size(); i++ {
		element := acc.Element(i)
		if _, ok := removed[codegen.EncodeValue(c.elementType, element)]; !ok {
			result = append(result, element)
		}
	}
	return result, nil
}

func (c *collect) dedup(elements []any) []any {
	seen := make(map[codegen.BinaryKey]struct{}, len(elements))
	result := make([]any, 0, len(elements))
	for _, element := range elements {
		key := codegen.EncodeValue(c.elementType, element)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, element)
	}
	return result
}

// array returns value as an array whose elements hold the element type.
func (c *collect) array(value any) (data.Array, error) {
	arr, ok := value.(data.Array)
	if !ok {
		return nil, c.wrongShape(value, "an array")
	}
	for i := 0; i < arr.Size(); i++ {
		if err := data.Check(c.elementType, arr.Element(i)); err != nil {
			return nil, ErrConfig.New("field %q (%s): element %d: %v", c.field, c.name, i, err)
		}
	}
	return arr, nil
}
