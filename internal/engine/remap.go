package engine

import "fmt"

// CategoryCodes maps the distinct values of a categorical column to dense integer codes.
// Codes are assigned in first-seen order and are only meaningful for the view they were
// derived from.
type CategoryCodes struct {
	Index   map[string]int // value -> code, codes in [0, len(Values))
	Values  []string       // code -> value
	Recoded []int          // one code per row of the view
}

// Remap derives codes for a categorical column of t and recodes that column.
// An empty table yields empty codes, not an error.
func Remap(t *Table, column string) (CategoryCodes, error) {
	values, ok := t.stringColumn(column)
	if !ok {
		return CategoryCodes{}, fmt.Errorf("%w: %q is not a categorical column", ErrInvalidSelection, column)
	}
	return remapValues(values), nil
}

func remapValues(values []string) CategoryCodes {
	cc := CategoryCodes{
		Index:   make(map[string]int),
		Values:  make([]string, 0),
		Recoded: make([]int, len(values)),
	}
	for i, v := range values {
		code, ok := cc.Index[v]
		if !ok {
			code = len(cc.Values)
			cc.Index[v] = code
			cc.Values = append(cc.Values, v)
		}
		cc.Recoded[i] = code
	}
	return cc
}

// Lookup returns the code for v.
func (cc CategoryCodes) Lookup(v string) (int, bool) {
	code, ok := cc.Index[v]
	return code, ok
}

// Len returns the number of distinct values.
func (cc CategoryCodes) Len() int { return len(cc.Values) }

// Recode maps values through the existing code map. Values that were never seen get -1.
func (cc CategoryCodes) Recode(values []string) []int {
	out := make([]int, len(values))
	for i, v := range values {
		code, ok := cc.Index[v]
		if !ok {
			code = -1
		}
		out[i] = code
	}
	return out
}

func (cc CategoryCodes) clone() CategoryCodes {
	out := CategoryCodes{
		Index:   make(map[string]int, len(cc.Index)),
		Values:  append(make([]string, 0, len(cc.Values)), cc.Values...),
		Recoded: append(make([]int, 0, len(cc.Recoded)), cc.Recoded...),
	}
	for k, v := range cc.Index {
		out.Index[k] = v
	}
	return out
}
