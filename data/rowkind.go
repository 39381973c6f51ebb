package data

// RowKind describes the change a record carries in a changelog.
type RowKind byte

const (
	// Insert is a new row (+I).
	Insert RowKind = iota
	// UpdateBefore retracts the previous image of an updated row (-U).
	UpdateBefore
	// UpdateAfter is the new image of an updated row (+U).
	UpdateAfter
	// Delete retracts a row (-D).
	Delete
)

var rowKindShort = [...]string{"+I", "-U", "+U", "-D"}

// String returns the short form of the kind, such as "+I".
func (k RowKind) String() string {
	if int(k) < len(rowKindShort) {
		return rowKindShort[k]
	}
	return "?"
}

// IsAdd reports whether the kind contributes a value (+I or +U).
func (k RowKind) IsAdd() bool {
	return k == Insert || k == UpdateAfter
}

// IsRetract reports whether the kind withdraws a value (-U or -D).
func (k RowKind) IsRetract() bool {
	return k == UpdateBefore || k == Delete
}

// ParseRowKind accepts the short form ("+I") or the long form ("INSERT",
// "UPDATE_BEFORE", "UPDATE_AFTER", "DELETE").
func ParseRowKind(s string) (RowKind, error) {
	switch s {
	case "+I", "INSERT":
		return Insert, nil
	case "-U", "UPDATE_BEFORE":
		return UpdateBefore, nil
	case "+U", "UPDATE_AFTER":
		return UpdateAfter, nil
	case "-D", "DELETE":
		return Delete, nil
	}
	return 0, Error.New("unknown row kind %q", s)
}

// RowKindFromByte converts the byte encoding of a kind.
func RowKindFromByte(b byte) (RowKind, error) {
	if int(b) >= len(rowKindShort) {
		return 0, Error.New("unknown row kind byte %d", b)
	}
	return RowKind(b), nil
}
