package turn

import "fmt"

// CheckSize returns *AttrLengthErr if got is not equal to expected.
func CheckSize(a AttrType, got, expected int) error {
	if got == expected {
		return nil
	}
	return &AttrLengthErr{
		Got:      got,
		Expected: expected,
		Attr:     a,
	}
}

// AttrLengthErr means that length for attribute is invalid.
type AttrLengthErr struct {
	Attr     AttrType
	Got      int
	Expected int
}

func (e *AttrLengthErr) Error() string {
	return fmt.Sprintf("incorrect length of %s attribute: got %d, expected %d",
		e.Attr, e.Got, e.Expected,
	)
}

// CheckOverflow returns *AttrOverflowErr if got is bigger that max.
func CheckOverflow(t AttrType, got, max int) error {
	if got <= max {
		return nil
	}
	return &AttrOverflowErr{
		Type: t,
		Got:  got,
		Max:  max,
	}
}

// AttrOverflowErr occurs when len(v) > max.
type AttrOverflowErr struct {
	Type AttrType
	Max  int
	Got  int
}

func (e *AttrOverflowErr) Error() string {
	return fmt.Sprintf("attribute %s overflow: %d > %d (max)",
		e.Type, e.Got, e.Max,
	)
}

// IsAttrSizeOverflow returns true if error means that attribute size
// is too big.
func IsAttrSizeOverflow(err error) bool {
	_, ok := err.(*AttrOverflowErr)
	return ok
}
