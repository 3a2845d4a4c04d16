package turn

const padding = 4

// nearestPaddedValueLength returns l rounded up to the nearest multiple
// of 4. Attribute values are padded to 32-bit boundaries on the wire,
// while the declared length stays unpadded.
func nearestPaddedValueLength(l int) int {
	n := padding * (l / padding)
	if n < l {
		n += padding
	}
	return n
}
