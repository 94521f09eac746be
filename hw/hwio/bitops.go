package hwio

// Lo8 and Hi8 split a 16-bit word.
func Lo8(v uint16) uint8 { return uint8(v) }
func Hi8(v uint16) uint8 { return uint8(v >> 8) }

func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
