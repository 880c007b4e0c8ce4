package raffle

// ValidateCount validates the count parameter for multiple draws
func ValidateCount(count int) error {
	if count <= 0 {
		return ErrInvalidCount
	}
	return nil
}

// utf16Units counts the UTF-16 code units of s. Storage footprint estimates
// use two bytes per code unit, matching how browser key/value stores account
// for string data.
func utf16Units(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}
