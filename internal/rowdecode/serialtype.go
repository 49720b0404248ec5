package rowdecode

// BodySizeFor maps a record-header serial-type code to the number of
// body bytes it occupies, per the format's cell encoding. ok is false
// for the two reserved codes (10, 11), which must be rejected by the
// caller.
func BodySizeFor(s uint64) (size int, ok bool) {
	switch {
	case s == 0, s == 8, s == 9:
		return 0, true
	case s == 1:
		return 1, true
	case s == 2:
		return 2, true
	case s == 3:
		return 3, true
	case s == 4:
		return 4, true
	case s == 5:
		return 6, true
	case s == 6, s == 7:
		return 8, true
	case s == 10, s == 11:
		return 0, false
	case s >= 12 && s%2 == 0:
		return int((s - 12) / 2), true
	default: // odd, s >= 13
		return int((s - 13) / 2), true
	}
}

// IsBlob reports whether serial type s denotes a BLOB cell.
func IsBlob(s uint64) bool { return s >= 12 && s%2 == 0 }

// IsText reports whether serial type s denotes a TEXT cell.
func IsText(s uint64) bool { return s >= 13 && s%2 == 1 }
