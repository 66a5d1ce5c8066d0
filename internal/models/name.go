package models

// reservedKeys are never flattened into the `name<suffix>` form even when
// they are the only entry of an object.
var reservedKeys = map[string]struct{}{
	"constructor": {},
	"prototype":   {},
	"toString":    {},
	"__proto__":   {},
}

// IsReservedKey reports whether key is one of the reserved control keys.
func IsReservedKey(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

// IsNameStart reports whether c may begin a Name.
func IsNameStart(c byte) bool {
	return isLetter(c) || c == '_' || c == '$'
}

// IsNameChar reports whether c may continue a Name.
func IsNameChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_' || c == '.' || c == '-' || c == '$'
}

// IsName reports whether s matches the Name lexical class.
func IsName(s string) bool {
	if s == "" || !IsNameStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !IsNameChar(s[i]) {
			return false
		}
	}
	return true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
