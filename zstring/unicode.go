package zstring

// defaultUnicodeTable is the built-in ZSCII-to-Unicode mapping for codes
// 155 through 223 (the "extra characters" block). A story may replace it
// via a length-prefixed table reachable from the header extension table.
var defaultUnicodeTable = []rune{
	'ä', 'ö', 'ü', 'Ä', 'Ö', 'Ü', 'ß', '»', '«', 'ë',
	'ï', 'ÿ', 'Ë', 'Ï', 'á', 'é', 'í', 'ó', 'ú', 'ý',
	'Á', 'É', 'Í', 'Ó', 'Ú', 'Ý', 'à', 'è', 'ì', 'ò',
	'ù', 'À', 'È', 'Ì', 'Ò', 'Ù', 'â', 'ê', 'î', 'ô',
	'û', 'Â', 'Ê', 'Î', 'Ô', 'Û', 'å', 'Å', 'ø', 'Ø',
	'ã', 'ñ', 'õ', 'Ã', 'Ñ', 'Õ', 'æ', 'Æ', 'ç', 'Ç',
	'þ', 'ð', 'Þ', 'Ð', '£', 'œ', 'Œ', '¡', '¿',
}

const unicodeTableBase = 155

// UnicodeTable maps between ZSCII codes 155-251 and Unicode code points.
// Codes beyond the supplied entries have no mapping (Rune reports false).
type UnicodeTable struct {
	toRune []rune
}

// DefaultUnicodeTable returns the built-in table used when a story has no
// V5+ header override.
func DefaultUnicodeTable() UnicodeTable {
	return UnicodeTable{toRune: defaultUnicodeTable}
}

// ParseUnicodeTable builds a table from the raw bytes found at a header
// extension table's Unicode-translation-table pointer: one length byte
// followed by that many big-endian Unicode code points.
func ParseUnicodeTable(raw []uint8) (UnicodeTable, bool) {
	if len(raw) == 0 {
		return UnicodeTable{}, false
	}
	count := int(raw[0])
	if len(raw) < 1+count*2 {
		return UnicodeTable{}, false
	}
	runes := make([]rune, count)
	for i := 0; i < count; i++ {
		runes[i] = rune(uint16(raw[1+2*i])<<8 | uint16(raw[2+2*i]))
	}
	return UnicodeTable{toRune: runes}, true
}

// Rune translates a ZSCII code (expected in [155, 251]) to its Unicode
// equivalent. It returns false if the code has no mapping.
func (t UnicodeTable) Rune(zscii uint8) (rune, bool) {
	index := int(zscii) - unicodeTableBase
	if index < 0 || index >= len(t.toRune) {
		return 0, false
	}
	return t.toRune[index], true
}

// ZSCII translates a Unicode rune back to its ZSCII code, the direction the
// encoder needs when a dictionary word or typed input contains one of these
// characters.
func (t UnicodeTable) ZSCII(r rune) (uint8, bool) {
	for i, candidate := range t.toRune {
		if candidate == r {
			return uint8(unicodeTableBase + i), true
		}
	}
	return 0, false
}

// basicZSCII translates the plain-ASCII portion of ZSCII (codes 32-126,
// which are identical to ASCII) plus the control codes a decoder cares
// about: 9 (tab), 11 (sentence space) and 13 (newline). 9 and 11 both map
// to a space in every version; no version check is made here.
func basicZSCII(zscii uint8) (rune, bool) {
	switch {
	case zscii == 13:
		return '\n', true
	case zscii == 9 || zscii == 11:
		return ' ', true
	case zscii >= 32 && zscii <= 126:
		return rune(zscii), true
	default:
		return 0, false
	}
}
