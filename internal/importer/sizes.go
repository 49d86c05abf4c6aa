package importer

import "strings"

// sizeNames translates the legacy datasheet's coded bottle sizes into
// display strings. Unknown codes pass through unchanged.
var sizeNames = map[string]string{
	"h":   "375ml Half Bottle",
	"s":   "750ml",
	"l":   "1L",
	"m":   "1.5L Magnum",
	"dm":  "3L Double Magnum",
	"jer": "4.5L Jeroboam",
	"reh": "4.5L Rehoboam",
	"imp": "6L Imperial",
	"sal": "9L Salmanazar",
	"bal": "12L Balthazar",
	"neb": "15L Nebuchadnezzar",
}

func TranslateSize(code string) string {
	if name, ok := sizeNames[strings.ToLower(strings.TrimSpace(code))]; ok {
		return name
	}
	return code
}
