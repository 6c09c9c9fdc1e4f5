package mjml

import "strings"

// void HTML elements never have content or closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// IsVoid reports HTML void element name.
func IsVoid(name string) bool {
	return voidElements[strings.ToLower(name)]
}
