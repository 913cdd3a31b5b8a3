package vocabulary

import "strings"

// HarmonizeURI normalizes a SeaDataNet term URI so lookups and cache
// keys agree: the scheme is forced to http and a trailing slash is
// appended if missing.
func HarmonizeURI(uri string) string {
	if strings.HasPrefix(uri, "https://") {
		uri = "http://" + strings.TrimPrefix(uri, "https://")
	}
	if uri != "" && !strings.HasSuffix(uri, "/") {
		uri += "/"
	}
	return uri
}
