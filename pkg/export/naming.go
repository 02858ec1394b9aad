// naming.go — Artifact file names.
package export

import (
	"fmt"
	"strings"
	"time"
)

// FileName returns "{name}-{unixMillis}.{ext}". Characters outside
// [A-Za-z0-9._-] in name become '-'; an empty name becomes "photobooth".
func FileName(name string, t time.Time, f Format) string {
	return fmt.Sprintf("%s-%d.%s", sanitize(name), t.UnixMilli(), f.Ext())
}

func sanitize(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '_', r == '-':
			return r
		default:
			return '-'
		}
	}, name)
	clean = strings.Trim(clean, ".-")
	if clean == "" {
		return "photobooth"
	}
	return clean
}
