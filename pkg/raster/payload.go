// Package raster holds the image inputs of the compositor: raw payloads as
// received from uploads or the camera, lenient decoding, and resolvers
// that turn overlay references into bytes.
package raster

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Payload is an encoded image exactly as it was received. It is not
// decoded until a render needs it.
type Payload struct {
	Data   []byte
	Source string // file name, "camera", "data-uri", ...
}

// FromBytes wraps raw bytes.
func FromBytes(data []byte, source string) Payload {
	return Payload{Data: data, Source: source}
}

// FromFile reads a payload from disk.
func FromFile(path string) (Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, fmt.Errorf("read image: %w", err)
	}
	return Payload{Data: data, Source: filepath.Base(path)}, nil
}

// FromDataURI parses a "data:[<mime>][;base64],<data>" URI, the form file
// readers and canvas captures produce in the browser.
func FromDataURI(uri string) (Payload, error) {
	data, err := decodeDataURI(uri)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Data: data, Source: "data-uri"}, nil
}

// Empty reports whether the payload carries no bytes.
func (p Payload) Empty() bool { return len(p.Data) == 0 }

// MediaType sniffs the payload's MIME type.
func (p Payload) MediaType() string {
	return http.DetectContentType(p.Data)
}

// DataURI encodes the payload as a base64 data URI.
func (p Payload) DataURI() string {
	return "data:" + p.MediaType() + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// IsDataURI reports whether ref is an inline data URI rather than an
// asset reference.
func IsDataURI(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}

func decodeDataURI(uri string) ([]byte, error) {
	if !IsDataURI(uri) {
		return nil, fmt.Errorf("not a data URI")
	}
	meta, body, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("data URI without payload")
	}

	if strings.HasSuffix(meta, ";base64") {
		// Browsers emit StdEncoding, some tools strip the padding.
		body = strings.TrimSpace(body)
		data, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(body, "="))
		}
		if err != nil {
			return nil, fmt.Errorf("data URI: %w", err)
		}
		return data, nil
	}

	s, err := url.PathUnescape(body)
	if err != nil {
		return nil, fmt.Errorf("data URI: %w", err)
	}
	return []byte(s), nil
}
