package render

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var ErrUnsupportedAsset = errors.New("unsupported asset")

// CheckAsset decides whether a background URI is worth drawing. Data URIs
// must decode to something that sniffs as an image; other URIs must be
// http(s) or a relative path. Remote images are not fetched.
func CheckAsset(uri string) error {
	if strings.HasPrefix(uri, "data:") {
		data, err := decodeDataURI(uri)
		if err != nil {
			return err
		}
		mtype := mimetype.Detect(data)
		if !strings.HasPrefix(mtype.String(), "image/") {
			return fmt.Errorf("%w: data URI holds %s", ErrUnsupportedAsset, mtype.String())
		}
		return nil
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedAsset, err)
	}
	switch parsed.Scheme {
	case "http", "https":
		if parsed.Host == "" {
			return fmt.Errorf("%w: missing host in %q", ErrUnsupportedAsset, uri)
		}
		return nil
	case "":
		if parsed.Path == "" {
			return fmt.Errorf("%w: empty path", ErrUnsupportedAsset)
		}
		return nil
	}
	return fmt.Errorf("%w: scheme %q", ErrUnsupportedAsset, parsed.Scheme)
}

func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data URI", ErrUnsupportedAsset)
	}

	if strings.HasSuffix(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: bad base64 payload: %v", ErrUnsupportedAsset, err)
		}
		return data, nil
	}

	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: bad data URI payload: %v", ErrUnsupportedAsset, err)
	}
	return []byte(data), nil
}
