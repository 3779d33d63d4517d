package library

import (
	"net/url"
	"strconv"
	"strings"

	gderr "github.com/gdasset/gdasset/internal/errors"
)

const officialHost = "godotengine.org"

// GuessAssetID extracts an asset id from a bare id or an asset URL on the
// official library host, e.g. https://godotengine.org/asset-library/asset/3133.
func GuessAssetID(idOrURL string) (int, error) {
	if id, err := strconv.Atoi(idOrURL); err == nil && id > 0 {
		return id, nil
	}
	if u, err := url.Parse(idOrURL); err == nil && u.Scheme != "" && u.Host == officialHost {
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i, part := range parts {
			if part != "asset" {
				continue
			}
			// The id must be the final path segment after "asset".
			if i+1 == len(parts)-1 {
				if id, err := strconv.Atoi(parts[i+1]); err == nil && id > 0 {
					return id, nil
				}
			}
			break
		}
	}
	return 0, gderr.New(gderr.CategoryValidation, "%q is not a valid asset ID or asset URL", idOrURL)
}
