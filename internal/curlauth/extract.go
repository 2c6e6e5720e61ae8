// Package curlauth extracts exchange session credentials from pasted curl
// request text. Users copy a request out of their browser's devtools and
// paste the curl form; the extractor pulls the two opaque secrets the proxy
// needs. Extraction is purely syntactic; credential content is the
// exchange's concern.
package curlauth

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

// Header patterns cover both the long and short curl flag forms, with single
// or double quoting, matching what browsers emit under "Copy as cURL".
var (
	csrfPattern   = regexp.MustCompile(`(?:--header|-H) ['"]csrftoken: ([^'"]+)['"]`)
	cookiePattern = regexp.MustCompile(`(?i)(?:--header|-H) ['"]Cookie: ([^'"]+)['"]`)
	dataPattern   = regexp.MustCompile(`(?:--data|--data-raw|-d) '([^']+)'`)
)

// Extract pulls the csrftoken and Cookie header values out of raw curl text
// and stamps them into a Credential with the fixed expiry window. It is
// both-or-fail: a missing header yields ErrParse, never a partially
// populated credential.
func Extract(raw string, now time.Time) (domain.Credential, error) {
	csrf := csrfPattern.FindStringSubmatch(raw)
	if csrf == nil {
		return domain.Credential{}, fmt.Errorf("%w: no csrftoken header in pasted request", domain.ErrParse)
	}

	cookie := cookiePattern.FindStringSubmatch(raw)
	if cookie == nil {
		return domain.Credential{}, fmt.Errorf("%w: no Cookie header in pasted request", domain.ErrParse)
	}

	return domain.NewCredential(csrf[1], cookie[1], now), nil
}

// ParseOrderBody extracts the JSON body of a pasted place-order curl request
// and decodes it into the raw request fields. Used to prefill the order form
// from a captured request.
func ParseOrderBody(raw string) (map[string]any, error) {
	m := dataPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, fmt.Errorf("%w: no data payload in pasted request", domain.ErrParse)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(m[1]), &body); err != nil {
		return nil, fmt.Errorf("%w: data payload is not valid JSON: %v", domain.ErrParse, err)
	}
	return body, nil
}
