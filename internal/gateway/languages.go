package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
)

// fetchLanguages never fails: any error, or a body that is not an object,
// yields an empty breakdown.
func (g *GitHubGateway) fetchLanguages(ctx context.Context, endpoint string) map[string]int64 {
	var buf bytes.Buffer
	if err := g.Call(ctx, http.MethodGet, endpoint, nil, &buf); err != nil {
		g.debugf("could not fetch languages from %s: %v", endpoint, err)
		return map[string]int64{}
	}
	return g.decodeLanguages(endpoint, buf.Bytes())
}

func (g *GitHubGateway) decodeLanguages(endpoint string, body []byte) map[string]int64 {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		g.debugf("unexpected languages response from %s: %v", endpoint, err)
		return map[string]int64{}
	}

	languages := make(map[string]int64, len(raw))
	for lang, value := range raw {
		n, ok := coerceBytes(value)
		if !ok {
			g.debugf("skipping non-numeric language value for %s: %v", lang, value)
			continue
		}
		languages[lang] = n
	}
	return languages
}

// coerceBytes converts a byte count to a non-negative integer. Fractional
// numbers are truncated; numeric strings are accepted.
func coerceBytes(value any) (int64, bool) {
	var f float64
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, n >= 0
		}
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, n >= 0
		}
		return 0, false
	default:
		return 0, false
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
	if math.IsNaN(f) || f < 0 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
