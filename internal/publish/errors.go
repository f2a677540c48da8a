package publish

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"promocast.app/engine/internal/domain"
)

// FailureMessage synthesizes the user-facing message for an overall failure:
// one "{Platform}: {error}" line per failing platform so the operator knows
// exactly what to retry, falling back to the backend's top-level message
// when no per-platform detail exists.
func FailureMessage(resp domain.PublishResponse) string {
	platforms := make([]string, 0, len(resp.Results))
	for platform := range resp.Results {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)

	var lines []string
	for _, platform := range platforms {
		result := resp.Results[platform]
		if result.Success {
			continue
		}
		detail := result.Error
		if detail == "" {
			detail = "failed"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", titleCase(platform), detail))
	}

	if len(lines) == 0 {
		if resp.Message != "" {
			return resp.Message
		}
		return "publish failed"
	}
	return strings.Join(lines, "\n")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
