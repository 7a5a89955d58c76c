// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engagement

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Comments are plain text; any markup is stripped before storage.
var commentPolicy = bluemonday.StrictPolicy()

// SanitizeComment strips markup and surrounding whitespace from comment text.
func SanitizeComment(text string) string {
	return strings.TrimSpace(commentPolicy.Sanitize(text))
}
