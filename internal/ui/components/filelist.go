// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"docchat/internal/files"
	"docchat/internal/ui/styles"
	"docchat/internal/util"
)

// =============================================================================
// STAGED FILE LIST
// =============================================================================

// FileList renders the staging list shown above the input area, with the
// chat-independent upload error when one is pending. An empty list renders
// nothing.
func FileList(theme *styles.Theme, staged []files.StagedFile, uploadErr string, width int) string {
	if len(staged) == 0 && uploadErr == "" {
		return ""
	}

	var b strings.Builder
	for i, f := range staged {
		line := fmt.Sprintf("📄 %s", f.Name)
		meta := fmt.Sprintf(" (%s)  [%d to remove]", humanSize(f.Size), i+1)
		b.WriteString(theme.FileItem.Render(util.TruncateWidth(line, width-len(meta)-2)))
		b.WriteString(theme.FileMeta.Render(meta))
		b.WriteString("\n")
	}
	if uploadErr != "" {
		b.WriteString(theme.UploadError.Render(uploadErr))
		b.WriteString("\n")
	}
	return b.String()
}

// humanSize formats a byte count for the file list.
func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
