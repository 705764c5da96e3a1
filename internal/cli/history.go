// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"docchat/internal/history"
	"docchat/internal/model"
)

// =============================================================================
// HISTORY COMMAND
// =============================================================================

// History prints archived messages. With a term it searches the archive;
// without one it shows the newest entries.
func History(store *history.Store, term string, limit int) error {
	entries, err := store.Search(term, limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println(infoStyle.Render("No archived messages match."))
		return nil
	}

	for _, e := range entries {
		who := e.Sender.DisplayName()
		style := infoStyle
		if e.Sender == model.SenderUser {
			style = promptStyle
		}
		fmt.Printf("%s %s %s\n",
			e.Timestamp.Format("2006-01-02 15:04"),
			style.Render(who+":"),
			e.Content)
	}

	total, err := store.Count()
	if err == nil {
		fmt.Println(infoStyle.Render(fmt.Sprintf("%d shown, %d archived in total.", len(entries), total)))
	}
	return nil
}
