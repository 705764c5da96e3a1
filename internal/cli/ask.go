// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"

	"docchat/internal/model"
	"docchat/internal/session"
)

// =============================================================================
// ASK COMMAND
// =============================================================================

// Ask runs the terminal REPL against one chat, creating it when no chat
// with the given name exists. It drives the same session controller as
// the TUI, applying each command's event inline.
func Ask(ctx context.Context, ctrl *session.Controller, chatName string) error {
	apply := func(cmd session.Command) {
		if cmd == nil {
			return
		}
		ctrl.Apply(cmd(ctx))
	}

	apply(ctrl.Bootstrap())

	if err := enterChat(ctrl, apply, chatName); err != nil {
		return err
	}

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)

	who := ctrl.Identity().DisplayName()
	fmt.Println(infoStyle.Render(fmt.Sprintf("Chatting as %s in %q. /quit to exit.", who, chatName)))

	prompt := NewPrompt()
	defer prompt.Close()

	for {
		text, err := prompt.Ask("you> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch strings.ToLower(text) {
		case "":
			continue
		case "/quit", "/q", "/exit":
			return nil
		}

		cmd, err := ctrl.SendMessage(text)
		if err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			continue
		}
		apply(cmd)

		msgs := ctrl.Messages()
		if len(msgs) == 0 {
			continue
		}
		printReply(renderer, msgs[len(msgs)-1])
	}
}

// enterChat selects the named chat, creating it when absent.
func enterChat(ctrl *session.Controller, apply func(session.Command), name string) error {
	for _, chat := range ctrl.Chats() {
		if chat.Title == name {
			apply(ctrl.SelectChat(chat.ID))
			return nil
		}
	}

	cmd, err := ctrl.CreateChat(name)
	if err != nil {
		return err
	}
	apply(cmd)

	if ctrl.SelectedID() == "" {
		return fmt.Errorf("could not create chat %q", name)
	}
	fmt.Println(infoStyle.Render("Created chat " + name))
	return nil
}

// printReply renders the assistant's markdown reply.
func printReply(renderer *glamour.TermRenderer, msg model.Message) {
	if msg.Sender != model.SenderAssistant {
		return
	}
	if renderer != nil {
		if out, err := renderer.Render(msg.Content); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Println(msg.Content)
}
