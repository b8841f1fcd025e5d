// Package telegram связывает бота с Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ignatzorin/lostfound-bot/internal/notify"
)

// Ограничения Telegram на длину текста.
const (
	maxTextLength    = 4096
	maxCaptionLength = 1024
)

// API часть tgbotapi.BotAPI, которой пользуется клиент.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Client реализует notify.Transport поверх Bot API.
type Client struct {
	api API
}

// NewClient создаёт клиент.
func NewClient(api API) *Client {
	return &Client{api: api}
}

var _ notify.Transport = (*Client)(nil)

func (c *Client) SendText(ctx context.Context, chatID int64, text string, actions []notify.Action) (notify.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return notify.MessageRef{}, err
	}

	msg := tgbotapi.NewMessage(chatID, truncate(text, maxTextLength))
	if len(actions) > 0 {
		msg.ReplyMarkup = keyboard(actions)
	}

	sent, err := c.api.Send(msg)
	if err != nil {
		return notify.MessageRef{}, fmt.Errorf("telegram: sendMessage в чат %d: %w", chatID, err)
	}
	return refOf(sent, chatID), nil
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, actions []notify.Action) (notify.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return notify.MessageRef{}, err
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))

	// Длинная подпись не влезает в фото: текст с кнопками уходит отдельным сообщением,
	// чтобы не потерять локацию и контакты.
	if utf8.RuneCountInString(caption) > maxCaptionLength {
		if _, err := c.api.Send(photo); err != nil {
			return notify.MessageRef{}, fmt.Errorf("telegram: sendPhoto в чат %d: %w", chatID, err)
		}
		return c.SendText(ctx, chatID, caption, actions)
	}

	photo.Caption = caption
	if len(actions) > 0 {
		photo.ReplyMarkup = keyboard(actions)
	}

	sent, err := c.api.Send(photo)
	if err != nil {
		return notify.MessageRef{}, fmt.Errorf("telegram: sendPhoto в чат %d: %w", chatID, err)
	}
	return refOf(sent, chatID), nil
}

// ClearActions убирает inline-кнопки у сообщения.
func (c *Client) ClearActions(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	if _, err := c.api.Request(edit); err != nil {
		return fmt.Errorf("telegram: editMessageReplyMarkup %d/%d: %w", chatID, messageID, err)
	}
	return nil
}

// AnswerCallback отвечает на нажатие кнопки всплывающим текстом.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := c.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("telegram: answerCallbackQuery: %w", err)
	}
	return nil
}

// keyboard рисует действия одной строкой кнопок.
func keyboard(actions []notify.Action) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(actions))
	for _, a := range actions {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(a.Label, a.Token))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func refOf(m tgbotapi.Message, fallbackChat int64) notify.MessageRef {
	chatID := fallbackChat
	if m.Chat != nil {
		chatID = m.Chat.ID
	}
	return notify.MessageRef{ChatID: chatID, MessageID: m.MessageID}
}

// truncate обрезает строку до limit символов.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
