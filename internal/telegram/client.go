// Package telegram connects the bot dispatcher to the Telegram Bot API: it
// polls updates, converts them to bot events and executes the resulting
// actions.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"fjacquet/receipt-bot/internal/apperror"
	"fjacquet/receipt-bot/internal/bot"
	"fjacquet/receipt-bot/internal/config"
	"fjacquet/receipt-bot/internal/logging"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxPhotoBytes caps photo downloads; Telegram's own bot download limit is 20 MB.
const maxPhotoBytes = 20 << 20

// botAPI is the subset of *tgbotapi.BotAPI the client uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	GetFileDirectURL(fileID string) (string, error)
}

// Handler turns events into actions. *bot.Dispatcher implements it.
type Handler interface {
	Dispatch(ctx context.Context, chatID int64, ev bot.Event) []bot.Action
	// AcceptsPhotos reports whether a photo from chatID would be processed.
	AcceptsPhotos(chatID int64) bool
	// Recover ends chatID's conversation after a failed update.
	Recover(chatID int64) []bot.Action
}

// Client runs the update loop.
type Client struct {
	api         botAPI
	http        *http.Client
	handler     Handler
	pollTimeout int
	logger      logging.Logger
}

// NewClient authenticates against the Bot API using cfg.
func NewClient(cfg config.TelegramConfig, handler Handler, logger logging.Logger) (*Client, error) {
	httpClient, err := newHTTPClient(cfg.Proxy, cfg.PollTimeout)
	if err != nil {
		return nil, err
	}
	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, &apperror.TransportError{Operation: "getMe", Err: err}
	}
	c := newClient(api, httpClient, handler, cfg.PollTimeout, logger)
	c.logger.Info("Authorized on Telegram", logging.F("bot_username", api.Self.UserName))
	return c, nil
}

func newClient(api botAPI, httpClient *http.Client, handler Handler, pollTimeout int, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		api:         api,
		http:        httpClient,
		handler:     handler,
		pollTimeout: pollTimeout,
		logger:      logger.WithField(logging.FieldComponent, "telegram"),
	}
}

// RegisterCommands publishes the command list shown in Telegram clients.
func (c *Client) RegisterCommands() error {
	if _, err := c.api.Request(commandList()); err != nil {
		return &apperror.TransportError{Operation: "setMyCommands", Err: err}
	}
	return nil
}

// Run polls updates until ctx is cancelled. Updates are handled one at a
// time, in arrival order.
func (c *Client) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.pollTimeout
	updates := c.api.GetUpdatesChan(u)

	c.logger.Info("Bot is running and waiting for updates")
	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			c.logger.Info("Bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			c.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate never lets a failing update take the loop down. A panic
// ends the chat's conversation with the generic failure reply.
func (c *Client) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var chatID int64
	dispatched := false
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		c.logger.Error("Recovered from panic while handling update",
			logging.F("update_id", update.UpdateID),
			logging.F(logging.FieldReason, fmt.Sprint(r)))
		if !dispatched {
			return
		}
		if err := c.Execute(chatID, c.handler.Recover(chatID)); err != nil {
			c.logger.WithError(err).Error("Failed to deliver reply", logging.F(logging.FieldChatID, chatID))
		}
	}()

	chatID, ev, ok := c.toEvent(ctx, update)
	if !ok {
		return
	}
	dispatched = true
	actions := c.handler.Dispatch(ctx, chatID, ev)
	if err := c.Execute(chatID, actions); err != nil {
		c.logger.WithError(err).Error("Failed to deliver reply", logging.F(logging.FieldChatID, chatID))
	}
}

func (c *Client) toEvent(ctx context.Context, update tgbotapi.Update) (int64, bot.Event, bool) {
	if q := update.CallbackQuery; q != nil {
		if q.Message == nil || q.Message.Chat == nil {
			return 0, nil, false
		}
		return q.Message.Chat.ID, bot.CallbackQuery{QueryID: q.ID, Data: q.Data, MessageID: q.Message.MessageID}, true
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return 0, nil, false
	}
	switch {
	case len(msg.NewChatMembers) > 0:
		return msg.Chat.ID, bot.MemberJoined{}, true
	case len(msg.Photo) > 0:
		if !c.handler.AcceptsPhotos(msg.Chat.ID) {
			c.logger.Debug("Ignoring photo", logging.F(logging.FieldChatID, msg.Chat.ID))
			return 0, nil, false
		}
		photo, err := c.downloadPhoto(ctx, msg.Photo)
		if err != nil {
			c.logger.WithError(err).Warn("Failed to download photo", logging.F(logging.FieldChatID, msg.Chat.ID))
			return 0, nil, false
		}
		return msg.Chat.ID, photo, true
	case msg.Text != "":
		return msg.Chat.ID, bot.TextMessage{Text: msg.Text}, true
	}
	return 0, nil, false
}

func (c *Client) downloadPhoto(ctx context.Context, sizes []tgbotapi.PhotoSize) (bot.Photo, error) {
	best, _ := largestPhoto(sizes)
	url, err := c.api.GetFileDirectURL(best.FileID)
	if err != nil {
		return bot.Photo{}, &apperror.TransportError{Operation: "getFile", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return bot.Photo{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return bot.Photo{}, &apperror.TransportError{Operation: "downloadFile", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return bot.Photo{}, &apperror.TransportError{Operation: "downloadFile", Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return bot.Photo{}, &apperror.TransportError{Operation: "downloadFile", Err: err}
	}
	return bot.Photo{Image: data, MIMEType: http.DetectContentType(data)}, nil
}

// Execute performs actions for chatID in order, stopping at the first failure.
func (c *Client) Execute(chatID int64, actions []bot.Action) error {
	for _, action := range actions {
		chattable, viaRequest := toChattable(chatID, action)
		if chattable == nil {
			continue
		}
		start := time.Now()
		var err error
		if viaRequest {
			_, err = c.api.Request(chattable)
		} else {
			_, err = c.api.Send(chattable)
		}
		if err != nil {
			return &apperror.TransportError{Operation: actionName(action), Err: err}
		}
		c.logger.Debug("Action delivered",
			logging.F(logging.FieldChatID, chatID),
			logging.F("action", actionName(action)),
			logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	}
	return nil
}
