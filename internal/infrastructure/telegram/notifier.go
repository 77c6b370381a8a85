package telegram

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"FinNewsAnalyzer/internal/ports"
)

// maxMessageLength is the Telegram limit for a single text message.
const maxMessageLength = 4096

const preOverhead = len("<pre></pre>")

// Notifier sends digests to a Telegram chat via bot API.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. The bot token is
// checked against the API once.
func NewNotifier(botToken, chatID string, logger *slog.Logger) (*Notifier, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	return newNotifier(botToken, chatID, tgbotapi.APIEndpoint, client, logger)
}

func newNotifier(botToken, chatID, endpoint string, client tgbotapi.HTTPClient, logger *slog.Logger) (*Notifier, error) {
	if botToken == "" || chatID == "" {
		return nil, fmt.Errorf("telegram notifier misconfigured")
	}
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse chat id %q: %w", chatID, err)
	}

	api, err := tgbotapi.NewBotAPIWithClient(botToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Notifier{api: api, chatID: id, logger: logger}, nil
}

// PublishDigest posts the digest as preformatted text, split into as many
// messages as the length limit requires.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	chunks := splitMessage(digest, maxMessageLength-preOverhead)
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := tgbotapi.NewMessage(n.chatID, "<pre>"+chunk+"</pre>")
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true

		if _, err := n.api.Send(msg); err != nil {
			return fmt.Errorf("send telegram message %d/%d: %w", i+1, len(chunks), err)
		}
	}
	n.logger.Info("digest published", "messages", len(chunks))
	return nil
}

// splitMessage escapes text for HTML and cuts it into chunks of at most
// limit characters, preferring line boundaries.
func splitMessage(text string, limit int) []string {
	var chunks []string
	var current strings.Builder
	size := 0

	flush := func() {
		if size > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			size = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		escaped := html.EscapeString(line)
		n := utf8.RuneCountInString(escaped)
		if size+n > limit {
			flush()
		}
		for n > limit {
			head, rest := cutRunes(escaped, limit)
			chunks = append(chunks, head)
			escaped = rest
			n = utf8.RuneCountInString(escaped)
		}
		current.WriteString(escaped)
		size += n
	}
	flush()

	if len(chunks) == 0 {
		return []string{""}
	}
	return chunks
}

// cutRunes splits s after limit runes without breaking an HTML entity.
func cutRunes(s string, limit int) (string, string) {
	count := 0
	for i := range s {
		if count == limit {
			head := s[:i]
			if amp := strings.LastIndexByte(head, '&'); amp >= 0 && !strings.Contains(head[amp:], ";") && amp > 0 {
				return head[:amp], s[amp:]
			}
			return head, s[i:]
		}
		count++
	}
	return s, ""
}
