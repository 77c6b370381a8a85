package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTelegram struct {
	mu       sync.Mutex
	messages []string
	modes    []string
	chatIDs  []string
	fail     bool
}

func (f *fakeTelegram) handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"finnews","username":"finnews_bot"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		if f.fail {
			fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
			return
		}
		_ = r.ParseForm()
		f.mu.Lock()
		f.messages = append(f.messages, r.PostForm.Get("text"))
		f.modes = append(f.modes, r.PostForm.Get("parse_mode"))
		f.chatIDs = append(f.chatIDs, r.PostForm.Get("chat_id"))
		f.mu.Unlock()
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`)
	default:
		http.NotFound(w, r)
	}
}

func newTestNotifier(t *testing.T, fake *fakeTelegram) *Notifier {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(srv.Close)

	n, err := newNotifier("token", "42", srv.URL+"/bot%s/%s", srv.Client(), nil)
	require.NoError(t, err)
	return n
}

func TestPublishDigest(t *testing.T) {
	fake := &fakeTelegram{}
	n := newTestNotifier(t, fake)

	require.NoError(t, n.PublishDigest(context.Background(), "Batch b1\nS&P <up>\n"))

	require.Len(t, fake.messages, 1)
	assert.Equal(t, "<pre>Batch b1\nS&amp;P &lt;up&gt;\n</pre>", fake.messages[0])
	assert.Equal(t, "HTML", fake.modes[0])
	assert.Equal(t, "42", fake.chatIDs[0])
}

func TestPublishDigestSplitsLongMessages(t *testing.T) {
	fake := &fakeTelegram{}
	n := newTestNotifier(t, fake)

	line := strings.Repeat("x", 99) + "\n"
	require.NoError(t, n.PublishDigest(context.Background(), strings.Repeat(line, 100)))

	require.Len(t, fake.messages, 3)
	for _, m := range fake.messages {
		assert.LessOrEqual(t, len(m), maxMessageLength)
	}
}

func TestPublishDigestAPIError(t *testing.T) {
	fake := &fakeTelegram{fail: true}
	n := newTestNotifier(t, fake)

	err := n.PublishDigest(context.Background(), "hello")
	assert.Error(t, err)
}

func TestNewNotifierValidation(t *testing.T) {
	_, err := newNotifier("", "42", "http://unused/bot%s/%s", http.DefaultClient, nil)
	assert.Error(t, err)

	_, err = newNotifier("token", "chat", "http://unused/bot%s/%s", http.DefaultClient, nil)
	assert.Error(t, err)
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{""}, splitMessage("", 10))
	assert.Equal(t, []string{"ab\n", "cd\n"}, splitMessage("ab\ncd\n", 4))
	assert.Equal(t, []string{"abcd", "ef"}, splitMessage("abcdef", 4))
	assert.Equal(t, []string{"ab", "&amp;", "c"}, splitMessage("ab&c", 5))
}
