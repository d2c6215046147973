// pingrab-bot is the Telegram front-end: thin menu/dispatch glue around the
// pingrab pipeline and the record store. All filtering decisions live in the
// library; this binary only renders what it gets back.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	pingrab "github.com/dkushnev/go-pingrab"
	"github.com/dkushnev/go-pingrab/store"
)

const (
	dataFile    = "bot_data.json"
	cookiesFile = "pinterest_cookies.json"

	fetchCount = 12 // requested from the pipeline
	sendCount  = 6  // actually delivered per round
)

type bot struct {
	api   *tgbotapi.BotAPI
	grab  *pingrab.Config
	auth  *pingrab.AuthContext
	store *store.Store

	mu      sync.Mutex
	pending map[int64]string // chatID -> awaited input kind
	games   map[int64]string // chatID -> selected game
}

func main() {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		slog.Error("TELEGRAM_BOT_TOKEN is not set")
		os.Exit(1)
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		slog.Error("telegram connect failed", "error", err.Error())
		os.Exit(1)
	}

	st, err := store.Open(dataFile)
	if err != nil {
		slog.Error("open store failed", "error", err.Error())
		os.Exit(1)
	}

	auth := pingrab.NewAuthContext()
	if err := auth.LoadFile(cookiesFile); err != nil {
		slog.Warn("cookie restore failed", "error", err.Error())
	}

	b := &bot{
		api:     api,
		auth:    auth,
		store:   st,
		pending: make(map[int64]string),
		games:   make(map[int64]string),
		grab: &pingrab.Config{
			Auth:       auth,
			HTTPClient: &http.Client{Timeout: 30 * time.Second},
		},
	}

	slog.Info("bot started", "account", api.Self.UserName, "authenticated", auth.Authenticated())

	updates := api.GetUpdatesChan(tgbotapi.NewUpdate(0))
	for update := range updates {
		b.handle(update)
	}
}

func (b *bot) handle(update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil && update.Message.Document != nil:
		b.handleDocument(update.Message)
	case update.Message != nil:
		b.handleMessage(update.Message)
	}
}

func (b *bot) handleMessage(msg *tgbotapi.Message) {
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.sendMainMenu(msg.Chat.ID)
		case "cookies":
			b.send(msg.Chat.ID, "Export your Pinterest cookies as JSON (a browser\n"+
				"extension like EditThisCookie does this) and send the file here.\n"+
				"After that the bot serves your personal recommendations.")
		case "formats":
			b.send(msg.Chat.ID, formatsInfo)
		default:
			b.send(msg.Chat.ID, "Unknown command. Try /start.")
		}
		return
	}

	b.mu.Lock()
	state := b.pending[msg.Chat.ID]
	delete(b.pending, msg.Chat.ID)
	b.mu.Unlock()

	switch state {
	case "note":
		title, content, _ := strings.Cut(msg.Text, "\n")
		if len(title) > 50 {
			title = title[:50]
		}
		err := b.store.Add(store.Notes, store.Record{
			"title": title, "content": content, "date": time.Now().Format(time.RFC3339),
		}, "")
		b.reportSave(msg.Chat.ID, "Note \""+title+"\"", err)
	case "setting":
		name, value, ok := strings.Cut(msg.Text, ":")
		if !ok {
			b.send(msg.Chat.ID, "Wrong format, expected `Name: value`.")
			return
		}
		err := b.store.Add(store.GameSettings, store.Record{
			"name": strings.TrimSpace(name), "value": strings.TrimSpace(value),
			"date": time.Now().Format(time.RFC3339),
		}, b.currentGame(msg.Chat.ID))
		b.reportSave(msg.Chat.ID, "Setting", err)
	default:
		b.sendMainMenu(msg.Chat.ID)
	}
}

func (b *bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	_, _ = b.api.Request(tgbotapi.NewCallback(cq.ID, ""))
	chatID := cq.Message.Chat.ID
	userID := strconv.FormatInt(cq.From.ID, 10)

	switch data := cq.Data; {
	case data == "menu":
		b.sendMainMenu(chatID)
	case data == "formats":
		b.send(chatID, formatsInfo)
	case strings.HasPrefix(data, "fetch_"):
		b.fetchAndSend(chatID, userID, pingrab.Category(strings.TrimPrefix(data, "fetch_")))
	case data == "add_note":
		b.await(chatID, "note")
		b.send(chatID, "Send the note text (first line becomes the title).")
	case strings.HasPrefix(data, "game_"):
		game := strings.TrimPrefix(data, "game_")
		b.mu.Lock()
		b.pending[chatID] = "setting"
		b.games[chatID] = game
		b.mu.Unlock()
		b.send(chatID, "Send a setting for "+game+" as `Name: value`, e.g. `Sensitivity: 2.5`.")
	case data == "games":
		rows := [][]tgbotapi.InlineKeyboardButton{}
		for _, g := range b.store.Games() {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(g, "game_"+g)))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Back", "menu")))
		msg := tgbotapi.NewMessage(chatID, "Pick a game:")
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
		_, _ = b.api.Send(msg)
	case data == "notes":
		b.sendList(chatID, store.Notes, "title")
	}
}

// fetchAndSend runs the pipeline and renders the result without further
// inspection.
func (b *bot) fetchAndSend(chatID int64, userID string, category pingrab.Category) {
	if !category.Valid() {
		b.send(chatID, "Unknown category.")
		return
	}
	b.send(chatID, "Searching, filtering ads and checking formats...")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	refs := b.grab.FetchImages(ctx, category, fetchCount, userID)
	if len(refs) == 0 {
		b.send(chatID, "Nothing found right now, try again later.")
		return
	}

	sent := 0
	for _, ref := range refs {
		if sent >= sendCount {
			break
		}
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(ref.URL))
		photo.Caption = fmt.Sprintf("%s #%d (%s)", category, sent+1, ref.Provenance)
		if _, err := b.api.Send(photo); err != nil {
			slog.Warn("photo send failed", "url", ref.URL, "error", err.Error())
			continue
		}
		sent++
		time.Sleep(500 * time.Millisecond)
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Delivered %d images.", sent))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("More", "fetch_"+string(category)),
			tgbotapi.NewInlineKeyboardButtonData("Back", "menu"),
		),
	)
	_, _ = b.api.Send(msg)
}

// handleDocument treats any .json upload as a cookie export; other documents
// go to the file archive.
func (b *bot) handleDocument(msg *tgbotapi.Message) {
	doc := msg.Document
	if strings.HasSuffix(doc.FileName, ".json") {
		url, err := b.api.GetFileDirectURL(doc.FileID)
		if err != nil {
			b.send(msg.Chat.ID, "Could not download the file: "+err.Error())
			return
		}
		data, err := fetchBytes(url)
		if err != nil {
			b.send(msg.Chat.ID, "Could not download the file: "+err.Error())
			return
		}
		n, err := b.auth.ImportJSON(data)
		if err != nil {
			b.send(msg.Chat.ID, "Cookie import rejected: "+err.Error())
			return
		}
		if err := b.auth.SaveFile(cookiesFile); err != nil {
			slog.Warn("cookie persist failed", "error", err.Error())
		}
		b.send(msg.Chat.ID, fmt.Sprintf("Imported %d cookies. Personal recommendations are on.", n))
		return
	}

	err := b.store.Add(store.Files, store.Record{
		"name": doc.FileName, "file_id": doc.FileID, "file_size": doc.FileSize,
		"mime_type": doc.MimeType, "date": time.Now().Format(time.RFC3339),
	}, "")
	b.reportSave(msg.Chat.ID, "File \""+doc.FileName+"\"", err)
}

func (b *bot) sendMainMenu(chatID int64) {
	auth := "anonymous mode (send cookies for personal results)"
	if b.auth.Authenticated() {
		auth = "personal recommendations enabled"
	}
	msg := tgbotapi.NewMessage(chatID, "Main menu — "+auth)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Avatars 1:1", "fetch_avatars")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Desktop wallpapers 16:9", "fetch_wallpapers_pc")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Phone wallpapers 9:16", "fetch_wallpapers_phone")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Game settings", "games"),
			tgbotapi.NewInlineKeyboardButtonData("Notes", "notes")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Add note", "add_note"),
			tgbotapi.NewInlineKeyboardButtonData("Formats", "formats")),
	)
	_, _ = b.api.Send(msg)
}

func (b *bot) sendList(chatID int64, category, titleKey string) {
	items := b.store.List(category, "")
	if len(items) == 0 {
		b.send(chatID, "Nothing saved yet.")
		return
	}
	var sb strings.Builder
	for i, item := range items {
		title, _ := item[titleKey].(string)
		fmt.Fprintf(&sb, "%d. %s\n", i+1, title)
	}
	b.send(chatID, sb.String())
}

func (b *bot) await(chatID int64, kind string) {
	b.mu.Lock()
	b.pending[chatID] = kind
	b.mu.Unlock()
}

func (b *bot) currentGame(chatID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.games[chatID]
}

func (b *bot) reportSave(chatID int64, what string, err error) {
	if err != nil {
		slog.Error("store write failed", "error", err.Error())
		b.send(chatID, "Saving failed, try again.")
		return
	}
	b.send(chatID, what+" saved.")
}

func (b *bot) send(chatID int64, text string) {
	_, _ = b.api.Send(tgbotapi.NewMessage(chatID, text))
}

func fetchBytes(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

const formatsInfo = `Image format requirements:

Avatars — square, aspect ratio close to 1:1.
Desktop wallpapers — landscape 16:9, at least 1280x720.
Phone wallpapers — portrait 9:16, at least 720x1280.

Advertising is filtered out automatically.`
