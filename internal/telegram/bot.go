package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abhisek/sommelier/internal/catalog"
	"github.com/abhisek/sommelier/internal/learning"
	"github.com/abhisek/sommelier/internal/questiongen"
	"github.com/abhisek/sommelier/internal/rewards"
	"github.com/abhisek/sommelier/internal/session"
	"github.com/abhisek/sommelier/internal/store"
)

// CatalogueAdmin refreshes the catalogue on admin request.
type CatalogueAdmin interface {
	Refresh(ctx context.Context) (int, error)
}

// Options configures a Bot.
type Options struct {
	WebAppURL  string
	IsAdmin    func(chatID int64) bool
	PendingTTL time.Duration // how long a free-text prompt stays open, default 10m
}

// Bot routes updates to the learning service and replies through the
// dispatcher. Every handler reports its own failures to the user; nothing
// propagates to the transport.
type Bot struct {
	learning *learning.Service
	shop     *rewards.Shop
	catalog  CatalogueAdmin
	out      *Dispatcher
	pending  *pendingStore
	opts     Options
	logger   *slog.Logger
}

// NewBot creates a Bot.
func NewBot(l *learning.Service, shop *rewards.Shop, cat CatalogueAdmin, out *Dispatcher, opts Options, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = 10 * time.Minute
	}
	if opts.IsAdmin == nil {
		opts.IsAdmin = func(int64) bool { return false }
	}
	return &Bot{
		learning: l,
		shop:     shop,
		catalog:  cat,
		out:      out,
		pending:  newPendingStore(4096, opts.PendingTTL),
		opts:     opts,
		logger:   logger,
	}
}

// HandleUpdate processes one update. It never panics.
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("update handler panicked", "update_id", u.UpdateID, "panic", r, "stack", string(debug.Stack()))
		}
	}()

	switch {
	case u.CallbackQuery != nil:
		b.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil:
		b.handleMessage(ctx, u.Message)
	}
}

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	return name
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	if m.Chat == nil {
		return
	}
	chatID := m.Chat.ID
	name := displayName(m.From)

	if m.IsCommand() {
		b.pending.clear(chatID)
		b.handleCommand(ctx, chatID, name, m.Command(), strings.TrimSpace(m.CommandArguments()))
		return
	}

	text := strings.TrimSpace(m.Text)
	if text == "" {
		return
	}
	if in, ok := b.pending.take(chatID); ok {
		switch in.kind {
		case awaitQuestion:
			b.consult(ctx, chatID, text, in.itemID)
		case awaitFeedback:
			b.feedback(ctx, chatID, name, text)
		}
		return
	}
	b.search(ctx, chatID, text)
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, name, command, args string) {
	switch command {
	case "start", "menu":
		if _, err := b.learning.Register(ctx, chatID, name); err != nil {
			b.logger.Warn("register user failed", "chat_id", chatID, "error", err)
		}
		b.out.Send(ctx, chatID, welcomeText, MainMenu(b.opts.WebAppURL))
	case "help":
		b.out.Send(ctx, chatID, helpText, MenuOnly())
	case "test", "quiz", "learn":
		b.out.Send(ctx, chatID, "🎓 <b>Choose a test</b>", LearningMenu())
	case "stats":
		b.showStats(ctx, chatID, 0)
	case "achievements":
		b.showAchievements(ctx, chatID, 0)
	case "challenges":
		b.showChallenges(ctx, chatID, 0)
	case "leaderboard", "top":
		b.showLeaderboard(ctx, chatID, 0)
	case "shop", "rewards":
		b.showShop(ctx, chatID, 0)
	case "search":
		if args == "" {
			b.out.Send(ctx, chatID, "Send a drink name to search, e.g. <code>/search barolo</code>.", nil)
			return
		}
		b.search(ctx, chatID, args)
	case "ask":
		if args == "" {
			b.pending.set(chatID, awaitQuestion, "")
			b.out.Send(ctx, chatID, "🤵 What would you like to ask the sommelier?", nil)
			return
		}
		b.consult(ctx, chatID, args, "")
	case "feedback":
		if args == "" {
			b.pending.set(chatID, awaitFeedback, "")
			b.out.Send(ctx, chatID, "✍️ Write your feedback in the next message.", nil)
			return
		}
		b.feedback(ctx, chatID, name, args)
	case "reset":
		b.out.Send(ctx, chatID, "This deletes all your tests, answers, achievements and challenges. Your rewards stay. Continue?", ResetConfirm())
	case "admin":
		if !b.opts.IsAdmin(chatID) {
			b.out.Send(ctx, chatID, "Unknown command. Send /help to see what I can do.", nil)
			return
		}
		b.showAdmin(ctx, chatID)
	default:
		b.out.Send(ctx, chatID, "Unknown command. Send /help to see what I can do.", nil)
	}
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if q.Message == nil || q.Message.Chat == nil {
		b.out.AnswerCallback(ctx, q.ID, "")
		return
	}
	chatID, msgID := q.Message.Chat.ID, q.Message.MessageID

	cmd, err := ParseCallback(q.Data)
	if err != nil {
		b.logger.Warn("unknown callback", "chat_id", chatID, "data", q.Data)
		b.out.AnswerCallback(ctx, q.ID, "Unknown action")
		return
	}

	var toast string
	switch cmd.Kind {
	case KindMainMenu:
		b.pending.clear(chatID)
		b.out.Edit(ctx, chatID, msgID, welcomeText, MainMenu(b.opts.WebAppURL))
	case KindLearningMenu:
		b.out.Edit(ctx, chatID, msgID, "🎓 <b>Choose a test</b>", LearningMenu())
	case KindStartTest:
		b.startTest(ctx, chatID, displayName(q.From), cmd.Mode)
	case KindAnswer:
		toast = b.answer(ctx, chatID, msgID, cmd)
	case KindNextQuestion:
		b.nextQuestion(ctx, chatID)
	case KindFinishTest:
		toast = b.finish(ctx, chatID)
	case KindStats:
		b.showStats(ctx, chatID, msgID)
	case KindAchievements:
		b.showAchievements(ctx, chatID, msgID)
	case KindChallenges:
		b.showChallenges(ctx, chatID, msgID)
	case KindLeaderboard:
		b.showLeaderboard(ctx, chatID, msgID)
	case KindCatalogue:
		items, _ := b.learning.Catalogue().Get(ctx)
		b.out.Edit(ctx, chatID, msgID, "🍷 <b>Choose a category</b>", CategoryMenu(items))
	case KindCategory:
		items := b.learning.Catalogue().Filter(ctx, catalog.Filter{Category: cmd.Category})
		b.showDrinkList(ctx, chatID, msgID, cmd.Category.Title(), items)
	case KindSugarMenu:
		items, _ := b.learning.Catalogue().Get(ctx)
		b.out.Edit(ctx, chatID, msgID, "🍬 <b>Wines by sweetness</b>", SugarMenu(items))
	case KindSugar:
		items := b.learning.Catalogue().Filter(ctx, catalog.Filter{Sugar: cmd.Arg})
		b.showDrinkList(ctx, chatID, msgID, "Sugar: "+cmd.Arg, items)
	case KindDrink:
		toast = b.showDrink(ctx, chatID, msgID, cmd.Arg)
	case KindAsk:
		b.pending.set(chatID, awaitQuestion, cmd.Arg)
		prompt := "🤵 What would you like to ask the sommelier?"
		if it, ok := b.learning.Catalogue().Find(ctx, cmd.Arg); ok {
			prompt = fmt.Sprintf("🤵 What would you like to know about <b>%s</b>?", esc(it.Name))
		}
		b.out.Send(ctx, chatID, prompt, nil)
	case KindShop:
		b.showShop(ctx, chatID, msgID)
	case KindBuy:
		toast = b.buy(ctx, chatID, msgID, cmd.ID)
	case KindResetConfirm:
		b.reset(ctx, chatID, msgID)
	case KindAdminUserInfo:
		toast = b.adminUserInfo(ctx, chatID, cmd.ID)
	case KindAdminRefresh:
		toast = b.adminRefresh(ctx, chatID)
	default:
		toast = "Unknown action"
	}
	b.out.AnswerCallback(ctx, q.ID, toast)
}

func (b *Bot) startTest(ctx context.Context, chatID int64, name string, mode session.Mode) {
	st, err := b.learning.Start(ctx, chatID, name, mode)
	if err != nil {
		b.logger.Warn("start test failed", "chat_id", chatID, "mode", mode, "error", err)
		b.out.Send(ctx, chatID, "Sorry, I could not prepare a test right now. Please try again in a moment.", MenuOnly())
		return
	}
	intro := fmt.Sprintf("🎓 <b>%s</b>: %d questions at %s level. Good luck!", esc(mode.Title()), st.Target, st.Difficulty)
	b.out.Send(ctx, chatID, intro, nil)
	b.sendQuestion(ctx, chatID, st.Current, st)
}

func (b *Bot) sendQuestion(ctx context.Context, chatID int64, q *questiongen.Question, st *session.State) {
	if q == nil {
		return
	}
	b.out.Send(ctx, chatID, FormatQuestion(q, st), AnswerKeyboard(q))
}

func (b *Bot) answer(ctx context.Context, chatID int64, msgID int, cmd Command) string {
	out, err := b.learning.Answer(ctx, chatID, cmd.QuestionID, cmd.Label)
	switch {
	case errors.Is(err, learning.ErrNoSession):
		b.out.Send(ctx, chatID, "You have no active test. Start a new one:", LearningMenu())
		return "No active test"
	case errors.Is(err, session.ErrFinished):
		return "This test is already finished"
	case errors.Is(err, session.ErrQuestionMismatch), errors.Is(err, session.ErrNoQuestion):
		return "That question was already answered"
	case err != nil:
		b.logger.Warn("answer failed", "chat_id", chatID, "error", err)
		return "Something went wrong, please try again"
	}

	b.out.Edit(ctx, chatID, msgID, FormatResult(out.Result), nil)
	if text := FormatUnlocked(out.Achievements, out.Challenges); text != "" {
		b.out.Send(ctx, chatID, text, nil)
	}
	switch {
	case out.Summary != nil:
		b.out.Send(ctx, chatID, FormatSummary(out.Summary), AfterSession())
	case out.Next != nil:
		b.sendQuestion(ctx, chatID, out.Next, out.State)
	default:
		b.out.Send(ctx, chatID, "I could not prepare the next question.",
			keyboard(row(button("🔁 Try again", Command{Kind: KindNextQuestion})), backToMenu))
	}
	if out.Result.Correct {
		return "✅ Correct!"
	}
	return "❌ Incorrect"
}

func (b *Bot) nextQuestion(ctx context.Context, chatID int64) {
	q, err := b.learning.NextQuestion(ctx, chatID)
	if err != nil {
		if !errors.Is(err, learning.ErrNoSession) && !errors.Is(err, session.ErrFinished) {
			b.logger.Warn("next question failed", "chat_id", chatID, "error", err)
		}
		b.out.Send(ctx, chatID, "There is no test in progress. Start a new one:", LearningMenu())
		return
	}
	b.sendQuestion(ctx, chatID, q, b.learning.Current(chatID))
}

func (b *Bot) finish(ctx context.Context, chatID int64) string {
	fin, err := b.learning.Finish(ctx, chatID)
	if errors.Is(err, learning.ErrNoSession) {
		return "No active test"
	}
	if err != nil {
		b.logger.Warn("finish failed", "chat_id", chatID, "error", err)
		return "Something went wrong, please try again"
	}
	if text := FormatUnlocked(fin.Achievements, fin.Challenges); text != "" {
		b.out.Send(ctx, chatID, text, nil)
	}
	b.out.Send(ctx, chatID, FormatSummary(fin.Summary), AfterSession())
	return ""
}

// show edits msgID when set and sends a new message otherwise.
func (b *Bot) show(ctx context.Context, chatID int64, msgID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	if msgID == 0 {
		b.out.Send(ctx, chatID, text, kb)
		return
	}
	b.out.Edit(ctx, chatID, msgID, text, kb)
}

// notStarted is shown for users the store does not know yet.
const notStarted = "You have no progress yet. Take your first test!"

func (b *Bot) showStats(ctx context.Context, chatID int64, msgID int) {
	stats, err := b.learning.Stats(ctx, chatID)
	if err != nil {
		b.softError(ctx, chatID, msgID, "load stats", err)
		return
	}
	b.show(ctx, chatID, msgID, FormatStats(stats), LearningMenu())
}

func (b *Bot) showAchievements(ctx context.Context, chatID int64, msgID int) {
	list, err := b.learning.Achievements(ctx, chatID)
	if err != nil {
		b.softError(ctx, chatID, msgID, "load achievements", err)
		return
	}
	b.show(ctx, chatID, msgID, FormatAchievements(list), MenuOnly())
}

func (b *Bot) showChallenges(ctx context.Context, chatID int64, msgID int) {
	list, err := b.learning.DailyChallenges(ctx, chatID)
	if err != nil {
		b.softError(ctx, chatID, msgID, "load challenges", err)
		return
	}
	b.show(ctx, chatID, msgID, FormatChallenges(list), MenuOnly())
}

func (b *Bot) showLeaderboard(ctx context.Context, chatID int64, msgID int) {
	users, err := b.learning.Leaderboard(ctx, 10)
	if err != nil {
		b.softError(ctx, chatID, msgID, "load leaderboard", err)
		return
	}
	b.show(ctx, chatID, msgID, FormatLeaderboard(users, chatID), MenuOnly())
}

func (b *Bot) showShop(ctx context.Context, chatID int64, msgID int) {
	items, err := b.shop.Items(ctx)
	if err != nil {
		b.softError(ctx, chatID, msgID, "load rewards", err)
		return
	}
	xp := 0
	if u, err := b.learning.User(ctx, chatID); err == nil {
		xp = u.Experience
	}
	b.show(ctx, chatID, msgID, FormatShop(items, xp), ShopKeyboard(items))
}

func (b *Bot) buy(ctx context.Context, chatID int64, msgID int, itemID int64) string {
	p, err := b.shop.Buy(ctx, chatID, itemID)
	if err != nil {
		b.showShop(ctx, chatID, msgID)
		return rewards.Message(err)
	}
	name := "your reward"
	if items, err := b.shop.Items(ctx); err == nil {
		for _, it := range items {
			if it.ID == p.ItemID {
				name = it.Name
			}
		}
	}
	b.out.Send(ctx, chatID, fmt.Sprintf("🎉 You bought <b>%s</b> for %d XP. Show this message to your manager.\nOrder: <code>%s</code>",
		esc(name), p.Price, p.ID), MenuOnly())
	return "Purchased!"
}

func (b *Bot) showDrinkList(ctx context.Context, chatID int64, msgID int, title string, items []catalog.Item) {
	if len(items) == 0 {
		b.out.Edit(ctx, chatID, msgID, "Nothing found in "+esc(title)+".", DrinkList(nil))
		return
	}
	b.out.Edit(ctx, chatID, msgID, fmt.Sprintf("<b>%s</b> · %d drinks", esc(title), len(items)), DrinkList(items))
}

func (b *Bot) showDrink(ctx context.Context, chatID int64, msgID int, id string) string {
	it, ok := b.learning.Catalogue().Find(ctx, id)
	if !ok {
		return "Drink not found"
	}
	if it.ImageURL != "" {
		if _, err := b.out.SendPhoto(ctx, chatID, it.ImageURL, FormatDrink(it), DrinkActions(it)); err == nil {
			return ""
		}
	}
	b.out.Edit(ctx, chatID, msgID, FormatDrink(it), DrinkActions(it))
	return ""
}

func (b *Bot) search(ctx context.Context, chatID int64, query string) {
	items := b.learning.Catalogue().Filter(ctx, catalog.Filter{Query: query, Limit: 10})
	if len(items) == 0 {
		b.out.Send(ctx, chatID, fmt.Sprintf("No drinks match “%s”. Try another name or browse the list.", esc(query)),
			keyboard(row(button("🍷 Drinks", Command{Kind: KindCatalogue}))))
		return
	}
	b.out.Send(ctx, chatID, fmt.Sprintf("🔎 Results for “%s”:", esc(query)), DrinkList(items))
}

func (b *Bot) consult(ctx context.Context, chatID int64, question, itemID string) {
	ans := b.learning.Consult(ctx, question, itemID)
	b.out.Send(ctx, chatID, "🤵 "+esc(ans.Text), MenuOnly())
}

func (b *Bot) feedback(ctx context.Context, chatID int64, name, text string) {
	if err := b.learning.Feedback(ctx, chatID, name, text); err != nil {
		b.logger.Warn("store feedback failed", "chat_id", chatID, "error", err)
		b.out.Send(ctx, chatID, "Sorry, I could not save your feedback. Please try again later.", MenuOnly())
		return
	}
	b.out.Send(ctx, chatID, "🙏 Thank you! Your feedback was sent to the team.", MenuOnly())
}

func (b *Bot) reset(ctx context.Context, chatID int64, msgID int) {
	err := b.learning.Reset(ctx, chatID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		b.out.Edit(ctx, chatID, msgID, "There is nothing to reset yet.", MenuOnly())
	case err != nil:
		b.logger.Warn("reset failed", "chat_id", chatID, "error", err)
		b.out.Edit(ctx, chatID, msgID, "Sorry, the reset failed. Please try again later.", MenuOnly())
	default:
		b.out.Edit(ctx, chatID, msgID, "🧹 Your progress has been reset. Ready for a fresh start?", LearningMenu())
	}
}

func (b *Bot) showAdmin(ctx context.Context, chatID int64) {
	users, err := b.learning.Leaderboard(ctx, 10)
	if err != nil {
		b.logger.Warn("admin user list failed", "error", err)
	}
	b.out.Send(ctx, chatID, "🛠 <b>Admin</b>", AdminMenu(users))
}

func (b *Bot) adminUserInfo(ctx context.Context, chatID, userID int64) string {
	if !b.opts.IsAdmin(chatID) {
		return "Not allowed"
	}
	u, err := b.learning.User(ctx, userID)
	if err != nil {
		return "User not found"
	}
	b.out.Send(ctx, chatID, FormatUserInfo(u), nil)
	return ""
}

func (b *Bot) adminRefresh(ctx context.Context, chatID int64) string {
	if !b.opts.IsAdmin(chatID) {
		return "Not allowed"
	}
	if b.catalog == nil {
		return "No catalogue source configured"
	}
	n, err := b.catalog.Refresh(ctx)
	if err != nil {
		b.out.Send(ctx, chatID, "⚠️ Refresh failed: "+esc(err.Error())+"\nThe previous or built-in list is still served.", nil)
		return "Refresh failed"
	}
	b.out.Send(ctx, chatID, fmt.Sprintf("✅ Catalogue refreshed: %d items.", n), nil)
	return ""
}

// softError tells the user something could not be shown. Unknown users get
// a nudge to start; other failures are logged.
func (b *Bot) softError(ctx context.Context, chatID int64, msgID int, what string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		b.show(ctx, chatID, msgID, notStarted, LearningMenu())
		return
	}
	b.logger.Warn(what+" failed", "chat_id", chatID, "error", err)
	b.show(ctx, chatID, msgID, "Sorry, that is unavailable right now. Please try again later.", MenuOnly())
}
