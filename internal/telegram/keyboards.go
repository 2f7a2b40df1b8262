package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abhisek/sommelier/internal/catalog"
	"github.com/abhisek/sommelier/internal/questiongen"
	"github.com/abhisek/sommelier/internal/session"
	"github.com/abhisek/sommelier/internal/store"
)

func button(text string, c Command) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, c.Data())
}

func row(buttons ...tgbotapi.InlineKeyboardButton) []tgbotapi.InlineKeyboardButton {
	return buttons
}

func keyboard(rows ...[]tgbotapi.InlineKeyboardButton) *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

var backToMenu = row(button("⬅️ Main menu", Command{Kind: KindMainMenu}))

// MainMenu is the root keyboard. webAppURL adds a button to the web app.
func MainMenu(webAppURL string) *tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		row(button("🎓 Learning", Command{Kind: KindLearningMenu}), button("🍷 Drinks", Command{Kind: KindCatalogue})),
		row(button("📊 My stats", Command{Kind: KindStats}), button("🏆 Leaderboard", Command{Kind: KindLeaderboard})),
		row(button("🎯 Daily challenges", Command{Kind: KindChallenges}), button("🎁 Rewards", Command{Kind: KindShop})),
		row(button("🤵 Ask the sommelier", Command{Kind: KindAsk})),
	}
	if webAppURL != "" {
		rows = append(rows, row(tgbotapi.NewInlineKeyboardButtonURL("🌐 Open the web app", webAppURL)))
	}
	return keyboard(rows...)
}

// LearningMenu offers the three session modes.
func LearningMenu() *tgbotapi.InlineKeyboardMarkup {
	return keyboard(
		row(button("⚡ Quick test (5)", Command{Kind: KindStartTest, Mode: session.ModeQuick})),
		row(button("🤖 AI test (10)", Command{Kind: KindStartTest, Mode: session.ModeAI})),
		row(button("🎯 Personal test (8)", Command{Kind: KindStartTest, Mode: session.ModePersonalized})),
		row(button("🏅 Achievements", Command{Kind: KindAchievements}), button("📊 Stats", Command{Kind: KindStats})),
		backToMenu,
	)
}

// AnswerKeyboard has one button per option, bound to the question id so a
// stale keyboard cannot answer a later question.
func AnswerKeyboard(q *questiongen.Question) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, o := range q.Options {
		c := Command{Kind: KindAnswer, Label: o.Label, QuestionID: q.ID}
		if len(c.Data()) > MaxCallbackData {
			c.QuestionID = ""
		}
		rows = append(rows, row(button(o.Label+") "+o.Text, c)))
	}
	rows = append(rows, row(button("⏹ Finish test", Command{Kind: KindFinishTest})))
	return keyboard(rows...)
}

// AfterSession follows a session summary.
func AfterSession() *tgbotapi.InlineKeyboardMarkup {
	return keyboard(
		row(button("🔁 New test", Command{Kind: KindLearningMenu}), button("📊 Stats", Command{Kind: KindStats})),
		backToMenu,
	)
}

// CategoryMenu lists the catalogue categories that have items.
func CategoryMenu(items []catalog.Item) *tgbotapi.InlineKeyboardMarkup {
	groups := catalog.ByCategory(items)
	var rows [][]tgbotapi.InlineKeyboardButton
	var pair []tgbotapi.InlineKeyboardButton
	for _, c := range catalog.AllCategories {
		n := len(groups[c])
		if n == 0 {
			continue
		}
		pair = append(pair, button(fmt.Sprintf("%s (%d)", c.Title(), n), Command{Kind: KindCategory, Category: c}))
		if len(pair) == 2 {
			rows = append(rows, pair)
			pair = nil
		}
	}
	if len(pair) > 0 {
		rows = append(rows, pair)
	}
	rows = append(rows, row(button("🍬 Wines by sweetness", Command{Kind: KindSugarMenu})), backToMenu)
	return keyboard(rows...)
}

// SugarMenu lists the sugar levels found among wines.
func SugarMenu(items []catalog.Item) *tgbotapi.InlineKeyboardMarkup {
	var wines []catalog.Item
	for _, it := range items {
		if it.Category.IsWine() {
			wines = append(wines, it)
		}
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, s := range catalog.Values(wines, "sugar") {
		rows = append(rows, row(button(s, Command{Kind: KindSugar, Arg: s})))
	}
	rows = append(rows, row(button("⬅️ Drinks", Command{Kind: KindCatalogue})))
	return keyboard(rows...)
}

// maxListButtons bounds drink lists; Telegram rejects very large keyboards.
const maxListButtons = 30

// DrinkList has one button per item.
func DrinkList(items []catalog.Item) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, it := range items {
		if i == maxListButtons {
			break
		}
		rows = append(rows, row(button(it.Name, Command{Kind: KindDrink, Arg: it.ID})))
	}
	rows = append(rows, row(button("⬅️ Drinks", Command{Kind: KindCatalogue})))
	return keyboard(rows...)
}

// DrinkActions follows a drink card.
func DrinkActions(it catalog.Item) *tgbotapi.InlineKeyboardMarkup {
	return keyboard(
		row(button("🤵 Ask about this drink", Command{Kind: KindAsk, Arg: it.ID})),
		row(button("⬅️ "+it.Category.Title(), Command{Kind: KindCategory, Category: it.Category})),
	)
}

// ShopKeyboard has one buy button per item in stock.
func ShopKeyboard(items []store.RewardItem) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, it := range items {
		if it.QuantityLeft == 0 {
			continue
		}
		rows = append(rows, row(button(fmt.Sprintf("%s · %d XP", it.Name, it.Price), Command{Kind: KindBuy, ID: it.ID})))
	}
	rows = append(rows, backToMenu)
	return keyboard(rows...)
}

// ResetConfirm asks before wiping progress.
func ResetConfirm() *tgbotapi.InlineKeyboardMarkup {
	return keyboard(
		row(button("⚠️ Yes, reset my progress", Command{Kind: KindResetConfirm})),
		row(button("Cancel", Command{Kind: KindMainMenu})),
	)
}

// AdminMenu is shown to admins only.
func AdminMenu(users []store.User) *tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		row(button("🔄 Refresh catalogue", Command{Kind: KindAdminRefresh})),
	}
	for _, u := range users {
		name := u.DisplayName
		if name == "" {
			name = fmt.Sprint(u.ChatID)
		}
		rows = append(rows, row(button("👤 "+name, Command{Kind: KindAdminUserInfo, ID: u.ChatID})))
	}
	return keyboard(rows...)
}

// MenuOnly is a single back-to-menu button.
func MenuOnly() *tgbotapi.InlineKeyboardMarkup {
	return keyboard(backToMenu)
}
