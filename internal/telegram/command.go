// Package telegram is the bot transport: typed callback commands, the
// rate-limited outbound dispatcher, keyboards, message formatting and the
// update router.
package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/sommelier/internal/catalog"
	"github.com/abhisek/sommelier/internal/questiongen"
	"github.com/abhisek/sommelier/internal/session"
)

// Kind identifies a callback command.
type Kind int

const (
	KindMainMenu Kind = iota + 1
	KindLearningMenu
	KindStartTest // Mode
	KindAnswer    // Label, QuestionID
	KindNextQuestion
	KindFinishTest
	KindStats
	KindAchievements
	KindChallenges
	KindLeaderboard
	KindCatalogue
	KindCategory  // Category
	KindSugarMenu // wines only
	KindSugar     // Arg
	KindDrink     // Arg (item id)
	KindAsk       // Arg (item id, may be empty)
	KindShop
	KindBuy // ID
	KindResetConfirm
	KindAdminUserInfo // ID
	KindAdminRefresh
)

// ErrUnknownCommand is returned for callback data no command encodes to.
var ErrUnknownCommand = errors.New("unknown command")

// MaxCallbackData is Telegram's limit on callback_data bytes.
const MaxCallbackData = 64

// Command is a parsed callback. Only the fields its Kind names are set.
type Command struct {
	Kind       Kind
	Mode       session.Mode
	Label      string
	QuestionID string
	Category   catalog.Category
	Arg        string
	ID         int64
}

// fixed maps argument-less commands to their data.
var fixed = map[Kind]string{
	KindMainMenu:     "main_menu",
	KindLearningMenu: "learning_menu",
	KindNextQuestion: "learning_next",
	KindFinishTest:   "learning_finish",
	KindStats:        "learning_stats",
	KindAchievements: "learning_achievements",
	KindChallenges:   "learning_challenges",
	KindLeaderboard:  "leaderboard",
	KindCatalogue:    "catalog",
	KindSugarMenu:    "filter_sugar_wines",
	KindShop:         "shop",
	KindResetConfirm: "reset_confirm",
	KindAdminRefresh: "admin_refresh_catalog",
}

var fixedByData = func() map[string]Kind {
	m := make(map[string]Kind, len(fixed))
	for k, v := range fixed {
		m[v] = k
	}
	return m
}()

const (
	prefixStart     = "learning_start_"
	prefixAnswer    = "learning_answer_"
	prefixCategory  = "category_"
	prefixSugar     = "sugar_"
	prefixDrink     = "drink_"
	prefixAsk       = "ask_"
	prefixBuy       = "buy_reward_"
	prefixAdminUser = "admin_user_info_"
)

// Data encodes c as callback data.
func (c Command) Data() string {
	if d, ok := fixed[c.Kind]; ok {
		return d
	}
	switch c.Kind {
	case KindStartTest:
		return prefixStart + string(c.Mode)
	case KindAnswer:
		if c.QuestionID == "" {
			return prefixAnswer + c.Label
		}
		return prefixAnswer + c.Label + "_" + c.QuestionID
	case KindCategory:
		return prefixCategory + string(c.Category)
	case KindSugar:
		return prefixSugar + strings.ReplaceAll(c.Arg, " ", "+")
	case KindDrink:
		return prefixDrink + c.Arg
	case KindAsk:
		return prefixAsk + c.Arg
	case KindBuy:
		return prefixBuy + strconv.FormatInt(c.ID, 10)
	case KindAdminUserInfo:
		return prefixAdminUser + strconv.FormatInt(c.ID, 10)
	}
	return ""
}

// ParseCallback decodes callback data into a Command.
func ParseCallback(data string) (Command, error) {
	if k, ok := fixedByData[data]; ok {
		return Command{Kind: k}, nil
	}

	switch {
	case strings.HasPrefix(data, prefixStart):
		mode, err := session.ParseMode(strings.TrimPrefix(data, prefixStart))
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, data)
		}
		return Command{Kind: KindStartTest, Mode: mode}, nil

	case strings.HasPrefix(data, prefixAnswer):
		label, qid, _ := strings.Cut(strings.TrimPrefix(data, prefixAnswer), "_")
		if !questiongen.ValidLabel(label) {
			return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, data)
		}
		return Command{Kind: KindAnswer, Label: label, QuestionID: qid}, nil

	case strings.HasPrefix(data, prefixCategory):
		cat, err := catalog.ParseCategory(strings.TrimPrefix(data, prefixCategory))
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, data)
		}
		return Command{Kind: KindCategory, Category: cat}, nil

	case strings.HasPrefix(data, prefixSugar):
		return argCommand(KindSugar, data, strings.ReplaceAll(strings.TrimPrefix(data, prefixSugar), "+", " "))

	case strings.HasPrefix(data, prefixDrink):
		return argCommand(KindDrink, data, strings.TrimPrefix(data, prefixDrink))

	case strings.HasPrefix(data, prefixAsk):
		return Command{Kind: KindAsk, Arg: strings.TrimPrefix(data, prefixAsk)}, nil

	case strings.HasPrefix(data, prefixBuy):
		return idCommand(KindBuy, data, strings.TrimPrefix(data, prefixBuy))

	case strings.HasPrefix(data, prefixAdminUser):
		return idCommand(KindAdminUserInfo, data, strings.TrimPrefix(data, prefixAdminUser))
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, data)
}

func argCommand(k Kind, data, arg string) (Command, error) {
	if arg == "" {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, data)
	}
	return Command{Kind: k, Arg: arg}, nil
}

func idCommand(k Kind, data, raw string) (Command, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, data)
	}
	return Command{Kind: k, ID: id}, nil
}
