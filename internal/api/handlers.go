package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/sommelier/internal/catalog"
	"github.com/abhisek/sommelier/internal/learning"
	"github.com/abhisek/sommelier/internal/questiongen"
	"github.com/abhisek/sommelier/internal/session"
	"github.com/abhisek/sommelier/internal/store"
)

// queryChatID reads the chatId query parameter, answering 400 when it is
// missing or malformed.
func queryChatID(c *gin.Context) (int64, bool) {
	raw := c.Query("chatId")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chatId is required"})
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chatId must be an integer"})
		return 0, false
	}
	return id, true
}

// fail maps domain errors to HTTP responses.
func (s *Server) fail(c *gin.Context, what string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, learning.ErrNoSession):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found or expired"})
	case errors.Is(err, session.ErrFinished):
		c.JSON(http.StatusConflict, gin.H{"error": "test is already finished"})
	case errors.Is(err, session.ErrQuestionMismatch), errors.Is(err, session.ErrNoQuestion):
		c.JSON(http.StatusConflict, gin.H{"error": "question was already answered"})
	case errors.Is(err, session.ErrInvalidOption):
		c.JSON(http.StatusBadRequest, gin.H{"error": "answer must be one of A, B, C, D"})
	default:
		s.logger.Warn(what+" failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (s *Server) userStats(c *gin.Context) {
	chatID, ok := queryChatID(c)
	if !ok {
		return
	}
	stats, err := s.learning.Stats(c.Request.Context(), chatID)
	if err != nil {
		s.fail(c, "user stats", err)
		return
	}
	c.JSON(http.StatusOK, statsResponse{User: toUser(stats.User), UserStats: stats})
}

func (s *Server) userAchievements(c *gin.Context) {
	chatID, ok := queryChatID(c)
	if !ok {
		return
	}
	list, err := s.learning.Achievements(c.Request.Context(), chatID)
	if err != nil {
		s.fail(c, "user achievements", err)
		return
	}
	unlocked := 0
	for _, a := range list {
		if a.Unlocked {
			unlocked++
		}
	}
	c.JSON(http.StatusOK, gin.H{"achievements": toAchievements(list), "unlocked": unlocked, "total": len(list)})
}

func (s *Server) dailyChallenges(c *gin.Context) {
	chatID, ok := queryChatID(c)
	if !ok {
		return
	}
	list, err := s.learning.DailyChallenges(c.Request.Context(), chatID)
	if err != nil {
		s.fail(c, "daily challenges", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"challenges": toChallenges(list)})
}

func (s *Server) drinks(c *gin.Context) {
	var f catalog.Filter
	if raw := c.Query("category"); raw != "" && raw != "all" {
		cat, err := catalog.ParseCategory(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f.Category = cat
	}
	f.Sugar = c.Query("sugar")
	f.Country = c.Query("country")
	f.Query = c.Query("search")
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		f.Limit = n
	}

	ctx := c.Request.Context()
	_, source := s.learning.Catalogue().Get(ctx)
	items := s.learning.Catalogue().Filter(ctx, f)
	if items == nil {
		items = []catalog.Item{}
	}
	c.JSON(http.StatusOK, gin.H{"drinks": items, "count": len(items), "source": source})
}

func (s *Server) leaderboard(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}
	users, err := s.learning.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, "leaderboard", err)
		return
	}
	out := make([]gin.H, len(users))
	for i, u := range users {
		out[i] = gin.H{"rank": i + 1, "displayName": u.DisplayName, "level": u.Level(), "experience": u.Experience, "accuracy": u.Accuracy()}
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": out})
}

type consultationRequest struct {
	Question string `json:"question"`
	WineID   string `json:"wineId"`
	ChatID   int64  `json:"chatId"`
}

func (s *Server) consultation(c *gin.Context) {
	var req consultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}
	ans := s.learning.Consult(c.Request.Context(), req.Question, req.WineID)
	s.logger.Debug("consultation answered", "chat_id", req.ChatID, "cached", ans.Cached, "fallback", ans.Fallback)
	c.JSON(http.StatusOK, ans)
}

type startRequest struct {
	ChatID      int64  `json:"chatId" binding:"required"`
	DisplayName string `json:"displayName"`
	Mode        string `json:"mode"`
}

func (s *Server) startQuickTest(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chatId is required"})
		return
	}
	mode := session.ModeQuick
	if req.Mode != "" {
		m, err := session.ParseMode(req.Mode)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		mode = m
	}
	st, err := s.learning.Start(c.Request.Context(), req.ChatID, req.DisplayName, mode)
	if err != nil {
		s.fail(c, "start test", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessionId":  st.ID,
		"mode":       st.Mode,
		"difficulty": st.Difficulty,
		"target":     st.Target,
		"question":   st.Current,
	})
}

type sessionRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// sessionChat resolves a session id to the chat that owns the live session.
func (s *Server) sessionChat(c *gin.Context, sessionID string) (int64, bool) {
	chatID, ok := s.learning.Sessions().ChatFor(sessionID)
	if ok {
		if st := s.learning.Current(chatID); st != nil && st.ID == sessionID {
			return chatID, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "session not found or expired"})
	return 0, false
}

func (s *Server) getTestQuestion(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
		return
	}
	chatID, ok := s.sessionChat(c, req.SessionID)
	if !ok {
		return
	}
	q, err := s.learning.NextQuestion(c.Request.Context(), chatID)
	if err != nil {
		s.fail(c, "next question", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"question": q, "progress": toProgress(s.learning.Current(chatID))})
}

type submitRequest struct {
	SessionID  string `json:"sessionId" binding:"required"`
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer" binding:"required"`
	IsCorrect  *bool  `json:"isCorrect"`
}

func (s *Server) submitTestAnswer(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId and answer are required"})
		return
	}
	chatID, ok := s.sessionChat(c, req.SessionID)
	if !ok {
		return
	}
	label := answerLabel(s.learning.Current(chatID), req.Answer)

	out, err := s.learning.Answer(c.Request.Context(), chatID, req.QuestionID, label)
	if err != nil {
		s.fail(c, "submit answer", err)
		return
	}
	if req.IsCorrect != nil && *req.IsCorrect != out.Result.Correct {
		s.logger.Warn("client grading disagrees with server",
			"chat_id", chatID, "session_id", req.SessionID, "client", *req.IsCorrect, "server", out.Result.Correct)
	}
	c.JSON(http.StatusOK, toAnswer(out))
}

// answerLabel accepts either an option label or the option's text.
func answerLabel(st *session.State, answer string) string {
	answer = strings.TrimSpace(answer)
	if label := strings.ToUpper(answer); questiongen.ValidLabel(label) {
		return label
	}
	if st == nil || st.Current == nil {
		return answer
	}
	for _, o := range st.Current.Options {
		if strings.EqualFold(o.Text, answer) {
			return o.Label
		}
	}
	return answer
}
