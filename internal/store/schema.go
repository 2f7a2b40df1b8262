package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// UsersColumns holds the columns for the "users" table.
	UsersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "chat_id", Type: field.TypeInt64, Unique: true},
		{Name: "display_name", Type: field.TypeString, Default: ""},
		{Name: "total_score", Type: field.TypeInt, Default: 0},
		{Name: "total_questions", Type: field.TypeInt, Default: 0},
		{Name: "total_correct", Type: field.TypeInt, Default: 0},
		{Name: "experience", Type: field.TypeInt, Default: 0},
		{Name: "streak", Type: field.TypeInt, Default: 0},
		{Name: "max_streak", Type: field.TypeInt, Default: 0},
		{Name: "consecutive_days", Type: field.TypeInt, Default: 0},
		{Name: "difficulty", Type: field.TypeString, Default: "beginner"},
		{Name: "last_active_day", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	UsersTable = &schema.Table{
		Name:       "users",
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
		Indexes: []*schema.Index{
			{Name: "users_experience", Columns: []*schema.Column{UsersColumns[6]}},
		},
	}

	// LearningSessionsColumns holds the columns for the "learning_sessions" table.
	LearningSessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "chat_id", Type: field.TypeInt64},
		{Name: "mode", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "target_questions", Type: field.TypeInt},
		{Name: "questions_answered", Type: field.TypeInt, Default: 0},
		{Name: "correct_answers", Type: field.TypeInt, Default: 0},
		{Name: "score", Type: field.TypeInt, Default: 0},
		{Name: "experience_gained", Type: field.TypeInt, Default: 0},
		{Name: "max_streak", Type: field.TypeInt, Default: 0},
		{Name: "start_time", Type: field.TypeTime},
		{Name: "end_time", Type: field.TypeTime, Nullable: true},
	}
	LearningSessionsTable = &schema.Table{
		Name:       "learning_sessions",
		Columns:    LearningSessionsColumns,
		PrimaryKey: []*schema.Column{LearningSessionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "learning_sessions_chat_id", Columns: []*schema.Column{LearningSessionsColumns[1]}},
			{Name: "learning_sessions_start_time", Columns: []*schema.Column{LearningSessionsColumns[10]}},
		},
	}

	// UserAnswersColumns holds the columns for the "user_answers" table.
	UserAnswersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "session_id", Type: field.TypeString},
		{Name: "chat_id", Type: field.TypeInt64},
		{Name: "question_text", Type: field.TypeString, Size: 2048},
		{Name: "chosen_option", Type: field.TypeString},
		{Name: "correct_option", Type: field.TypeString},
		{Name: "is_correct", Type: field.TypeBool},
		{Name: "category", Type: field.TypeString},
		{Name: "question_type", Type: field.TypeString},
		{Name: "response_time_ms", Type: field.TypeInt64, Default: 0},
		{Name: "points", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
	}
	UserAnswersTable = &schema.Table{
		Name:       "user_answers",
		Columns:    UserAnswersColumns,
		PrimaryKey: []*schema.Column{UserAnswersColumns[0]},
		Indexes: []*schema.Index{
			{Name: "user_answers_session_id", Columns: []*schema.Column{UserAnswersColumns[1]}},
			{Name: "user_answers_chat_id_created_at", Columns: []*schema.Column{UserAnswersColumns[2], UserAnswersColumns[11]}},
		},
	}

	// CategoryStatsColumns holds the columns for the "category_stats" table.
	CategoryStatsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "chat_id", Type: field.TypeInt64},
		{Name: "category", Type: field.TypeString},
		{Name: "total", Type: field.TypeInt, Default: 0},
		{Name: "correct", Type: field.TypeInt, Default: 0},
		{Name: "updated_at", Type: field.TypeTime},
	}
	CategoryStatsTable = &schema.Table{
		Name:       "category_stats",
		Columns:    CategoryStatsColumns,
		PrimaryKey: []*schema.Column{CategoryStatsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "category_stats_chat_id_category", Unique: true, Columns: []*schema.Column{CategoryStatsColumns[1], CategoryStatsColumns[2]}},
		},
	}

	// QuestionTypeStatsColumns holds the columns for the "question_type_stats" table.
	QuestionTypeStatsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "chat_id", Type: field.TypeInt64},
		{Name: "question_type", Type: field.TypeString},
		{Name: "total", Type: field.TypeInt, Default: 0},
		{Name: "correct", Type: field.TypeInt, Default: 0},
		{Name: "updated_at", Type: field.TypeTime},
	}
	QuestionTypeStatsTable = &schema.Table{
		Name:       "question_type_stats",
		Columns:    QuestionTypeStatsColumns,
		PrimaryKey: []*schema.Column{QuestionTypeStatsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "question_type_stats_chat_id_question_type", Unique: true, Columns: []*schema.Column{QuestionTypeStatsColumns[1], QuestionTypeStatsColumns[2]}},
		},
	}

	// AchievementsColumns holds the columns for the "achievements" table.
	AchievementsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "chat_id", Type: field.TypeInt64},
		{Name: "achievement_key", Type: field.TypeString},
		{Name: "points", Type: field.TypeInt},
		{Name: "unlocked_at", Type: field.TypeTime},
	}
	AchievementsTable = &schema.Table{
		Name:       "achievements",
		Columns:    AchievementsColumns,
		PrimaryKey: []*schema.Column{AchievementsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "achievements_chat_id_achievement_key", Unique: true, Columns: []*schema.Column{AchievementsColumns[1], AchievementsColumns[2]}},
		},
	}

	// DailyChallengesColumns holds the columns for the "daily_challenges" table.
	DailyChallengesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "chat_id", Type: field.TypeInt64},
		{Name: "day", Type: field.TypeString},
		{Name: "challenge_key", Type: field.TypeString},
		{Name: "title", Type: field.TypeString},
		{Name: "target", Type: field.TypeInt},
		{Name: "progress", Type: field.TypeInt, Default: 0},
		{Name: "reward", Type: field.TypeInt},
		{Name: "completed", Type: field.TypeBool, Default: false},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	DailyChallengesTable = &schema.Table{
		Name:       "daily_challenges",
		Columns:    DailyChallengesColumns,
		PrimaryKey: []*schema.Column{DailyChallengesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "daily_challenges_chat_id_day_challenge_key", Unique: true, Columns: []*schema.Column{DailyChallengesColumns[1], DailyChallengesColumns[2], DailyChallengesColumns[3]}},
		},
	}

	// UserFeedbackColumns holds the columns for the "user_feedback" table.
	UserFeedbackColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "chat_id", Type: field.TypeInt64},
		{Name: "message", Type: field.TypeString, Size: 4096},
		{Name: "created_at", Type: field.TypeTime},
	}
	UserFeedbackTable = &schema.Table{
		Name:       "user_feedback",
		Columns:    UserFeedbackColumns,
		PrimaryKey: []*schema.Column{UserFeedbackColumns[0]},
	}

	// RewardShopColumns holds the columns for the "reward_shop" table.
	RewardShopColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "name", Type: field.TypeString, Unique: true},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "price", Type: field.TypeInt},
		{Name: "quantity_left", Type: field.TypeInt},
		{Name: "active", Type: field.TypeBool, Default: true},
	}
	RewardShopTable = &schema.Table{
		Name:       "reward_shop",
		Columns:    RewardShopColumns,
		PrimaryKey: []*schema.Column{RewardShopColumns[0]},
	}

	// RewardPurchasesColumns holds the columns for the "reward_purchases" table.
	RewardPurchasesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "chat_id", Type: field.TypeInt64},
		{Name: "item_id", Type: field.TypeInt64},
		{Name: "price", Type: field.TypeInt},
		{Name: "purchased_at", Type: field.TypeTime},
	}
	RewardPurchasesTable = &schema.Table{
		Name:       "reward_purchases",
		Columns:    RewardPurchasesColumns,
		PrimaryKey: []*schema.Column{RewardPurchasesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "reward_purchases_chat_id", Columns: []*schema.Column{RewardPurchasesColumns[1]}},
		},
	}

	// ActivityLogColumns holds the columns for the "activity_log" table.
	ActivityLogColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "chat_id", Type: field.TypeInt64},
		{Name: "action", Type: field.TypeString},
		{Name: "details", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	ActivityLogTable = &schema.Table{
		Name:       "activity_log",
		Columns:    ActivityLogColumns,
		PrimaryKey: []*schema.Column{ActivityLogColumns[0]},
		Indexes: []*schema.Index{
			{Name: "activity_log_chat_id", Columns: []*schema.Column{ActivityLogColumns[1]}},
		},
	}

	// LLMRequestsColumns holds the columns for the "llm_requests" table.
	LLMRequestsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 65535, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 65535, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	LLMRequestsTable = &schema.Table{
		Name:       "llm_requests",
		Columns:    LLMRequestsColumns,
		PrimaryKey: []*schema.Column{LLMRequestsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llm_requests_purpose", Columns: []*schema.Column{LLMRequestsColumns[3]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		UsersTable,
		LearningSessionsTable,
		UserAnswersTable,
		CategoryStatsTable,
		QuestionTypeStatsTable,
		AchievementsTable,
		DailyChallengesTable,
		UserFeedbackTable,
		RewardShopTable,
		RewardPurchasesTable,
		ActivityLogTable,
		LLMRequestsTable,
	}
)
