package progress

import "rapbattle-quiz-service/internal/domain"

// Badge unlock thresholds.
const (
	battleExpertCorrect = 10
	lyricsMasterCorrect = 5
	speedDemonMillis    = 5000
	streakMasterLength  = 5
	scholarPoints       = 500
	quizAddictSessions  = 10
)

// Badges is the static achievement catalog.
var Badges = map[string]domain.Badge{
	"first_quiz":      {ID: "first_quiz", Name: "Premier Quiz", Description: "Répondez à votre première question", Icon: "🎯"},
	"battle_expert":   {ID: "battle_expert", Name: "Expert des Battles", Description: "10 bonnes réponses sur les battles", Icon: "🏆"},
	"lyrics_master":   {ID: "lyrics_master", Name: "Maître des Paroles", Description: "5 bonnes réponses sur les paroles", Icon: "🎤"},
	"speed_demon":     {ID: "speed_demon", Name: "Démon de Vitesse", Description: "Répondez en moins de 5 secondes", Icon: "⚡"},
	"perfect_score":   {ID: "perfect_score", Name: "Score Parfait", Description: "Obtenez 100% à un quiz", Icon: "💎"},
	"streak_master":   {ID: "streak_master", Name: "Série Parfaite", Description: "5 bonnes réponses d'affilée", Icon: "🔥"},
	"hip_hop_scholar": {ID: "hip_hop_scholar", Name: "Érudit Hip-Hop", Description: "Accumulez 500 points", Icon: "📚"},
	"quiz_addict":     {ID: "quiz_addict", Name: "Accro aux Quiz", Description: "Complétez 10 quiz", Icon: "🎮"},
}

// earnedAfterAnswer returns every per-answer badge the current state
// qualifies for. The tracker filters out ids that are already
// unlocked; a badge is awarded once and never re-evaluated.
func earnedAfterAnswer(stats domain.UserStats, history []domain.Result, last domain.Result, sessionStreak int) []string {
	var earned []string

	if stats.TotalAnswers == 1 {
		earned = append(earned, "first_quiz")
	}
	if correctInCategory(history, domain.CategoryBattles) >= battleExpertCorrect {
		earned = append(earned, "battle_expert")
	}
	if correctInCategory(history, domain.CategoryLyrics) >= lyricsMasterCorrect {
		earned = append(earned, "lyrics_master")
	}
	if last.IsCorrect && last.TimeSpentMillis < speedDemonMillis {
		earned = append(earned, "speed_demon")
	}
	if sessionStreak >= streakMasterLength {
		earned = append(earned, "streak_master")
	}
	if stats.TotalPoints >= scholarPoints {
		earned = append(earned, "hip_hop_scholar")
	}

	return earned
}

// earnedAfterSession returns the per-session badges for a completed
// quiz.
func earnedAfterSession(stats domain.UserStats, results []domain.Result) []string {
	var earned []string

	if len(results) > 0 && allCorrect(results) {
		earned = append(earned, "perfect_score")
	}
	if stats.TotalQuizzesCompleted >= quizAddictSessions {
		earned = append(earned, "quiz_addict")
	}

	return earned
}

func correctInCategory(history []domain.Result, category domain.Category) int {
	count := 0
	for _, r := range history {
		if r.IsCorrect && r.Category == category {
			count++
		}
	}
	return count
}

func allCorrect(results []domain.Result) bool {
	for _, r := range results {
		if !r.IsCorrect {
			return false
		}
	}
	return true
}
