package actions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phrazzld/maika/internal/domain"
)

// Fixed replies.
const (
	MsgUnavailable      = "Lo siento, el servicio no está disponible temporalmente. Inténtalo de nuevo en unos minutos."
	MsgInvalidInput     = "No entendí tu respuesta. ¿Puedes intentarlo de nuevo?"
	MsgAskHelpful       = "¿Te fue útil esta respuesta?"
	MsgNoQuestions      = "No hay preguntas disponibles ahora."
	MsgNoActiveQuiz     = "No hay un quiz activo. Inicia uno nuevo con 'quiero hacer un quiz'."
	MsgNoDueReviews     = "No tienes versículos pendientes de repaso. ¡Buen trabajo!"
	MsgNoBingoBoard     = "Primero pide tu bingo de valores."
	MsgHelpfulThanks    = "¡Me alegra haber podido ayudarte! ¿Hay algo más en lo que pueda asistirte?"
	MsgNotHelpful       = "Entiendo. ¿En qué puedo ayudarte de manera diferente?"
	MsgVerseNotFound    = "No encontré ese versículo específico, pero aquí tienes algunos versículos inspiradores:"
	MsgTopicNotFound    = "No encontré versículos específicos sobre ese tema, pero aquí tienes algunos versículos inspiradores:"
	MsgNoQuizHistory    = "Aún no has completado ningún quiz."
	MsgEmptyLeaderboard = "Todavía no hay nadie en el ranking."
)

var tierMessages = map[domain.FeedbackTier]string{
	domain.FeedbackExcellent: "¡Excelente! 🏆 Tienes un gran conocimiento bíblico.",
	domain.FeedbackGood:      "¡Muy bien! 👍 Sigue estudiando la palabra de Dios.",
	domain.FeedbackStudy:     "¡Buen intento! 📚 Te recomiendo estudiar más la Biblia.",
}

func formatVerseOfDay(v domain.Verse) string {
	return fmt.Sprintf("Verso del día:\n\n%s\n%s", v.Reference(), v.Text)
}

// formatVerse renders a verse with a bold reference. sep separates the
// reference from the text.
func formatVerse(v domain.Verse, sep string) string {
	return fmt.Sprintf("**%s**%s%s", v.Reference(), sep, v.Text)
}

func formatMission(label string, m domain.Mission) string {
	return fmt.Sprintf("%s: %s\n\n%s", label, m.Title, m.Description)
}

func formatBingo(board [][]string) string {
	lines := make([]string, len(board))
	for i, row := range board {
		lines[i] = strings.Join(row, " | ")
	}
	return fmt.Sprintf("Bingo de valores %dx%d:\n\n%s", len(board), len(board), strings.Join(lines, "\n"))
}

func formatOptions(options []string) string {
	lines := make([]string, len(options))
	for i, opt := range options {
		lines[i] = fmt.Sprintf("%d. %s", i+1, opt)
	}
	return strings.Join(lines, "\n")
}

func formatQuestion(header string, q domain.TriviaQuestion) string {
	return fmt.Sprintf("%s\n\n%s\n\n%s", header, q.Question, formatOptions(q.Options))
}

// formatAnswerPrompt lists the valid option numbers, e.g. "Responde con 1, 2, 3 o 4."
func formatAnswerPrompt(optionCount int) string {
	if optionCount <= 1 {
		return "Responde con 1."
	}
	nums := make([]string, optionCount)
	for i := range nums {
		nums[i] = strconv.Itoa(i + 1)
	}
	return fmt.Sprintf("Responde con %s o %s.", strings.Join(nums[:optionCount-1], ", "), nums[optionCount-1])
}

func withExplanation(text, explanation string) string {
	if explanation == "" {
		return text
	}
	return text + "\n\n" + explanation
}

func formatQuizSummary(score, total int, percentage float64, tier domain.FeedbackTier) string {
	return fmt.Sprintf("¡Terminaste! Puntaje: %d/%d (%.1f%%)\n\n%s", score, total, percentage, tierMessages[tier])
}

// shortUserID trims long sender ids for the public ranking.
func shortUserID(id string) string {
	runes := []rune(id)
	if len(runes) <= 8 {
		return id
	}
	return string(runes[:8]) + "..."
}
