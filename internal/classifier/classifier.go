// Package classifier scores group messages for academic relevance.
//
// The scoring is deterministic and side-effect free: keyword hits, question
// shapes and a length bonus push the score up, spam signals push it down, and
// anything at or above the threshold counts as academic.
package classifier

import (
	"regexp"
	"strings"
)

// Result is the outcome of scoring one message body.
type Result struct {
	Score    int
	Academic bool
}

// academicThreshold is the minimum score for an academic verdict.
const academicThreshold = 4

// Domain vocabulary for the metallurgy program. Matched case-insensitively as
// substrings of the message; accents are significant.
var academicKeywords = []string{
	"metalurgia", "aleación", "fundición", "acero", "hierro", "cobre",
	"ensayo", "laboratorio", "práctica", "examen", "parcial", "final",
	"profesor", "docente", "clase", "curso", "carrera", "universidad",
	"proyecto", "tesis", "investigación", "paper", "artículo",
	"pregunta", "duda", "ayuda", "explicación", "concepto",
	"material", "propiedades", "resistencia", "dureza", "tenacidad",
	"soldadura", "corrosión", "tratamiento", "térmico", "temple",
	"cristalografía", "diagrama", "fase", "microestructura",
}

// Question shapes common in academic group chats. The character classes admit
// the accented spellings ("¿Qué es...?", "¿Cómo se...?") that lowercasing
// alone does not normalize. Dot does not cross newlines, so a question only
// counts when it sits on a single line.
var questionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`¿.*\?`),
	regexp.MustCompile(`qui[eé]n.*sabe`),
	regexp.MustCompile(`alguien.*puede`),
	regexp.MustCompile(`c[oó]mo.*se`),
	regexp.MustCompile(`qu[eé].*es`),
	regexp.MustCompile(`d[oó]nde.*encuentro`),
	regexp.MustCompile(`cu[aá]ndo.*es`),
	regexp.MustCompile(`por.*qu[eé]`),
}

// Spam signals: links, cheering emoji, laughter, generic greetings.
var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`http`),
	regexp.MustCompile(`\.com`),
	regexp.MustCompile(`👏`),
	regexp.MustCompile(`💪`),
	regexp.MustCompile(`🔥`),
	regexp.MustCompile(`😂`),
	regexp.MustCompile(`jajaja`),
	regexp.MustCompile(`buenos días`),
	regexp.MustCompile(`buenas tardes`),
	regexp.MustCompile(`buenas noches`),
}

// Classify scores a message body. Bodies shorter than 10 bytes are rejected
// outright without scoring, as are media captions shorter than 5 bytes.
// Identical input always yields an identical Result.
func Classify(body string, hasMedia bool) Result {
	if len(body) < 10 {
		return Result{}
	}
	if hasMedia && len(body) < 5 {
		return Result{}
	}

	text := strings.ToLower(body)
	score := 0

	for _, kw := range academicKeywords {
		if strings.Contains(text, kw) {
			score += 2
		}
	}
	for _, pat := range questionPatterns {
		if pat.MatchString(text) {
			score += 3
		}
	}
	if len(text) > 50 {
		score++
	}
	for _, pat := range spamPatterns {
		if pat.MatchString(text) {
			score -= 2
		}
	}

	return Result{Score: score, Academic: score >= academicThreshold}
}
