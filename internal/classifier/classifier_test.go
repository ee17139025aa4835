package classifier

import "testing"

func TestClassifyDeterministicExamples(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		hasMedia bool
		score    int
		academic bool
	}{
		{
			name:  "greeting is spam",
			body:  "hola buenos días",
			score: -2,
		},
		{
			name:     "accented question with two keywords",
			body:     "¿Qué es la metalurgia y como se hace el temple?",
			score:    13,
			academic: true,
		},
		{
			name:     "keyword-dense help request with length bonus",
			body:     "Necesito ayuda con mi práctica de laboratorio de fundición",
			score:    9,
			academic: true,
		},
		{
			name:  "link is penalized",
			body:  "miren esto http://ejemplo.com jajaja",
			score: -6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.body, tt.hasMedia)
			if got.Score != tt.score {
				t.Errorf("Classify(%q) score = %d, want %d", tt.body, got.Score, tt.score)
			}
			if got.Academic != tt.academic {
				t.Errorf("Classify(%q) academic = %v, want %v", tt.body, got.Academic, tt.academic)
			}
		})
	}
}

func TestClassifyEarlyRejection(t *testing.T) {
	// Shorter than 10 bytes: scoring is skipped entirely, even for a body
	// that is itself a strong keyword.
	got := Classify("acero", false)
	if got.Score != 0 || got.Academic {
		t.Errorf("short body should be rejected without scoring, got %+v", got)
	}

	got = Classify("short", true)
	if got.Academic {
		t.Errorf("short media caption should be rejected, got %+v", got)
	}
}

func TestClassifyIsPure(t *testing.T) {
	body := "¿Alguien puede explicar el diagrama de fase del acero?"
	first := Classify(body, false)
	second := Classify(body, false)
	if first != second {
		t.Errorf("Classify is not idempotent: %+v vs %+v", first, second)
	}
	if !first.Academic {
		t.Errorf("expected academic verdict, got %+v", first)
	}
}

func TestClassifyKeywordCountedOnce(t *testing.T) {
	once := Classify("el acero y algo más de texto", false)
	twice := Classify("el acero y acero y algo más", false)
	if once.Score != twice.Score {
		t.Errorf("repeated keyword should not stack: %d vs %d", once.Score, twice.Score)
	}
}

func TestClassifyLengthBonusIsFlat(t *testing.T) {
	// Both bodies exceed 50 bytes with no other signals; the bonus must not
	// grow with length.
	a := Classify("xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx", false)
	b := Classify("xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx", false)
	if a.Score != 1 || b.Score != 1 {
		t.Errorf("flat length bonus expected, got %d and %d", a.Score, b.Score)
	}
}

func TestClassifyQuestionStaysWithinOneLine(t *testing.T) {
	// The two halves of a question shape split across lines are not a
	// question.
	split := Classify("quien viene hoy\nnadie lo sabe", false)
	if split.Score != 0 {
		t.Errorf("multiline body scored %d, want 0", split.Score)
	}

	joined := Classify("quien viene hoy, nadie lo sabe", false)
	if joined.Score != 3 {
		t.Errorf("single-line body scored %d, want 3", joined.Score)
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	lower := Classify("duda sobre soldadura en la clase", false)
	upper := Classify("DUDA SOBRE SOLDADURA EN LA CLASE", false)
	if lower.Score != upper.Score {
		t.Errorf("case should not matter: %d vs %d", lower.Score, upper.Score)
	}
}
