package openai_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"voiced-trainer/internal/domain"
	"voiced-trainer/internal/infra/openai"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// chatServer fakes the chat completions endpoint, answering every request
// with the given content.
func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		response := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
}

func newTestClient(t *testing.T, baseURL string) *openai.Client {
	t.Helper()
	return openai.NewClient("test-key", "gpt-test", baseURL+"/v1", testLogger())
}

func TestTutor_GenerateQuestions(t *testing.T) {
	server := chatServer(t, "Question 1: What drives the water cycle?\n"+
		"A good answer should include: evaporation and condensation.\n\n"+
		"Question 2: Why do clouds form?\n"+
		"A good answer should include: rising moist air cooling down.")
	defer server.Close()

	tutor := openai.NewTutor(newTestClient(t, server.URL), testLogger())

	questions, err := tutor.GenerateQuestions(context.Background(), domain.Topic{
		Title:   "Water Cycle",
		Content: "Water evaporates, condenses, and precipitates.",
	}, 5)
	if err != nil {
		t.Fatalf("GenerateQuestions error: %v", err)
	}

	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].Question != "What drives the water cycle?" {
		t.Errorf("question: got %q", questions[0].Question)
	}
	if questions[0].AnswerGuide != "evaporation and condensation." {
		t.Errorf("guide: got %q", questions[0].AnswerGuide)
	}
	if questions[0].TopicTitle != "Water Cycle" {
		t.Errorf("topic title: got %q", questions[0].TopicTitle)
	}
}

func TestTutor_Evaluate(t *testing.T) {
	server := chatServer(t, "```json\n"+
		`{"feedback": "Solid answer covering the key points.", "follow_up": "What role does the sun play?", "score": 0.8}`+
		"\n```")
	defer server.Close()

	tutor := openai.NewTutor(newTestClient(t, server.URL), testLogger())

	fb, err := tutor.Evaluate(context.Background(), domain.Question{
		TopicTitle:  "Water Cycle",
		Question:    "What drives the water cycle?",
		AnswerGuide: "evaporation and condensation",
	}, "The sun heats water which evaporates.")
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}

	if fb.Summary != "Solid answer covering the key points." {
		t.Errorf("summary: got %q", fb.Summary)
	}
	if fb.FollowUp != "What role does the sun play?" {
		t.Errorf("follow up: got %q", fb.FollowUp)
	}
	if fb.Score != 0.8 {
		t.Errorf("score: got %v", fb.Score)
	}
}

func TestTutor_EvaluateRawTextFallback(t *testing.T) {
	server := chatServer(t, "Great effort! You covered evaporation but missed condensation.")
	defer server.Close()

	tutor := openai.NewTutor(newTestClient(t, server.URL), testLogger())

	fb, err := tutor.Evaluate(context.Background(), domain.Question{Question: "Q?"}, "answer")
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if fb.Summary != "Great effort! You covered evaporation but missed condensation." {
		t.Errorf("expected raw text as feedback, got %q", fb.Summary)
	}
}

func TestParseQuestions(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []domain.Question
	}{
		{
			name: "numbered list",
			text: "1. What is entropy?\nGuide: disorder and the second law.\n\n2. How does it relate to time?\nGuide: the arrow of time.",
			want: []domain.Question{
				{Question: "What is entropy?", AnswerGuide: "disorder and the second law."},
				{Question: "How does it relate to time?", AnswerGuide: "the arrow of time."},
			},
		},
		{
			name: "question label",
			text: "Question: Why is the sky blue?\nAnswer: Rayleigh scattering.",
			want: []domain.Question{
				{Question: "Why is the sky blue?", AnswerGuide: "Rayleigh scattering."},
			},
		},
		{
			name: "bold markdown numbering",
			text: "**1. What causes tides?**\nA good answer should include: the moon's gravity.",
			want: []domain.Question{
				{Question: "What causes tides?", AnswerGuide: "the moon's gravity."},
			},
		},
		{
			name: "no questions",
			text: "Here are some study notes without any questions in them.",
			want: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := openai.ParseQuestions(tc.text, "Physics", 5)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d questions, got %d: %+v", len(tc.want), len(got), got)
			}
			for i := range tc.want {
				if got[i].Question != tc.want[i].Question {
					t.Errorf("question %d: got %q, want %q", i, got[i].Question, tc.want[i].Question)
				}
				if got[i].AnswerGuide != tc.want[i].AnswerGuide {
					t.Errorf("guide %d: got %q, want %q", i, got[i].AnswerGuide, tc.want[i].AnswerGuide)
				}
			}
		})
	}
}

func TestParseQuestions_RespectsMax(t *testing.T) {
	text := "1. One?\n\n2. Two?\n\n3. Three?\n\n4. Four?"
	got := openai.ParseQuestions(text, "T", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}
}
