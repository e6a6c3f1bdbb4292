package preprocess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"voiced-trainer/internal/domain"
)

const (
	summarySystem   = "You are a helpful assistant that summarizes text accurately."
	topicsSystem    = "You are a helpful assistant that extracts key topics from text."
	consolidSystem  = "You are a helpful assistant that consolidates topics effectively."
	relevanceSystem = "You are a helpful assistant determining text relevance."
	contentSystem   = "You are a helpful assistant that creates educational content."

	summaryBatchSize   = 10
	maxRelevantChunks  = 5
	maxContentChunks   = 3
	maxCandidateTopics = 30
	questionBankSize   = 10
)

// Completer is the single-exchange LLM call the pipeline is built on.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// QuestionGenerator produces study questions for one topic.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, topic domain.Topic, n int) ([]domain.Question, error)
}

// Store receives the preprocessing output.
type Store interface {
	Preprocessed() bool
	SaveTopics(topics []domain.Topic) error
	SaveQuestions(questions []domain.Question) error
	WriteLock() error
}

// Preprocessor turns a raw text document into study topics with generated
// content and a starter question bank. The heavy lifting is delegated to the
// LLM; this orchestrates the calls and parses their output.
type Preprocessor struct {
	llm       Completer
	questions QuestionGenerator
	chunker   *Chunker
	store     Store
	numTopics int
	logger    *slog.Logger
}

func New(llm Completer, questions QuestionGenerator, chunker *Chunker, store Store, numTopics int, logger *slog.Logger) *Preprocessor {
	return &Preprocessor{
		llm:       llm,
		questions: questions,
		chunker:   chunker,
		store:     store,
		numTopics: numTopics,
		logger:    logger,
	}
}

// Run processes the source file at path. It reports whether preprocessing
// actually ran; a completed earlier run short-circuits unless force is set.
func (p *Preprocessor) Run(ctx context.Context, path string, force bool) (bool, error) {
	if p.store.Preprocessed() && !force {
		p.logger.Info("preprocessing already done, skipping")
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading source file: %w", err)
	}

	chunks := p.chunker.Split(string(data))
	if len(chunks) == 0 {
		return false, errors.New("source file contains no text")
	}
	p.logger.Info("split source text", "path", path, "chunks", len(chunks))

	topics, err := p.extractTopics(ctx, chunks)
	if err != nil {
		return false, err
	}

	bank := p.generateQuestionBank(ctx, topics)

	if err := p.store.SaveTopics(topics); err != nil {
		return false, err
	}
	if err := p.store.SaveQuestions(bank); err != nil {
		return false, err
	}
	if err := p.store.WriteLock(); err != nil {
		return false, err
	}

	p.logger.Info("preprocessing complete", "topics", len(topics), "questions", len(bank))
	return true, nil
}

// extractTopics runs the hierarchical pass: summarize every chunk, mine the
// summaries for candidate topics, consolidate down to numTopics, then write
// learning content for each survivor.
func (p *Preprocessor) extractTopics(ctx context.Context, chunks []string) ([]domain.Topic, error) {
	summaries := p.summarizeChunks(ctx, chunks)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := p.collectCandidates(ctx, summaries)

	titles, err := p.consolidateTopics(ctx, candidates)
	if err != nil {
		return nil, err
	}

	topics := make([]domain.Topic, 0, len(titles))
	for _, title := range titles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		topics = append(topics, domain.Topic{
			Title:   title,
			Content: p.generateTopicContent(ctx, title, chunks),
		})
	}
	return topics, nil
}

func (p *Preprocessor) summarizeChunks(ctx context.Context, chunks []string) []string {
	summaries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		summary, err := p.llm.Complete(ctx, summarySystem,
			"Summarize the following text in 2-3 sentences, capturing its key points and main ideas:\n\nTEXT:\n"+chunk)
		if err != nil {
			p.logger.Error("summarizing chunk", "chunk", i, "error", err)
			summary = fmt.Sprintf("Content from section %d", i+1)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func (p *Preprocessor) collectCandidates(ctx context.Context, summaries []string) []candidate {
	var all []candidate
	for start := 0; start < len(summaries); start += summaryBatchSize {
		end := start + summaryBatchSize
		if end > len(summaries) {
			end = len(summaries)
		}
		batch := strings.Join(summaries[start:end], "\n\n")

		resp, err := p.llm.Complete(ctx, topicsSystem,
			"Analyze the following text summaries and identify important topics or concepts. "+
				"For each topic, provide a clear, concise title and a brief one-sentence description. "+
				"Format as a numbered list with 'Topic: [title]' and 'Description: [description]' on separate lines."+
				"\n\nTEXT SUMMARIES:\n"+batch)
		if err != nil {
			p.logger.Error("extracting candidate topics", "batch", start/summaryBatchSize, "error", err)
			continue
		}
		all = append(all, parseCandidates(resp)...)
	}
	return all
}

func (p *Preprocessor) consolidateTopics(ctx context.Context, candidates []candidate) ([]string, error) {
	if len(candidates) > maxCandidateTopics {
		candidates = candidates[:maxCandidateTopics]
	}
	var list strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&list, "- %s: %s\n", c.title, c.description)
	}

	resp, err := p.llm.Complete(ctx, consolidSystem, fmt.Sprintf(
		"Based on the following list of potential topics extracted from a document, "+
			"identify the %d most significant and representative topics. "+
			"Combine similar topics and ensure diversity of coverage. "+
			"For each final topic, provide a clear, concise title.\n\nPOTENTIAL TOPICS:\n%s",
		p.numTopics, list.String()))

	var titles []string
	if err != nil {
		p.logger.Error("consolidating topics", "error", err)
		if isCtxErr := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded); isCtxErr {
			return nil, err
		}
	} else {
		titles = parseTitles(resp)
	}

	if len(titles) > p.numTopics {
		titles = titles[:p.numTopics]
	}
	for len(titles) < p.numTopics {
		titles = append(titles, fmt.Sprintf("Topic %d", len(titles)+1))
	}
	return titles, nil
}

// generateTopicContent finds the chunks relevant to a topic and asks the
// model to write learning material from them. Failures degrade to a
// placeholder so one bad topic doesn't sink the whole run.
func (p *Preprocessor) generateTopicContent(ctx context.Context, title string, chunks []string) string {
	var relevant []string
	for i, chunk := range chunks {
		answer, err := p.llm.Complete(ctx, relevanceSystem, fmt.Sprintf(
			"Determine if the following text is relevant to the topic '%s'. "+
				"Answer with only 'Yes' or 'No'.\n\nTEXT:\n%s", title, chunk))
		if err != nil {
			p.logger.Error("assessing chunk relevance", "topic", title, "chunk", i, "error", err)
			continue
		}
		if strings.Contains(strings.ToLower(answer), "yes") {
			relevant = append(relevant, chunk)
		}
		if len(relevant) >= maxRelevantChunks {
			break
		}
	}

	if len(relevant) == 0 {
		n := maxContentChunks
		if len(chunks) < n {
			n = len(chunks)
		}
		relevant = chunks[:n]
	}
	if len(relevant) > maxContentChunks {
		relevant = relevant[:maxContentChunks]
	}

	content, err := p.llm.Complete(ctx, contentSystem, fmt.Sprintf(
		"Based on the following text excerpts, create a comprehensive explanation about the topic '%s'. "+
			"Include key concepts, examples, and insights from the text. "+
			"The content should be detailed enough to serve as learning material (about 500-800 words)."+
			"\n\nTEXT EXCERPTS:\n%s", title, strings.Join(relevant, "\n\n")))
	if err != nil {
		p.logger.Error("generating topic content", "topic", title, "error", err)
		return fmt.Sprintf("No detailed information available for '%s'.", title)
	}
	return content
}

// generateQuestionBank spreads questionBankSize questions across the topics,
// mirroring how sessions later distribute attention.
func (p *Preprocessor) generateQuestionBank(ctx context.Context, topics []domain.Topic) []domain.Question {
	if len(topics) == 0 {
		return nil
	}

	perTopic := questionBankSize / len(topics)
	if perTopic < 1 {
		perTopic = 1
	}
	remainder := questionBankSize - perTopic*len(topics)

	var bank []domain.Question
	for _, topic := range topics {
		count := perTopic
		if remainder > 0 {
			count++
			remainder--
		}

		questions, err := p.questions.GenerateQuestions(ctx, topic, count)
		if err != nil {
			p.logger.Error("generating question bank", "topic", topic.Title, "error", err)
			continue
		}
		bank = append(bank, questions...)
		if len(bank) >= questionBankSize {
			bank = bank[:questionBankSize]
			break
		}
	}
	return bank
}

type candidate struct {
	title       string
	description string
}

// parseCandidates reads "Topic:"/"Description:" pairs out of a numbered
// list, tolerating the numbering styles models actually produce.
func parseCandidates(text string) []candidate {
	var out []candidate
	var cur candidate

	flush := func() {
		if cur.title != "" {
			out = append(out, cur)
		}
		cur = candidate{}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(lower, "topic:"):
			flush()
			cur.title = strings.TrimSpace(line[len("topic:"):])

		case strings.HasPrefix(lower, "description:"):
			cur.description = strings.TrimSpace(line[len("description:"):])

		case line[0] >= '0' && line[0] <= '9':
			flush()
			rest := line
			if i := strings.Index(rest, ". "); i >= 0 {
				rest = rest[i+2:]
			}
			if j := strings.Index(strings.ToLower(rest), "topic:"); j >= 0 {
				rest = rest[j+len("topic:"):]
			}
			cur.title = strings.TrimSpace(rest)
		}
	}
	flush()
	return out
}

// parseTitles extracts final topic titles from a numbered or bulleted list,
// dropping any trailing ": description" part.
func parseTitles(text string) []string {
	var titles []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var title string
		switch {
		case line[0] >= '0' && line[0] <= '9':
			if i := strings.Index(line, ". "); i >= 0 {
				title = line[i+2:]
			}
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			title = line[2:]
		}

		title = strings.Trim(strings.TrimSpace(title), "*_")
		if i := strings.Index(title, ":"); i >= 0 {
			title = strings.TrimSpace(title[:i])
		}
		if title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}
