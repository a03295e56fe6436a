package retrieval

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/unihelp/sotay/internal/classify"
	"github.com/unihelp/sotay/internal/config"
	"github.com/unihelp/sotay/internal/embedding"
	"github.com/unihelp/sotay/internal/vector"
	"go.uber.org/zap"
)

// PassageSearcher is the read side of the vector store.
type PassageSearcher interface {
	Search(ctx context.Context, query []float32, topK int) ([]vector.Match, error)
}

// WebSearcher returns human-readable snippets for a query.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]string, error)
}

// Builder classifies a question, applies the category's retrieval policy,
// and assembles the labeled evidence context.
type Builder struct {
	store         PassageSearcher
	embedder      embedding.Embedder
	web           WebSearcher
	classifier    classify.Classifier
	cfg           *config.RetrievalConfig
	maxWebResults int
	logger        *zap.Logger
}

// NewBuilder creates a context builder. web may be nil (web search disabled
// entirely); logger may be nil.
func NewBuilder(
	store PassageSearcher,
	embedder embedding.Embedder,
	web WebSearcher,
	classifier classify.Classifier,
	cfg *config.RetrievalConfig,
	maxWebResults int,
	logger *zap.Logger,
) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxWebResults <= 0 {
		maxWebResults = 3
	}
	return &Builder{
		store:         store,
		embedder:      embedder,
		web:           web,
		classifier:    classifier,
		cfg:           cfg,
		maxWebResults: maxWebResults,
		logger:        logger,
	}
}

// BuildContext classifies question, retrieves evidence per the category
// policy, and returns the assembled context, the deduplicated used-source
// names in first-seen order, and the category. source is the request
// override: "auto" (default) defers to the category policy; "local", "web",
// and "both" restrict or force the consulted sources. SCHEDULE and
// REGULATION questions never trigger a web call regardless of source.
func (b *Builder) BuildContext(ctx context.Context, question, source string) (string, []string, classify.Category) {
	category := b.classifier.Classify(ctx, question)
	used := newOrderedSet()

	localAllowed := source == "" || source == "auto" || source == "local" || source == "both"
	webAllowed := (source == "auto" || source == "" || source == "web" || source == "both") &&
		category != classify.CategorySchedule && category != classify.CategoryRegulation &&
		b.web != nil

	var blocks []contextBlock

	if category == classify.CategorySchedule && localAllowed {
		blocks = b.scheduleBlocks(ctx, question, used)
	} else if localAllowed {
		blocks = b.localBlocks(ctx, question, b.localTopK(category), used)
	}

	if webAllowed {
		blocks = append(blocks, b.webBlocks(ctx, question, used)...)
	}

	contextStr := renderBlocks(blocks)
	if contextStr == "" {
		contextStr = "(Không có dữ liệu tham khảo)"
	}
	b.logger.Debug("context built",
		zap.String("category", string(category)),
		zap.Int("blocks", len(blocks)),
		zap.Strings("used_sources", used.list()),
	)
	return contextStr, used.list(), category
}

func (b *Builder) localTopK(category classify.Category) int {
	if category == classify.CategoryGeneral {
		return b.cfg.GeneralTopK
	}
	return b.cfg.LocalTopK
}

// scheduleBlocks retrieves schedule evidence: a broad similarity search
// narrowed by exact substring matching on the class code (schedule chunks are
// not well separated semantically, so the code is the real relevance signal)
// and, when present, the week number. Web is never consulted; when nothing
// survives the filters a single diagnostic block tells the model to say so
// instead of guessing.
func (b *Builder) scheduleBlocks(ctx context.Context, question string, used *orderedSet) []contextBlock {
	code, hasCode := classify.ClassCode(question)
	if !hasCode {
		// No code to filter on: fall back to plain threshold retrieval,
		// still without web.
		return b.localBlocks(ctx, question, b.cfg.LocalTopK, used)
	}

	matches, err := b.searchLocal(ctx, question, b.cfg.ScheduleTopK)
	if err != nil {
		b.logger.Warn("local retrieval failed", zap.Error(err))
		return []contextBlock{noteBlock(fmt.Sprintf("(Lỗi truy xuất dữ liệu nội bộ: %v)", err))}
	}

	week, hasWeek := classify.WeekNumber(question)
	var weekRe *regexp.Regexp
	if hasWeek {
		weekRe = weekMarkerRe(week)
	}
	var blocks []contextBlock
	for _, m := range matches {
		if !strings.Contains(m.Text, code) {
			continue
		}
		if hasWeek && !weekRe.MatchString(m.Text) {
			continue
		}
		blocks = append(blocks, localBlock(m.Text, m.Score))
	}
	if len(blocks) == 0 {
		msg := fmt.Sprintf("Không tìm thấy thông tin thời khóa biểu cho lớp %s", code)
		if hasWeek {
			msg += fmt.Sprintf(" tuần %d", week)
		}
		msg += " trong dữ liệu đã nạp."
		return []contextBlock{noteBlock(msg)}
	}
	used.add(SourceLocal)
	return blocks
}

// weekMarkerRe matches a mention of exactly the given week, either spelling
// variant, case-insensitive. The trailing boundary keeps week 1 from matching
// inside "tuần 15".
func weekMarkerRe(week int) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?i)(?:tuần|tuan)\s*%d\b`, week))
}

// localBlocks runs similarity retrieval with the minimum-score threshold.
// Only passages at or above the threshold make it into the context; local is
// marked used only when at least one survives.
func (b *Builder) localBlocks(ctx context.Context, question string, topK int, used *orderedSet) []contextBlock {
	matches, err := b.searchLocal(ctx, question, topK)
	if err != nil {
		b.logger.Warn("local retrieval failed", zap.Error(err))
		return []contextBlock{noteBlock(fmt.Sprintf("(Lỗi truy xuất dữ liệu nội bộ: %v)", err))}
	}
	var blocks []contextBlock
	for _, m := range matches {
		if m.Score < b.cfg.MinScore {
			continue
		}
		blocks = append(blocks, localBlock(m.Text, m.Score))
	}
	if len(blocks) > 0 {
		used.add(SourceLocal)
	}
	return blocks
}

func (b *Builder) searchLocal(ctx context.Context, question string, topK int) ([]vector.Match, error) {
	queryVec, err := b.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	matches, err := b.store.Search(ctx, queryVec, topK)
	if err != nil {
		return nil, fmt.Errorf("search store: %w", err)
	}
	return matches, nil
}

// webBlocks consults the web service. Each snippet becomes one block; web is
// marked used only when at least one snippet came back. A failure is
// captured as a diagnostic block so the request still proceeds with whatever
// evidence remains.
func (b *Builder) webBlocks(ctx context.Context, question string, used *orderedSet) []contextBlock {
	snippets, err := b.web.Search(ctx, question, b.maxWebResults)
	if err != nil {
		b.logger.Warn("web search failed", zap.Error(err))
		return []contextBlock{noteBlock(fmt.Sprintf("(Lỗi tìm kiếm web: %v)", err))}
	}
	blocks := make([]contextBlock, 0, len(snippets))
	for _, s := range snippets {
		blocks = append(blocks, webBlock(s))
	}
	if len(blocks) > 0 {
		used.add(SourceWeb)
	}
	return blocks
}
