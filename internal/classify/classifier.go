package classify

import (
	"context"
	"strings"

	"github.com/unihelp/sotay/internal/llm"
	"go.uber.org/zap"
)

// Classifier maps a question to a Category. Implementations must not fail:
// on any doubt they return CategoryGeneral so retrieval can proceed.
type Classifier interface {
	Classify(ctx context.Context, question string) Category
}

const classifyInstruction = `Bạn là bộ phân loại câu hỏi của trợ lý sinh viên.
Phân loại câu hỏi vào đúng một trong bốn nhóm:
- REGULATION: quy chế, quy định, kỷ luật, điểm rèn luyện
- TUITION: học phí, miễn giảm, học bổng
- SCHEDULE: thời khóa biểu, lịch học, lịch thi, phòng học
- GENERAL: mọi câu hỏi khác
Chỉ trả về đúng một từ: REGULATION, TUITION, SCHEDULE hoặc GENERAL.`

// ModelClassifier delegates classification to the chat model. Any failure of
// the underlying call degrades to GENERAL; a misclassification only changes
// which evidence sources are consulted, never whether an answer is produced.
type ModelClassifier struct {
	client *llm.Client
	logger *zap.Logger
}

// NewModelClassifier creates a model-backed classifier. logger may be nil.
func NewModelClassifier(client *llm.Client, logger *zap.Logger) *ModelClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelClassifier{client: client, logger: logger}
}

// Classify asks the model for a category token and parses it. Falls back to
// GENERAL when the call fails or the answer is not a known token.
func (c *ModelClassifier) Classify(ctx context.Context, question string) Category {
	answer, err := c.client.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: classifyInstruction},
		{Role: llm.RoleUser, Content: question},
	})
	if err != nil {
		c.logger.Warn("classification failed, falling back to GENERAL", zap.Error(err))
		return CategoryGeneral
	}
	return ParseCategory(answer)
}

// RuleClassifier is a deterministic keyword classifier. It backs tests and
// offline deployments where no chat model is reachable.
type RuleClassifier struct{}

// NewRuleClassifier returns a rule-based classifier.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

var ruleKeywords = []struct {
	category Category
	words    []string
}{
	{CategorySchedule, []string{"thời khóa biểu", "thoi khoa bieu", "lịch học", "lich hoc", "lịch thi", "lich thi", "tuần", "tuan", "phòng học"}},
	{CategoryTuition, []string{"học phí", "hoc phi", "học bổng", "hoc bong", "miễn giảm", "mien giam"}},
	{CategoryRegulation, []string{"quy chế", "quy che", "quy định", "quy dinh", "kỷ luật", "ky luat", "điểm rèn luyện"}},
}

// Classify matches keyword lists in priority order: schedule, tuition,
// regulation, then GENERAL. A question carrying a class code is a schedule
// question even without a schedule keyword.
func (c *RuleClassifier) Classify(ctx context.Context, question string) Category {
	q := strings.ToLower(question)
	for _, rule := range ruleKeywords {
		for _, w := range rule.words {
			if strings.Contains(q, w) {
				return rule.category
			}
		}
	}
	if _, ok := ClassCode(question); ok {
		return CategorySchedule
	}
	return CategoryGeneral
}
