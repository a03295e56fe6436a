package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/unihelp/sotay/internal/classify"
	"github.com/unihelp/sotay/internal/llm"
	"go.uber.org/zap"
)

// Chatter is the completion side of the chat model service.
type Chatter interface {
	Chat(ctx context.Context, messages []llm.Message) (string, error)
}

// Answerer builds the evidence context for a question and asks the chat
// model for the final answer.
type Answerer struct {
	builder *Builder
	chat    Chatter
	logger  *zap.Logger
}

// NewAnswerer creates an answerer. logger may be nil.
func NewAnswerer(builder *Builder, chat Chatter, logger *zap.Logger) *Answerer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Answerer{builder: builder, chat: chat, logger: logger}
}

const baseInstruction = `Bạn là trợ lý sinh viên tiếng Việt.
- Chỉ trả lời dựa trên Context được cung cấp.
- Ưu tiên khối [LOCAL] (dữ liệu nội bộ của trường) nếu mâu thuẫn với khối [WEB].
- Nếu không thấy thông tin cần thiết trong Context, hãy nói rõ: "Tôi không thấy thông tin trong dữ liệu hiện có."
- Trả lời ngắn gọn, rõ ràng.`

const scheduleInstruction = `- Câu hỏi thuộc về thời khóa biểu: chỉ dùng các khối [LOCAL], nêu rõ mã lớp và tuần nếu có.`

const noFabricateInstruction = `- Context chứa khối [SYSTEM_NOTE] báo không tìm thấy dữ liệu: hãy trả lời đúng nội dung đó, tuyệt đối không tự bịa ra lịch học hay thông tin khác.`

// Answer classifies question, assembles evidence, and synthesizes the final
// answer. Retrieval-side failures have already been absorbed into the
// context; the only error returned is an upstream chat model failure, which
// the caller must surface.
func (a *Answerer) Answer(ctx context.Context, question, source string) (string, []string, error) {
	evidence, usedSources, category := a.builder.BuildContext(ctx, question, source)

	instruction := baseInstruction
	if category == classify.CategorySchedule {
		instruction += "\n" + scheduleInstruction
	}
	if strings.Contains(evidence, noteTag) {
		instruction += "\n" + noFabricateInstruction
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: instruction},
		{Role: llm.RoleSystem, Content: fmt.Sprintf("Context:\n%s", evidence)},
		{Role: llm.RoleUser, Content: question},
	}

	answer, err := a.chat.Chat(ctx, messages)
	if err != nil {
		a.logger.Error("answer synthesis failed", zap.Error(err))
		return "", nil, err
	}
	a.logger.Info("question answered",
		zap.String("category", string(category)),
		zap.Strings("used_sources", usedSources),
	)
	return answer, usedSources, nil
}
