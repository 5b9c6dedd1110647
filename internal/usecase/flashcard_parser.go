package usecase

import (
	"strings"

	"github.com/tidwall/gjson"

	"flashquiz-service/internal/domain"
)

const fenceMarker = "```"

// ParseFlashcards はモデルの出力テキストからカード候補を取り出す。
// JSON配列として解釈できない場合は空のスライスを返す。件数の上限・下限はここでは扱わない。
func ParseFlashcards(raw string) []domain.FlashcardDraft {
	text := stripFence(strings.TrimSpace(raw))
	if !gjson.Valid(text) {
		return nil
	}

	parsed := gjson.Parse(text)
	if !parsed.IsArray() {
		return nil
	}

	var drafts []domain.FlashcardDraft
	parsed.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		draft := domain.FlashcardDraft{
			Question: fieldString(item, "question"),
			Answer:   fieldString(item, "answer"),
			Hint:     fieldString(item, "hint"),
		}
		// 中身のないオブジェクトは空のカードとして保存しない
		if draft.Question == "" && draft.Answer == "" && draft.Hint == "" {
			return true
		}
		drafts = append(drafts, draft)
		return true
	})
	return drafts
}

// stripFence は先頭のフェンス行と、あれば末尾のフェンス行を取り除く。
func stripFence(text string) string {
	if !strings.HasPrefix(text, fenceMarker) {
		return text
	}

	lines := strings.Split(text, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == fenceMarker {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// fieldString はフィールドを文字列として取り出す。スカラー以外と欠落は空文字とする。
func fieldString(item gjson.Result, key string) string {
	v := item.Get(key)
	switch v.Type {
	case gjson.String, gjson.Number, gjson.True, gjson.False:
		return strings.TrimSpace(v.String())
	default:
		return ""
	}
}
