package transcript

import (
	"fmt"
	"strings"
)

// BuildChunkPrompt renders the refinement prompt for one chunk. Segment
// indices are absolute so sentences in the response can be traced back to
// the full transcript, not to chunk-relative positions. previousContext is
// the tail of the already merged output and is marked as context only; the
// model must not re-emit it.
func BuildChunkPrompt(chunk Chunk, segments []Segment, dict Dictionary, previousContext string) string {
	var b strings.Builder

	b.WriteString("以下は音声認識で生成された文字起こしセグメントです。")
	b.WriteString("誤認識を修正し、自然な文章単位にまとめてください。\n\n")

	if chunk.TotalChunks > 1 {
		fmt.Fprintf(&b, "これは %d番目 / %d個のチャンクです。\n\n", chunk.ChunkIndex+1, chunk.TotalChunks)
	}

	if previousContext != "" {
		b.WriteString("## 前チャンクの末尾（文脈の参考のみ。この部分は出力に含めないでください）\n")
		b.WriteString(previousContext)
		b.WriteString("\n\n")
	}

	if lines := dict.PromptLines(); len(lines) > 0 {
		b.WriteString("## 固有名詞辞書（誤認識パターン → 正しい表記）\n")
		for _, line := range lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## セグメント\n")
	for i := chunk.StartIndex; i <= chunk.EndIndex && i < len(segments); i++ {
		s := segments[i]
		fmt.Fprintf(&b, "%d: [%.2f-%.2f] %s\n", i, s.StartTimeSeconds, s.EndTimeSeconds, s.Text)
	}

	b.WriteString("\n## 出力形式\n")
	b.WriteString("次のJSONのみを返してください。コードフェンスや説明は不要です。\n")
	b.WriteString(`{"sentences":[{"text":"...","startTimeSeconds":0.0,"endTimeSeconds":0.0,"originalSegmentIndices":[0,1]}]}`)
	b.WriteString("\n")

	return b.String()
}
