package schema

import (
	"sort"

	"github.com/kamalu-chioma/OpenRFM/internal/dataset"
)

// Infer 推断表格的 RFM 列映射。
// 返回完整映射与每个目标列的全部候选得分；任一必需目标列
// 无法达到置信度下限时返回 *InferenceError，不返回部分映射。
func (e *Engine) Infer(table *dataset.Table) (Mapping, map[Role][]ColumnScore, error) {
	scores := make(map[Role][]ColumnScore, len(TargetRoles))
	for _, col := range table.Columns {
		for _, role := range TargetRoles {
			scores[role] = append(scores[role], e.scoreColumn(role, col))
		}
	}

	// 先解析最有把握的目标列，避免强信号列被其他目标抢占
	order := make([]Role, len(TargetRoles))
	copy(order, TargetRoles)
	sort.SliceStable(order, func(i, j int) bool {
		return bestScore(scores[order[i]]) > bestScore(scores[order[j]])
	})

	mapping := Mapping{}
	used := map[string]bool{}

	for _, role := range order {
		for _, candidate := range sortedByScore(scores[role]) {
			if used[candidate.Column] {
				continue
			}
			if candidate.Score >= e.vocab.MinScore {
				mapping[role] = candidate.Column
				used[candidate.Column] = true
				break
			}
		}
	}

	var missing []Role
	for _, role := range TargetRoles {
		if _, ok := mapping[role]; !ok {
			missing = append(missing, role)
		}
	}
	if len(missing) > 0 {
		return nil, scores, e.inferenceFailure(missing, scores)
	}

	return mapping, scores, nil
}

// inferenceFailure 为每个缺失目标列给出最高分候选（即使低于阈值）
func (e *Engine) inferenceFailure(missing []Role, scores map[Role][]ColumnScore) *InferenceError {
	suggestions := make(map[Role]*Suggestion, len(missing))
	for _, role := range missing {
		candidates := sortedByScore(scores[role])
		if len(candidates) == 0 {
			suggestions[role] = nil
			continue
		}
		top := candidates[0]
		suggestions[role] = &Suggestion{
			BestColumn: top.Column,
			Score:      round3(top.Score),
			Components: top.Components,
		}
	}
	return &InferenceError{Missing: missing, Suggestions: suggestions}
}

// sortedByScore 按得分降序的候选副本，同分保持列序
func sortedByScore(candidates []ColumnScore) []ColumnScore {
	out := make([]ColumnScore, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func bestScore(candidates []ColumnScore) float64 {
	best := 0.0
	for _, c := range candidates {
		if c.Score > best {
			best = c.Score
		}
	}
	return best
}
