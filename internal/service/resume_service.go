package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"ai-workbench/internal/encoder"
	"ai-workbench/internal/extractor"
	"ai-workbench/internal/model"
	"ai-workbench/internal/schema"
	"ai-workbench/pkg/llm"
	"ai-workbench/pkg/log"
)

const resumeInstructionTemplate = `You are an expert résumé writer and ATS specialist.

You are given a job description and two résumés of the same candidate:
a "software" résumé and a "core" résumé.

1. Decide which of the two résumés is more relevant to the job description and report it as selectedResumeType.
2. Using ONLY the selected résumé, rewrite and reorganize its content to match the job description:
   reorder skills by relevance, rephrase experience bullets to highlight matching responsibilities,
   and write a targeted professional summary.
3. Do NOT invent anything. Every name, employer, date, skill, project and degree in your answer must
   already appear in the selected résumé. Omit what is not there instead of guessing.

Job description:
%s`

// ResumeOptions 控制简历合成的校验策略。
type ResumeOptions struct {
	// StrictGrounding drops the whole result when any skill cannot be traced to the source text.
	StrictGrounding bool
}

// ResumeService 定义了简历优化（结构化合成）的接口。
type ResumeService interface {
	// Optimize returns the validated result, or nil on any failure.
	Optimize(ctx context.Context, jobContext string, software, core model.Input) *model.ResumeOptimization
}

type resumeService struct {
	extractor *extractor.Extractor
	schema    *schema.Node
	opts      ResumeOptions
}

// NewResumeService 创建一个新的 ResumeService 实例。
func NewResumeService(llmClient llm.Client, opts ResumeOptions) ResumeService {
	return &resumeService{
		extractor: extractor.New(llmClient),
		schema:    ResumeSchema(),
		opts:      opts,
	}
}

func (s *resumeService) Optimize(ctx context.Context, jobContext string, software, core model.Input) *model.ResumeOptimization {
	return dispatch(ctx, "resume.optimize", constant[*model.ResumeOptimization](nil), func(ctx context.Context) (*model.ResumeOptimization, error) {
		softwarePart, err := encoder.Encode(software)
		if err != nil {
			return nil, err
		}
		corePart, err := encoder.Encode(core)
		if err != nil {
			return nil, err
		}
		parts := []model.Part{
			model.TextPart{Content: `Source résumé "software":`},
			softwarePart,
			model.TextPart{Content: `Source résumé "core":`},
			corePart,
		}

		result, err := extractor.ExtractAs[model.ResumeOptimization](ctx, s.extractor, fmt.Sprintf(resumeInstructionTemplate, jobContext), parts, s.schema)
		if err != nil {
			return nil, err
		}

		selected := core
		if result.SelectedResumeType == model.ResumeSoftware {
			selected = software
		}
		result.UngroundedSkills = ungroundedSkills(result.Content.Skills, selected)
		if len(result.UngroundedSkills) > 0 {
			log.Warnw("[ResumeService] 结果包含源文档中不存在的技能",
				"selected", result.SelectedResumeType,
				"ungrounded", result.UngroundedSkills,
				"strict", s.opts.StrictGrounding,
			)
			if s.opts.StrictGrounding {
				return nil, &schema.ViolationError{
					Path:   "$.content.skills",
					Reason: fmt.Sprintf("skills not found in selected résumé: %s", strings.Join(result.UngroundedSkills, ", ")),
				}
			}
		}
		return result, nil
	})
}

// ungroundedSkills returns the skills that do not occur in the selected source
// as a whole-token sequence, so "Java" is not found inside "JavaScript".
// Only text sources can be checked; file sources yield nil.
func ungroundedSkills(skills []string, source model.Input) []string {
	text, ok := source.(model.Text)
	if !ok {
		return nil
	}
	haystack := matchTokens(string(text))
	var missing []string
	for _, skill := range skills {
		if !containsSequence(haystack, matchTokens(skill)) {
			missing = append(missing, skill)
		}
	}
	return missing
}

// matchTokens lowercases s and splits it on everything except letters, digits
// and the "+#." that occur inside skill names (C++, C#, Node.js). Sentence
// dots at the end of a token are dropped.
func matchTokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#' && r != '.'
	})
	tokens := fields[:0]
	for _, f := range fields {
		if f = strings.TrimRight(f, "."); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// containsSequence reports whether needle occurs contiguously in haystack.
// An empty needle never matches.
func containsSequence(haystack, needle []string) bool {
	if len(needle) == 0 {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if slices.Equal(haystack[i:i+len(needle)], needle) {
			return true
		}
	}
	return false
}
