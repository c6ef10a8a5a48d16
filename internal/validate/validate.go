package validate

import (
	"fmt"
	"strings"

	"charnnections/internal/store"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	GroupCount = 4
	GroupSize  = 4
)

const (
	codeGroupCount       = "group_count"
	codeGroupSize        = "group_size"
	codeMissingTrait     = "missing_trait"
	codeMissingValue     = "missing_trait_value"
	codeDuplicateTrait   = "duplicate_trait"
	codeDuplicateMember  = "duplicate_member"
	codeReusedCharacter  = "reused_character"
	codeDifficultyRange  = "difficulty_out_of_range"
	codeNoAttributes     = "character_without_attributes"
	codeSparseIndex      = "too_few_eligible_pairs"
	codeMissingStandard  = "missing_attribute_standard"
	codeUnnamedCharacter = "character_without_name"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Group    int // 1-based; 0 when the issue is not about one group
	Entity   string
}

type Report struct {
	Issues []Issue
}

func (r *Report) add(severity Severity, code string, group int, entity string, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Severity: severity,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Group:    group,
		Entity:   entity,
	})
}

func (r *Report) Errors() []Issue { return r.filter(SeverityError) }

func (r *Report) Warnings() []Issue { return r.filter(SeverityWarn) }

func (r *Report) HasErrors() bool { return len(r.Errors()) > 0 }

// Summary joins the error messages into one line.
func (r *Report) Summary() string {
	errs := r.Errors()
	messages := make([]string, 0, len(errs))
	for _, issue := range errs {
		messages = append(messages, issue.Message)
	}
	return strings.Join(messages, "; ")
}

func (r *Report) filter(severity Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

// Puzzle checks the invariants a daily puzzle must hold before it is
// persisted: four groups of four distinct characters, sixteen distinct
// characters overall, four distinct trait keys.
func Puzzle(groups []store.PuzzleGroup) *Report {
	report := &Report{}
	if len(groups) != GroupCount {
		report.add(SeverityError, codeGroupCount, 0, "", "puzzle must have exactly %d groups, got %d", GroupCount, len(groups))
	}

	traits := make(map[string]int)
	owners := make(map[int64]int)
	for i, group := range groups {
		n := i + 1
		if strings.TrimSpace(group.Trait) == "" {
			report.add(SeverityError, codeMissingTrait, n, "", "group %d has no trait", n)
		} else if prev, ok := traits[group.Trait]; ok {
			report.add(SeverityError, codeDuplicateTrait, n, "", "groups %d and %d share trait %q", prev, n, group.Trait)
		} else {
			traits[group.Trait] = n
		}
		if group.TraitValue.IsZero() {
			report.add(SeverityError, codeMissingValue, n, "", "group %d has no trait value", n)
		}
		if len(group.Characters) != GroupSize {
			report.add(SeverityError, codeGroupSize, n, "", "group %d must have exactly %d characters, got %d", n, GroupSize, len(group.Characters))
		}
		if group.Difficulty < 1 || group.Difficulty > 4 {
			report.add(SeverityWarn, codeDifficultyRange, n, "", "group %d difficulty %d is outside 1-4", n, group.Difficulty)
		}

		seen := make(map[int64]struct{}, len(group.Characters))
		for _, c := range group.Characters {
			entity := fmt.Sprintf("%d", c.ID)
			if _, dup := seen[c.ID]; dup {
				report.add(SeverityError, codeDuplicateMember, n, entity, "group %d lists character %d twice", n, c.ID)
				continue
			}
			seen[c.ID] = struct{}{}
			if prev, ok := owners[c.ID]; ok {
				report.add(SeverityError, codeReusedCharacter, n, entity, "character %d appears in groups %d and %d", c.ID, prev, n)
				continue
			}
			owners[c.ID] = n
		}
	}
	return report
}
