package casepipe

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SectionType distinguishes the two rendered section kinds.
type SectionType string

const (
	SectionUseCase   SectionType = "usecase"
	SectionUserStory SectionType = "userstory"
)

// DocumentSection is one rendered, numbered unit of output documentation.
type DocumentSection struct {
	ID      string      `json:"id"`
	Type    SectionType `json:"type"`
	Role    string      `json:"role"`
	Goal    string      `json:"goal"`
	Content string      `json:"content"`
	Raw     UseCase     `json:"raw"`
}

// RenderOptions selects which section kinds Render emits.
type RenderOptions struct {
	UseCaseSpec bool
	UserStory   bool
}

// Render turns an ordered use-case list into numbered document sections.
// Pure transformation: same input and options always reproduce identical
// IDs and content. The UC and US counters are independent, 1-based, and
// advance only when their kind is enabled.
func Render(useCases []UseCase, opts RenderOptions) []DocumentSection {
	var sections []DocumentSection
	ucIndex, usIndex := 1, 1

	for _, uc := range useCases {
		goalBlock := uc.Goal.Block()
		goalStr := uc.Goal.Normalized()

		if opts.UseCaseSpec {
			sections = append(sections, DocumentSection{
				ID:      fmt.Sprintf("UC-%03d", ucIndex),
				Type:    SectionUseCase,
				Role:    uc.Role,
				Goal:    goalStr,
				Content: useCaseContent(uc, goalBlock),
				Raw:     uc,
			})
			ucIndex++
		}

		if opts.UserStory {
			sections = append(sections, DocumentSection{
				ID:      fmt.Sprintf("US-%03d", usIndex),
				Type:    SectionUserStory,
				Role:    uc.Role,
				Goal:    goalStr,
				Content: userStoryContent(uc, goalStr),
				Raw:     uc,
			})
			usIndex++
		}
	}
	return sections
}

// ComposeDocument renders the same sections as one flat markdown document.
func ComposeDocument(useCases []UseCase, opts RenderOptions) string {
	var sb strings.Builder

	for _, uc := range useCases {
		goalBlock := uc.Goal.Block()
		goalStr := uc.Goal.Normalized()

		if opts.UseCaseSpec {
			fmt.Fprintf(&sb, "## %s (%s)\n", goalBlock, uc.Role)
			fmt.Fprintf(&sb, "**Actor:** %s\n", uc.Role)
			fmt.Fprintf(&sb, "**Goal:** %s\n", goalBlock)
			fmt.Fprintf(&sb, "**Priority:** %s\n", priorityOrDefault(uc.Priority))
			fmt.Fprintf(&sb, "**Context:** %s\n", uc.Context)
			fmt.Fprintf(&sb, "\n### Tasks\n%s\n", bulleted(uc.Tasks, "- "))
			if uc.Inputs != nil {
				fmt.Fprintf(&sb, "\n### Inputs\n%s\n", jsonBlock(uc.Inputs))
			}
			if uc.Outputs != nil {
				fmt.Fprintf(&sb, "\n### Outputs\n%s\n", jsonBlock(uc.Outputs))
			}
			if uc.Rules != nil {
				fmt.Fprintf(&sb, "\n### Rules\n%s\n", bulleted(uc.Rules, "- "))
			}
			if uc.Triggers != nil {
				fmt.Fprintf(&sb, "\n### Triggers\n%s\n", bulleted(uc.Triggers, "- "))
			}
			if uc.Feedback != "" {
				fmt.Fprintf(&sb, "\n### Feedback\n%s\n", uc.Feedback)
			}
			sb.WriteString("\n---\n")
		}

		if opts.UserStory {
			fmt.Fprintf(&sb, "\n### User Story: %s\n", goalStr)
			fmt.Fprintf(&sb, "> **As a** %s\n> **I want to** %s\n> **So that** I can achieve my goal.\n\n", uc.Role, goalStr)
			fmt.Fprintf(&sb, "#### Acceptance Criteria\n%s\n", bulleted(uc.Tasks, "- [ ] "))
			if uc.Feedback != "" {
				fmt.Fprintf(&sb, "\n#### Feedback\n%s\n", uc.Feedback)
			}
			if uc.Priority != "" {
				fmt.Fprintf(&sb, "\n#### Priority\n%s\n", uc.Priority)
			}
			if uc.Triggers != nil {
				fmt.Fprintf(&sb, "\n#### Triggers\n%s\n", bulleted(uc.Triggers, "- "))
			}
			sb.WriteString("\n---\n")
		}
	}
	return sb.String()
}

func useCaseContent(uc UseCase, goalBlock string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Use Case: %s\n", goalBlock)
	fmt.Fprintf(&sb, "**Actor:** %s\n", uc.Role)
	fmt.Fprintf(&sb, "**Priority:** %s\n", priorityOrDefault(uc.Priority))
	fmt.Fprintf(&sb, "**Context:** %s\n", uc.Context)
	fmt.Fprintf(&sb, "\n### Tasks\n%s", bulleted(uc.Tasks, "- "))
	if uc.Inputs != nil {
		fmt.Fprintf(&sb, "\n### Inputs\n%s", jsonBlock(uc.Inputs))
	}
	if uc.Outputs != nil {
		fmt.Fprintf(&sb, "\n### Outputs\n%s", jsonBlock(uc.Outputs))
	}
	if uc.Rules != nil {
		fmt.Fprintf(&sb, "\n### Rules\n%s", bulleted(uc.Rules, "- "))
	}
	if uc.Triggers != nil {
		fmt.Fprintf(&sb, "\n### Triggers\n%s", bulleted(uc.Triggers, "- "))
	}
	if uc.Feedback != "" {
		fmt.Fprintf(&sb, "\n### Feedback\n%s", uc.Feedback)
	}
	return sb.String()
}

func userStoryContent(uc UseCase, goalStr string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "### User Story: %s\n", goalStr)
	fmt.Fprintf(&sb, "> **As a** %s\n> **I want to** %s\n> **So that** I can achieve my goal.\n\n", uc.Role, goalStr)
	fmt.Fprintf(&sb, "#### Acceptance Criteria\n%s", bulleted(uc.Tasks, "- [ ] "))
	if uc.Feedback != "" {
		fmt.Fprintf(&sb, "\n#### Feedback\n%s", uc.Feedback)
	}
	if uc.Priority != "" {
		fmt.Fprintf(&sb, "\n#### Priority\n%s", uc.Priority)
	}
	if uc.Triggers != nil {
		fmt.Fprintf(&sb, "\n#### Triggers\n%s", bulleted(uc.Triggers, "- "))
	}
	return sb.String()
}

func priorityOrDefault(p string) string {
	if p == "" {
		return "medium"
	}
	return p
}

func bulleted(items []string, prefix string) string {
	if len(items) == 0 {
		return ""
	}
	return prefix + strings.Join(items, "\n"+prefix)
}

// jsonBlock embeds structured data as a fenced JSON block. MarshalIndent
// sorts map keys, which keeps rendering deterministic.
func jsonBlock(v map[string]any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "```json\n{}\n```"
	}
	return "```json\n" + string(b) + "\n```"
}
