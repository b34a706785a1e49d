package decision

import (
	"fmt"
	"strings"

	"github.com/fenwick-labs/pokeloop/pkg/agent"
	"github.com/fenwick-labs/pokeloop/pkg/frame"
)

func formatButtonList(buttons []frame.Button) string {
	if len(buttons) == 0 {
		return "none"
	}
	names := make([]string, len(buttons))
	for i, b := range buttons {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}

func formatCommandHistory(entries []agent.FrameHistoryEntry) string {
	if len(entries) == 0 {
		return "(no prior actions this run)"
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s -> %s: %s\n", e.Button, e.VisualChange, e.Reasoning)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatConfidenceScores(scores agent.ButtonConfidence) string {
	if len(scores) == 0 {
		return "(none yet)"
	}
	var b strings.Builder
	for _, button := range frame.AllButtons {
		if score, ok := scores[button]; ok {
			fmt.Fprintf(&b, "%s=%.2f ", button, score)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// buildScreenTypePrompt assembles the lightweight classification prompt.
func buildScreenTypePrompt(in Inputs) string {
	var b strings.Builder
	b.WriteString("Classify the attached game screen.\n")
	b.WriteString("Respond as JSON: {\"screenType\": one of overworld|battle|menu|dialogue|textEntry|transition|unknown, \"briefDescription\": string}.\n")
	fmt.Fprintf(&b, "Previous screen type: %s\n", in.PreviousGameState.ScreenType)
	return b.String()
}

// buildDecisionPrompt assembles the full decision prompt: system framing,
// history, notes, heuristic hints, and the screen-type result.
func buildDecisionPrompt(in Inputs, screenType ScreenTypeResult) string {
	var b strings.Builder

	b.WriteString("You are piloting a Game Boy-style RPG toward long-horizon goals.\n")
	fmt.Fprintf(&b, "Pre-analyzed screen type: %s (%s)\n\n", screenType.ScreenType, screenType.BriefDescription)

	b.WriteString("Recent actions:\n")
	b.WriteString(formatCommandHistory(in.CommandHistory))
	b.WriteString("\n\n")

	b.WriteString("Previous per-button confidence scores: ")
	b.WriteString(formatConfidenceScores(in.PreviousConfidenceScores))
	b.WriteString("\n\n")

	if len(in.PreviousDialogHistory) > 0 {
		b.WriteString("Recent model comments:\n")
		for _, comment := range in.PreviousDialogHistory {
			fmt.Fprintf(&b, "- %s\n", comment)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Avoid (consecutive-use hints): %s\n", formatButtonList(in.AvoidHints))
	fmt.Fprintf(&b, "Avoid (no-change penalty): %s\n", formatButtonList(in.ButtonsToAvoid))
	fmt.Fprintf(&b, "Banned this prompt: %s\n", formatButtonList(in.BannedButtons))
	if in.PriorityHint != "" {
		fmt.Fprintf(&b, "Priority: %s\n", in.PriorityHint)
	}
	b.WriteString("\n")

	if in.NotesProjection != "" {
		b.WriteString("Notes:\n")
		b.WriteString(in.NotesProjection)
		b.WriteString("\n\n")
	}

	b.WriteString("Respond as JSON matching the decision schema: ")
	b.WriteString(`{"gameState": {...}, "decision": {"screenAnalysis": string, "reasoning": string, "personality_comment": string, "buttonSequence": [{...11 button confidences...}], "progressConfidence": number, "notes": {...}}}`)
	b.WriteString("\n")

	return b.String()
}
