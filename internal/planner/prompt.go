package planner

import (
	"encoding/json"
	"fmt"
	"strings"
)

const outputSchema = `[
  {
    "day": "YYYY-MM-DD",
    "slots": [
      { "time": "HH:MM-HH:MM", "topics": ["..."], "mostAskedQuestions": ["..."] }
    ]
  }
]`

// BuildPrompt 构造发给文本生成服务的指令
// 指令内容对调用方不透明，只保证输出契约与 outputSchema 一致
func BuildPrompt(req GenerationRequest, rules Rules) string {
	var b strings.Builder

	b.WriteString("You are a study planner. Build a day-by-day study schedule from the inputs below.\n\n")
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "1. Cover every date from %s up to but not including %s, one entry per date.\n", req.StartDate, req.EndDate)
	b.WriteString("2. Split each day into time slots labelled \"HH:MM-HH:MM\" (24h); labels must be unique within a day.\n")
	fmt.Fprintf(&b, "3. Plan about %.1f hours of study per day and never overlap the leisure windows.\n", req.SessionHours)
	fmt.Fprintf(&b, "4. Every slot needs at least %d topics taken from the syllabus, ordered by difficulty.\n", rules.MinTopicsPerSlot)
	if req.IncludeQuestions {
		fmt.Fprintf(&b, "5. Every slot needs at least %d entries in mostAskedQuestions, drawn from the model questions.\n", rules.MinQuestionsPerSlot)
	} else {
		b.WriteString("5. mostAskedQuestions may be an empty array.\n")
	}
	if len(req.PriorPlan) > 0 {
		b.WriteString("6. A plan already exists. Keep its slots unchanged wherever the inputs that affect them did not change; only adjust what the new inputs require.\n")
	}
	b.WriteString("\nReturn ONLY raw JSON matching this shape, with no prose and no code fences:\n")
	b.WriteString(outputSchema)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Syllabus topics: %s\n", mustJSON(CleanTopics(req.SyllabusTopics)))
	fmt.Fprintf(&b, "Model questions: %s\n", mustJSON(CleanTopics(req.ModelQuestions)))
	fmt.Fprintf(&b, "Start date: %s\n", req.StartDate)
	fmt.Fprintf(&b, "End date: %s\n", req.EndDate)
	fmt.Fprintf(&b, "Session hours: %.1f\n", req.SessionHours)

	b.WriteString("Leisure windows:\n")
	for _, name := range req.windowNames() {
		w := req.LeisureWindows[name]
		fmt.Fprintf(&b, "  - %s: %s to %s\n", name, w.Start, w.End)
	}

	if len(req.PriorPlan) > 0 {
		fmt.Fprintf(&b, "Present plan: %s\n", mustJSON(req.PriorPlan))
	}
	return b.String()
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}
