package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pkgerrors "learnpath/backend/pkg/errors"
)

type stubGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func gatewayRequest() GenerationRequest {
	return GenerationRequest{
		UserID:         "u1",
		SyllabusTopics: []string{"Algebra", "Calculus"},
		ModelQuestions: []string{"Define a limit"},
		StartDate:      "2024-01-01",
		EndDate:        "2024-01-03",
		SessionHours:   2,
		LeisureWindows: map[string]TimeWindow{"lunch": {Start: "01:00 PM", End: "01:30 PM"}},
	}
}

const twoDayPlan = "```json\n" + `[
  {"day": "2024-01-01", "slots": [{"time": "09:00-10:30", "topics": ["Algebra", "Calculus"], "mostAskedQuestions": []}]},
  {"day": "2024-01-02", "slots": [{"time": "09:00-10:30", "topics": ["Calculus"], "mostAskedQuestions": []}]}
]` + "\n```"

func TestGateway_GeneratePlan(t *testing.T) {
	gen := &stubGenerator{reply: twoDayPlan}
	gw := NewGateway(gen, GatewayConfig{Policy: PolicyWarn}, zap.NewNop())

	schedule, warnings, err := gw.GeneratePlan(context.Background(), gatewayRequest())
	require.NoError(t, err)

	require.Len(t, schedule, 2)
	assert.Len(t, warnings, 1)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], `"Algebra"`)
	assert.Contains(t, gen.prompts[0], "lunch: 01:00 PM to 01:30 PM")
}

func TestGateway_AcceptsDayWithOneFullSlot(t *testing.T) {
	reply := `[{"day": "2024-01-01", "slots": [
		{"time": "09:00-10:30", "topics": ["A", "B", "C"]},
		{"time": "11:00-12:00", "topics": ["D"]}
	]}]`
	gw := NewGateway(&stubGenerator{reply: reply}, GatewayConfig{}, zap.NewNop())
	req := gatewayRequest()
	req.EndDate = "2024-01-02"

	schedule, warnings, err := gw.GeneratePlan(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, schedule, 1)
	assert.Len(t, schedule[0].Slots, 2)
}

func TestGateway_RejectPolicy(t *testing.T) {
	gw := NewGateway(&stubGenerator{reply: twoDayPlan}, GatewayConfig{Policy: PolicyReject}, zap.NewNop())

	_, _, err := gw.GeneratePlan(context.Background(), gatewayRequest())

	var schemaErr *pkgerrors.SchemaViolationError
	require.True(t, errors.As(err, &schemaErr))
	assert.Len(t, schemaErr.Violations, 1)
}

func TestGateway_StructuralViolationAlwaysRejected(t *testing.T) {
	reply := `[{"day": "2024-01-01", "slots": [
		{"time": "09:00-10:30", "topics": ["A", "B"]},
		{"time": "09:00-10:30", "topics": ["C", "D"]}
	]}, {"day": "2024-01-02", "slots": [{"time": "09:00-10:30", "topics": ["A", "B"]}]}]`
	gw := NewGateway(&stubGenerator{reply: reply}, GatewayConfig{Policy: PolicyWarn}, zap.NewNop())

	_, _, err := gw.GeneratePlan(context.Background(), gatewayRequest())

	assert.Equal(t, pkgerrors.KindSchemaViolation, pkgerrors.KindOf(err))
}

func TestGateway_PropagatesErrors(t *testing.T) {
	upstream := &pkgerrors.UpstreamServiceError{Service: "llm", StatusCode: 503, Body: "busy"}

	t.Run("upstream", func(t *testing.T) {
		gw := NewGateway(&stubGenerator{err: upstream}, GatewayConfig{}, zap.NewNop())
		_, _, err := gw.GeneratePlan(context.Background(), gatewayRequest())
		assert.ErrorIs(t, err, upstream)
	})

	t.Run("format", func(t *testing.T) {
		gw := NewGateway(&stubGenerator{reply: "Sorry, I cannot help"}, GatewayConfig{}, zap.NewNop())
		_, _, err := gw.GeneratePlan(context.Background(), gatewayRequest())
		assert.Equal(t, pkgerrors.KindResponseFormat, pkgerrors.KindOf(err))
	})

	t.Run("validation happens before the call", func(t *testing.T) {
		gen := &stubGenerator{reply: twoDayPlan}
		gw := NewGateway(gen, GatewayConfig{}, zap.NewNop())
		req := gatewayRequest()
		req.SessionHours = -1

		_, _, err := gw.GeneratePlan(context.Background(), req)
		assert.Equal(t, pkgerrors.KindValidation, pkgerrors.KindOf(err))
		assert.Empty(t, gen.prompts)
	})
}

func TestBuildPrompt_IncludesPriorPlan(t *testing.T) {
	req := gatewayRequest()
	req.PriorPlan = Schedule{{Day: "2024-01-01", Slots: []Slot{{Time: "09:00-10:30", Topics: []string{"Algebra"}}}}}
	req.IncludeQuestions = true

	prompt := BuildPrompt(req, Rules{MinTopicsPerSlot: 2, MinQuestionsPerSlot: 5})

	assert.Contains(t, prompt, "Present plan:")
	assert.Contains(t, prompt, "at least 5 entries in mostAskedQuestions")
	assert.True(t, strings.Contains(prompt, "2024-01-03"))
}
