package llm_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/liora-api/internal/adapters/llm"
	"github.com/PabloGalante/liora-api/internal/domain"
	"github.com/PabloGalante/liora-api/internal/observability"
)

type stubClient struct {
	reply   string
	err     error
	block   bool
	calls   int
	persona string
	window  []domain.WindowTurn
	text    string
}

func (s *stubClient) GenerateReply(ctx context.Context, persona string, window []domain.WindowTurn, userText string) (string, error) {
	s.calls++
	s.persona, s.window, s.text = persona, window, userText
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.reply, s.err
}

func newResponder(client domain.LLMClient, metrics *observability.Collector) *llm.Responder {
	return llm.NewResponder(client, llm.ResponderConfig{
		Persona: llm.DefaultPersona(),
		Timeout: 50 * time.Millisecond,
		Breaker: llm.BreakerSettings{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			MinRequests:      3,
			FailureThreshold: 1,
		},
		Metrics: metrics,
	})
}

func TestRespondPassesPersonaWindowAndText(t *testing.T) {
	stub := &stubClient{reply: "You're not alone 🌱"}
	r := newResponder(stub, nil)

	window := []domain.WindowTurn{{Role: domain.WindowRoleUser, Text: "hi"}, {Role: domain.WindowRoleModel, Text: "hello"}}
	got := r.Respond(context.Background(), window, "I feel stuck today")

	assert.Equal(t, "You're not alone 🌱", got)
	assert.Equal(t, llm.DefaultPersona().Instruction(), stub.persona)
	assert.Equal(t, window, stub.window)
	assert.Equal(t, "I feel stuck today", stub.text)
}

func TestRespondFallbacks(t *testing.T) {
	cases := map[string]struct {
		client *stubClient
		want   string
	}{
		"transport error": {client: &stubClient{err: errors.New("connection reset")}, want: llm.ErrorFallback},
		"empty reply err": {client: &stubClient{err: llm.ErrEmptyReply}, want: llm.EmptyReplyFallback},
		"blank text":      {client: &stubClient{reply: "   "}, want: llm.EmptyReplyFallback},
		"timeout":         {client: &stubClient{block: true}, want: llm.ErrorFallback},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			metrics := observability.NewCollector("test")
			r := newResponder(tc.client, metrics)

			got := r.Respond(context.Background(), nil, "hello")
			assert.Equal(t, tc.want, got)
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeneratorOutcomes.WithLabelValues("fallback")))
		})
	}
}

func TestRespondOpenBreakerSkipsClient(t *testing.T) {
	stub := &stubClient{err: errors.New("unavailable")}
	r := newResponder(stub, nil)

	for i := 0; i < 3; i++ {
		require.Equal(t, llm.ErrorFallback, r.Respond(context.Background(), nil, "hi"))
	}
	require.Equal(t, 3, stub.calls)

	// Breaker is open now: the client is not called but a reply still comes back.
	assert.Equal(t, llm.ErrorFallback, r.Respond(context.Background(), nil, "hi"))
	assert.Equal(t, 3, stub.calls)
}

func TestPersonaContract(t *testing.T) {
	p := llm.NewPersona("Liora", "1800-599-0019")
	instr := p.Instruction()

	assert.Contains(t, instr, "Liora")
	assert.Contains(t, instr, "1800-599-0019")
	assert.Contains(t, instr, "Never give a clinical diagnosis")
	assert.Contains(t, instr, `"why"`)
	assert.True(t, strings.Contains(instr, "1 to 4 sentences"))
}

func TestBuildContentsAppendsUserTurn(t *testing.T) {
	window := []domain.WindowTurn{
		{Role: domain.WindowRoleUser, Text: "a"},
		{Role: domain.WindowRoleModel, Text: "b"},
	}

	contents := llm.BuildContents(window, "c")
	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "user", contents[2].Role)
	assert.Equal(t, "c", contents[2].Parts[0].Text)
}

func TestMockLLMReplies(t *testing.T) {
	m := llm.NewMockLLM()
	reply, err := m.GenerateReply(context.Background(), "", nil, "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, reply)
}

func TestRespondCanceledCallersDoNotOpenBreaker(t *testing.T) {
	stub := &stubClient{block: true}
	r := newResponder(stub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		require.Equal(t, llm.ErrorFallback, r.Respond(ctx, nil, "hi"))
	}

	stub.block = false
	stub.reply = "real reply"
	assert.Equal(t, "real reply", r.Respond(context.Background(), nil, "hi"))
	assert.Equal(t, 6, stub.calls)
}

func TestRespondOwnTimeoutStillOpensBreaker(t *testing.T) {
	stub := &stubClient{block: true}
	r := newResponder(stub, nil)

	for i := 0; i < 3; i++ {
		require.Equal(t, llm.ErrorFallback, r.Respond(context.Background(), nil, "hi"))
	}

	stub.block = false
	stub.reply = "real reply"
	assert.Equal(t, llm.ErrorFallback, r.Respond(context.Background(), nil, "hi"))
	assert.Equal(t, 3, stub.calls)
}

func TestRespondEmptyRepliesDoNotOpenBreaker(t *testing.T) {
	stub := &stubClient{err: llm.ErrEmptyReply}
	r := newResponder(stub, nil)

	for i := 0; i < 5; i++ {
		require.Equal(t, llm.EmptyReplyFallback, r.Respond(context.Background(), nil, "hi"))
	}

	stub.err = nil
	stub.reply = "real reply"
	assert.Equal(t, "real reply", r.Respond(context.Background(), nil, "hi"))
	assert.Equal(t, 6, stub.calls)
}
