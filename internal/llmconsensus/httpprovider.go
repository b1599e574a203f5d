package llmconsensus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sbvh/collegematch/internal/httpclient"
	"github.com/sbvh/collegematch/internal/matcherr"
)

// chatMessage mirrors the OpenAI-compatible chat completion wire format the
// teacher's LocalProvider speaks to Ollama/LocalAI-style servers.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// verdictPayload is the structured reply a provider is instructed to
// return; providers that don't comply produce an unparsable body, which
// is treated as an LLMProviderError (§7) and surfaces as ABSTAIN.
type verdictPayload struct {
	Verdict   string `json:"verdict"`
	Rationale string `json:"rationale"`
}

// HTTPProvider talks to any OpenAI-chat-compatible HTTP endpoint (a local
// Ollama/LocalAI server, or a hosted gateway) — the same shape the
// teacher's ai/provider.LocalProvider uses against local inference
// servers, generalized to any endpoint URL.
type HTTPProvider struct {
	id         string
	endpoint   string
	model      string
	httpClient *httpclient.SaferClient
}

// NewHTTPProvider builds a provider identified by id (persisted into the
// verdict cache) against the given OpenAI-compatible chat endpoint.
// llm.endpoints[] is operator-configured, most often a local Ollama/LocalAI
// server, so private-IP blocking stays off while the scheme allowlist and
// redirect cap from SaferClient still apply.
func NewHTTPProvider(id, endpoint, model string, timeout time.Duration) *HTTPProvider {
	blockPrivateIP := false
	return &HTTPProvider{
		id:       id,
		endpoint: endpoint,
		model:    model,
		httpClient: httpclient.NewSaferClientWithOptions(timeout, httpclient.SaferClientOptions{
			BlockPrivateIP: &blockPrivateIP,
		}),
	}
}

func (p *HTTPProvider) ID() string { return p.id }

const systemPrompt = `You are verifying a proposed entity match between a seat allotment row and a master college record. Respond ONLY with compact JSON: {"verdict":"APPROVE|REJECT|ABSTAIN","rationale":"<one sentence>"}. Reject if the states or streams clearly disagree.`

// Verify sends the proposed match to the configured endpoint and parses
// its structured verdict.
func (p *HTTPProvider) Verify(ctx context.Context, fields PromptFields) (Verdict, string, error) {
	userPrompt := buildUserPrompt(fields)

	reqBody := chatCompletionRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return VerdictAbstain, "", matcherr.WithKind(matcherr.Wrap(err, "encoding llm request"), matcherr.KindLLMProviderError)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return VerdictAbstain, "", matcherr.WithKind(matcherr.Wrap(err, "building llm request"), matcherr.KindLLMProviderError)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return VerdictAbstain, "", matcherr.WithKind(matcherr.Wrap(err, "llm call timed out"), matcherr.KindLLMTimeout)
		}
		return VerdictAbstain, "", matcherr.WithKind(matcherr.Wrap(err, "calling llm provider"), matcherr.KindLLMProviderError)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return VerdictAbstain, "", matcherr.WithKind(matcherr.Newf("llm provider %s returned status %d", p.id, resp.StatusCode), matcherr.KindLLMProviderError)
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return VerdictAbstain, "", matcherr.WithKind(matcherr.Wrap(err, "decoding llm response"), matcherr.KindLLMProviderError)
	}
	if len(completion.Choices) == 0 {
		return VerdictAbstain, "", matcherr.WithKind(matcherr.Newf("llm provider %s returned no choices", p.id), matcherr.KindLLMProviderError)
	}

	var payload verdictPayload
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return VerdictAbstain, content, matcherr.WithKind(matcherr.Wrap(err, "parsing llm verdict"), matcherr.KindLLMProviderError)
	}

	switch Verdict(strings.ToUpper(payload.Verdict)) {
	case VerdictApprove:
		return VerdictApprove, payload.Rationale, nil
	case VerdictReject:
		return VerdictReject, payload.Rationale, nil
	default:
		return VerdictAbstain, payload.Rationale, nil
	}
}

func buildUserPrompt(f PromptFields) string {
	return fmt.Sprintf(
		"Seat row: college=%q state=%q address=%q course=%q\nProposed master: college=%q state=%q address=%q stream=%q\nScorer output: score=%.3f method=%q",
		f.SeatCollege, f.SeatState, f.SeatAddress, f.SeatCourse,
		f.MasterCollege, f.MasterState, f.MasterAddress, f.MasterStream,
		f.Score, f.Method,
	)
}
