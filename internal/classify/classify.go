package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/llmjson"
	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/pkg/anthropic"
)

// DefaultMaxCodes is the number of industry codes attached to a result.
const DefaultMaxCodes = 3

const rankSystemPrompt = `You classify companies into industry codes. You will receive a candidate code list and a business description. Select up to %d codes that best describe the company's PRIMARY business activity. Only use codes from the candidate list, copying descriptions exactly. Respond with a valid JSON object: {"codes": [{"code": "<code>", "description": "<description>"}], "reasoning": "<one sentence>"}`

const rankUserPrompt = `Candidate codes:
%s

Business description:
%s`

// Classifier assigns approved industry codes to a business description.
type Classifier struct {
	ai       anthropic.Client
	model    string
	loader   *Loader
	maxCodes int
}

// NewClassifier builds a classifier. model is the reasoning model ID used
// for the ranking step.
func NewClassifier(ai anthropic.Client, model string, loader *Loader) *Classifier {
	return &Classifier{
		ai:       ai,
		model:    model,
		loader:   loader,
		maxCodes: DefaultMaxCodes,
	}
}

// Result is the classification outcome plus its provenance trail.
type Result struct {
	Codes      []model.CandidateIndustryCode
	Reasoning  string
	RulesFired []string
	Usage      anthropic.TokenUsage
}

// rankResponse is the JSON shape expected from the ranking step.
type rankResponse struct {
	Codes []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"codes"`
	Reasoning string `json:"reasoning"`
}

// Classify runs retrieve-then-rank over the approved taxonomy. Codes the
// model invents are dropped, blocking rules run in order, and the hard cap
// is applied after filtering so the most relevant survivors are retained.
func (c *Classifier) Classify(ctx context.Context, description string) (*Result, error) {
	if strings.TrimSpace(description) == "" {
		return nil, eris.New("classify: empty business description")
	}

	tax, err := c.loader.Load(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "classify: load taxonomy")
	}

	candidates := FilterCandidates(description, tax)
	zap.L().Debug("classify: candidate set",
		zap.Int("candidates", len(candidates)),
		zap.Int("approved_total", tax.Len()),
	)

	resp, err := c.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: 1024,
		System:    anthropic.BuildCachedSystemBlocks(fmt.Sprintf(rankSystemPrompt, c.maxCodes)),
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(rankUserPrompt, formatCandidates(candidates), description)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "classify: rank request")
	}

	var ranked rankResponse
	if err := llmjson.Unmarshal(resp.Text(), &ranked); err != nil {
		return nil, eris.Wrap(err, "classify: parse rank response")
	}

	// Post-filter: every selected code must exist verbatim in the
	// approved set; descriptions are replaced with the canonical text.
	var selected []model.CandidateIndustryCode
	for _, rc := range ranked.Codes {
		code := strings.TrimSpace(rc.Code)
		if !tax.Contains(code) {
			zap.L().Warn("classify: dropped code outside approved set",
				zap.String("code", code),
			)
			continue
		}
		selected = append(selected, model.CandidateIndustryCode{
			Code:        code,
			Description: tax.Description(code),
		})
	}

	kept, fired := ApplyBlockRules(description, selected)

	// Cap after filtering, not before.
	if len(kept) > c.maxCodes {
		kept = kept[:c.maxCodes]
	}

	return &Result{
		Codes:      kept,
		Reasoning:  ranked.Reasoning,
		RulesFired: fired,
		Usage:      resp.Usage,
	}, nil
}

func formatCandidates(codes []model.CandidateIndustryCode) string {
	var b strings.Builder
	for _, c := range codes {
		fmt.Fprintf(&b, "%s — %s\n", c.Code, c.Description)
	}
	return b.String()
}
