// ABOUTME: Lead generator state machine over a streamed model response
// ABOUTME: Extracts a JSON array from the text or falls back to two sample leads
package leadgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"go.uber.org/zap"
)

var ErrEmptyNiche = errors.New("niche is required")

// PreviewLimit is how many runes of the live text Preview shows.
const PreviewLimit = 500

type State int

const (
	Idle State = iota
	Generating
	Populated
	IdleWithFallback
)

func (s State) String() string {
	switch s {
	case Generating:
		return "generating"
	case Populated:
		return "populated"
	case IdleWithFallback:
		return "idle-with-fallback"
	default:
		return "idle"
	}
}

// Generator turns a niche into leads. It is safe for one generation at a
// time with concurrent readers.
type Generator struct {
	streamer TextStreamer
	model    string
	logger   *zap.Logger

	mu    sync.RWMutex
	state State
	text  strings.Builder
	leads []models.Lead
	niche string
}

func NewGenerator(streamer TextStreamer, model string, logger *zap.Logger) *Generator {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{streamer: streamer, model: model, logger: logger, leads: []models.Lead{}}
}

// BuildPrompt renders the generation prompt for niche.
func BuildPrompt(niche string) string {
	return fmt.Sprintf(`Generate 10 high-quality B2B leads for the "%s" niche. For each lead, provide:
- Company name (real or realistic)
- Contact person name and title
- Professional email address
- Brief personalized intro (2-3 sentences) for cold outreach
- Industry category
- Company size (startup, small, medium, large)
- Website URL (if applicable)

Format as JSON array with fields: companyName, contactName, contactEmail, contactTitle, personalizedIntro, industry, companySize, website`, niche)
}

// Generate clears prior results, streams a response and populates leads.
// Generation failures never surface; they end in the sample leads.
func (g *Generator) Generate(ctx context.Context, niche string) ([]models.Lead, error) {
	niche = strings.TrimSpace(niche)
	if niche == "" {
		return nil, ErrEmptyNiche
	}

	g.mu.Lock()
	g.state = Generating
	g.text.Reset()
	g.leads = []models.Lead{}
	g.niche = niche
	g.mu.Unlock()

	err := g.streamer.StreamText(ctx, Prompt{Text: BuildPrompt(niche), Model: g.model, MaxTokens: DefaultMaxTokens}, func(chunk string) {
		g.mu.Lock()
		g.text.WriteString(chunk)
		g.mu.Unlock()
	})

	g.mu.Lock()
	defer g.mu.Unlock()

	if err != nil {
		g.logger.Warn("lead generation failed, using samples", zap.String("niche", niche), zap.Error(err))
		return g.fallback(niche), nil
	}

	leads, ok := ParseLeads(g.text.String())
	if !ok || len(leads) == 0 {
		g.logger.Warn("no leads in model output, using samples", zap.String("niche", niche))
		return g.fallback(niche), nil
	}

	for i := range leads {
		leads[i].ID = transform.NewLeadID()
	}
	g.leads = leads
	g.state = Populated
	return copyLeads(leads), nil
}

func (g *Generator) fallback(niche string) []models.Lead {
	g.leads = SampleLeads(niche)
	g.state = IdleWithFallback
	return copyLeads(g.leads)
}

func (g *Generator) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Leads returns the current result set.
func (g *Generator) Leads() []models.Lead {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return copyLeads(g.leads)
}

// Niche is the niche of the last generation.
func (g *Generator) Niche() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.niche
}

// Preview is the start of the streamed text so far.
func (g *Generator) Preview() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	runes := []rune(g.text.String())
	if len(runes) <= PreviewLimit {
		return string(runes)
	}
	return string(runes[:PreviewLimit]) + "..."
}

func copyLeads(leads []models.Lead) []models.Lead {
	out := make([]models.Lead, len(leads))
	copy(out, leads)
	return out
}

// ParseLeads finds the first balanced JSON array in text that decodes as
// leads.
func ParseLeads(text string) ([]models.Lead, bool) {
	for start := strings.IndexByte(text, '['); start >= 0; {
		if end, ok := matchBracket(text, start); ok {
			var leads []models.Lead
			if err := json.Unmarshal([]byte(text[start:end+1]), &leads); err == nil {
				return leads, true
			}
		}
		next := strings.IndexByte(text[start+1:], '[')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, false
}

// matchBracket returns the index of the ']' closing the '[' at start,
// ignoring brackets inside JSON strings.
func matchBracket(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// SampleLeads are shown when generation yields nothing usable.
func SampleLeads(niche string) []models.Lead {
	industry := niche
	if industry == "" {
		industry = "Technology"
	}
	return []models.Lead{
		{
			ID:                transform.NewLeadID(),
			CompanyName:       "TechFlow Solutions",
			ContactName:       "Sarah Chen",
			ContactEmail:      "sarah.chen@techflow.com",
			ContactTitle:      "VP of Marketing",
			PersonalizedIntro: fmt.Sprintf("Hi Sarah, I noticed TechFlow Solutions has been expanding rapidly in the %s space. I'd love to discuss how we can help streamline your lead generation process.", niche),
			Industry:          industry,
			CompanySize:       "Medium",
			Website:           "https://techflow.com",
		},
		{
			ID:                transform.NewLeadID(),
			CompanyName:       "InnovateCorp",
			ContactName:       "Michael Rodriguez",
			ContactEmail:      "m.rodriguez@innovatecorp.io",
			ContactTitle:      "Head of Business Development",
			PersonalizedIntro: fmt.Sprintf("Hello Michael, InnovateCorp's recent growth in %s caught my attention. I believe our AI-powered solutions could significantly boost your outreach efficiency.", niche),
			Industry:          industry,
			CompanySize:       "Large",
			Website:           "https://innovatecorp.io",
		},
	}
}
