package gateway

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/interviewhub-backend/internal/pkg/envutil"
	"github.com/yungbote/interviewhub-backend/internal/pkg/logger"
)

// ModelChains holds the fixed, ordered fallback chains. The utility tier
// serves classification, titles and conversational turns (latency/cost); the
// generation tier serves checklist and interview content (quality).
type ModelChains struct {
	Utility    []string `yaml:"utility"`
	Generation []string `yaml:"generation"`
}

func defaultChains() ModelChains {
	return ModelChains{
		Utility:    []string{"gpt-4o-mini", "gpt-3.5-turbo-0125", "gpt-3.5-turbo"},
		Generation: []string{"gpt-4o", "gpt-4o-mini", "gpt-3.5-turbo"},
	}
}

// LoadModelChains resolves chains in order: LLM_MODELS_FILE (yaml), then
// OPENAI_UTILITY_MODELS / OPENAI_GENERATION_MODELS env lists, then defaults.
func LoadModelChains(log *logger.Logger) ModelChains {
	chains := defaultChains()

	if path := envutil.String("LLM_MODELS_FILE", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Warn("Could not read model chains file; using defaults", "path", path, "error", err)
		} else {
			var fileChains ModelChains
			if err := yaml.Unmarshal(raw, &fileChains); err != nil {
				log.Warn("Could not parse model chains file; using defaults", "path", path, "error", err)
			} else {
				if len(fileChains.Utility) > 0 {
					chains.Utility = fileChains.Utility
				}
				if len(fileChains.Generation) > 0 {
					chains.Generation = fileChains.Generation
				}
			}
		}
	}

	if models := envutil.List("OPENAI_UTILITY_MODELS"); len(models) > 0 {
		chains.Utility = models
	}
	if models := envutil.List("OPENAI_GENERATION_MODELS"); len(models) > 0 {
		chains.Generation = models
	}

	return chains
}

// CallTimeout bounds one outbound model call. A timed-out call counts as a
// failed chain entry; it is never silently retried inside the same request.
func CallTimeout() time.Duration {
	return time.Duration(envutil.Int("LLM_TIMEOUT_SECONDS", 45)) * time.Second
}
