package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/admission/cache"
	"github.com/tripwise-ai/tripwise/pkg/admission/quota"
	"github.com/tripwise-ai/tripwise/pkg/common"
	"github.com/tripwise-ai/tripwise/pkg/domain"
	"github.com/tripwise-ai/tripwise/pkg/infra/providers/llm"
)

const phrasebookQuotaKey = "phrasebook"

type phrasebookRequest struct {
	Destination string `json:"destination"`
	Language    string `json:"language"`
	Scenario    string `json:"scenario"`
}

type phrasebookResponse struct {
	Phrasebook string `json:"phrasebook"`
	Language   string `json:"language"`
	Scenario   string `json:"scenario"`
	Cached     bool   `json:"cached"`
}

type phrasebookHandler struct {
	logger      *logrus.Logger
	cache       *cache.Cache
	quota       *quota.Engine
	llmClient   llm.Client
	quotaLimit  int
	quotaWindow time.Duration
}

func NewPhrasebookHandler(
	logger *logrus.Logger,
	cacheInstance *cache.Cache,
	quotaEngine *quota.Engine,
	llmClient llm.Client,
	quotaLimit int,
	quotaWindow time.Duration,
) Handler {
	return &phrasebookHandler{
		logger:      logger,
		cache:       cacheInstance,
		quota:       quotaEngine,
		llmClient:   llmClient,
		quotaLimit:  quotaLimit,
		quotaWindow: quotaWindow,
	}
}

func (h *phrasebookHandler) Handle(c *fiber.Ctx) error {
	var req phrasebookRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Reject(c, fiber.StatusBadRequest, domain.CodeValidationError,
			"invalid request body", nil)
	}
	if req.Destination == "" || req.Language == "" {
		return domain.Reject(c, fiber.StatusBadRequest, domain.CodeValidationError,
			"destination and language are required", nil)
	}
	if req.Scenario == "" {
		req.Scenario = "general"
	}

	cacheKey := req.Destination + ":" + req.Language + ":" + req.Scenario
	if cached, ok := h.cache.Get(common.PhrasebookNamespace, cacheKey); ok {
		if text, ok := cached.(string); ok {
			return c.Status(fiber.StatusOK).JSON(phrasebookResponse{
				Phrasebook: text,
				Language:   req.Language,
				Scenario:   req.Scenario,
				Cached:     true,
			})
		}
	}

	// Generation is metered; cache hits above are free.
	decision := h.quota.Enforce(quotaIdentifier(c), phrasebookQuotaKey, h.quotaLimit, h.quotaWindow)
	if !decision.Allowed {
		return rejectQuotaExceeded(c, phrasebookQuotaKey, decision.ResetAt.Unix())
	}

	prompt := fmt.Sprintf(
		"Create a traveler phrasebook for %s in %s for the scenario %q. "+
			"List useful phrases with pronunciation hints and translations.",
		req.Destination, req.Language, req.Scenario,
	)
	resp, err := h.llmClient.Complete(c.Context(), llm.Request{Prompt: prompt, MaxTokens: 2048})
	if err != nil {
		logHandlerError(h.logger, c, err, "phrasebook generation failed")
		return domain.Reject(c, fiber.StatusBadGateway, domain.CodeInternalError,
			"phrasebook generation unavailable", nil)
	}

	h.cache.Set(common.PhrasebookNamespace, cacheKey, resp.Text, common.PhrasebookCacheTTL)

	return c.Status(fiber.StatusOK).JSON(phrasebookResponse{
		Phrasebook: resp.Text,
		Language:   req.Language,
		Scenario:   req.Scenario,
	})
}
