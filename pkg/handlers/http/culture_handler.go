package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/admission/cache"
	"github.com/tripwise-ai/tripwise/pkg/admission/quota"
	"github.com/tripwise-ai/tripwise/pkg/common"
	"github.com/tripwise-ai/tripwise/pkg/domain"
	"github.com/tripwise-ai/tripwise/pkg/infra/providers/llm"
)

const cultureQuotaKey = "culture"

type cultureRequest struct {
	Destination string   `json:"destination"`
	Topics      []string `json:"topics"`
}

type cultureResponse struct {
	Brief       string   `json:"brief"`
	Destination string   `json:"destination"`
	Topics      []string `json:"topics"`
	Cached      bool     `json:"cached"`
}

type cultureHandler struct {
	logger      *logrus.Logger
	cache       *cache.Cache
	quota       *quota.Engine
	llmClient   llm.Client
	quotaLimit  int
	quotaWindow time.Duration
}

func NewCultureHandler(
	logger *logrus.Logger,
	cacheInstance *cache.Cache,
	quotaEngine *quota.Engine,
	llmClient llm.Client,
	quotaLimit int,
	quotaWindow time.Duration,
) Handler {
	return &cultureHandler{
		logger:      logger,
		cache:       cacheInstance,
		quota:       quotaEngine,
		llmClient:   llmClient,
		quotaLimit:  quotaLimit,
		quotaWindow: quotaWindow,
	}
}

func (h *cultureHandler) Handle(c *fiber.Ctx) error {
	var req cultureRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Reject(c, fiber.StatusBadRequest, domain.CodeValidationError,
			"invalid request body", nil)
	}
	if req.Destination == "" {
		return domain.Reject(c, fiber.StatusBadRequest, domain.CodeValidationError,
			"destination is required", nil)
	}
	if len(req.Topics) == 0 {
		req.Topics = []string{"etiquette", "tipping", "greetings"}
	}

	cacheKey := req.Destination + ":" + strings.Join(req.Topics, ",")
	if cached, ok := h.cache.Get(common.CultureNamespace, cacheKey); ok {
		if text, ok := cached.(string); ok {
			return c.Status(fiber.StatusOK).JSON(cultureResponse{
				Brief:       text,
				Destination: req.Destination,
				Topics:      req.Topics,
				Cached:      true,
			})
		}
	}

	decision := h.quota.Enforce(quotaIdentifier(c), cultureQuotaKey, h.quotaLimit, h.quotaWindow)
	if !decision.Allowed {
		return rejectQuotaExceeded(c, cultureQuotaKey, decision.ResetAt.Unix())
	}

	prompt := fmt.Sprintf(
		"Write a concise cultural briefing for travelers visiting %s, covering: %s.",
		req.Destination, strings.Join(req.Topics, ", "),
	)
	resp, err := h.llmClient.Complete(c.Context(), llm.Request{Prompt: prompt, MaxTokens: 2048})
	if err != nil {
		logHandlerError(h.logger, c, err, "culture brief generation failed")
		return domain.Reject(c, fiber.StatusBadGateway, domain.CodeInternalError,
			"cultural guidance unavailable", nil)
	}

	h.cache.Set(common.CultureNamespace, cacheKey, resp.Text, common.CultureCacheTTL)

	return c.Status(fiber.StatusOK).JSON(cultureResponse{
		Brief:       resp.Text,
		Destination: req.Destination,
		Topics:      req.Topics,
	})
}
