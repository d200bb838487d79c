package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/admission/cache"
	"github.com/tripwise-ai/tripwise/pkg/common"
	"github.com/tripwise-ai/tripwise/pkg/domain"
	"github.com/tripwise-ai/tripwise/pkg/infra/translator"
)

type translateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type translateResponse struct {
	Translation string `json:"translation"`
	SourceLang  string `json:"source_lang"`
	TargetLang  string `json:"target_lang"`
	Cached      bool   `json:"cached"`
}

type translateHandler struct {
	logger     *logrus.Logger
	cache      *cache.Cache
	translator translator.Translator
}

func NewTranslateHandler(
	logger *logrus.Logger,
	cacheInstance *cache.Cache,
	trans translator.Translator,
) Handler {
	return &translateHandler{
		logger:     logger,
		cache:      cacheInstance,
		translator: trans,
	}
}

func (h *translateHandler) Handle(c *fiber.Ctx) error {
	var req translateRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Reject(c, fiber.StatusBadRequest, domain.CodeValidationError,
			"invalid request body", nil)
	}
	if req.Text == "" || req.TargetLang == "" {
		return domain.Reject(c, fiber.StatusBadRequest, domain.CodeValidationError,
			"text and target_lang are required", nil)
	}
	if req.SourceLang == "" {
		req.SourceLang = "auto"
	}

	cacheKey := req.SourceLang + ":" + req.TargetLang + ":" + req.Text
	if cached, ok := h.cache.Get(common.TranslationNamespace, cacheKey); ok {
		if translation, ok := cached.(string); ok {
			return c.Status(fiber.StatusOK).JSON(translateResponse{
				Translation: translation,
				SourceLang:  req.SourceLang,
				TargetLang:  req.TargetLang,
				Cached:      true,
			})
		}
	}

	translation, err := h.translator.Translate(c.Context(), req.Text, req.SourceLang, req.TargetLang)
	if err != nil {
		logHandlerError(h.logger, c, err, "translation failed")
		return domain.Reject(c, fiber.StatusBadGateway, domain.CodeInternalError,
			"translation unavailable", nil)
	}

	h.cache.Set(common.TranslationNamespace, cacheKey, translation, common.TranslationCacheTTL)

	return c.Status(fiber.StatusOK).JSON(translateResponse{
		Translation: translation,
		SourceLang:  req.SourceLang,
		TargetLang:  req.TargetLang,
	})
}
