package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/admission/signature"
	"github.com/tripwise-ai/tripwise/pkg/common"
	"github.com/tripwise-ai/tripwise/pkg/domain"
	"github.com/tripwise-ai/tripwise/pkg/infra/prometheus"
)

type SignatureMiddlewareConfig struct {
	SkipPaths        []string
	ProtectedPaths   []string
	ProtectedMethods []string
}

type signatureMiddleware struct {
	logger   *logrus.Logger
	verifier *signature.Verifier
	cfg      SignatureMiddlewareConfig
}

// NewSignatureMiddleware enforces HMAC request signatures on mutating calls
// that arrive without a verified identity. It is a fallback gate for
// server-to-server traffic, not a universal one: see the bypass chain at the
// top of the handler.
func NewSignatureMiddleware(
	logger *logrus.Logger,
	verifier *signature.Verifier,
	cfg SignatureMiddlewareConfig,
) Middleware {
	return &signatureMiddleware{
		logger:   logger,
		verifier: verifier,
		cfg:      cfg,
	}
}

func (m *signatureMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Bypass rules, in priority order: explicit skip-list, unprotected
		// path/method, already-verified identity, bearer credential present
		// (deferred to the auth stage).
		path := c.Path()
		if m.isSkipPath(path) {
			return c.Next()
		}
		if !m.isProtected(path, c.Method()) {
			return c.Next()
		}
		if RequestIdentity(c) != nil {
			return c.Next()
		}
		if bearerToken(c) != "" {
			return c.Next()
		}

		fp, err := m.verifier.Verify(
			c.Method(),
			path,
			c.Body(),
			c.Get(common.TimestampHeader),
			c.Get(common.SignatureHeader),
		)
		if err != nil {
			reason := rejectionReason(err)
			prometheus.SignatureRejections.WithLabelValues(reason).Inc()
			m.logger.WithFields(logrus.Fields{
				"path":        path,
				"method":      c.Method(),
				"ip":          clientIP(c),
				"fingerprint": c.Locals(common.FingerprintIdContextKey),
				"reason":      reason,
			}).Warn("request signature rejected")
			return domain.Reject(c, fiber.StatusUnauthorized, domain.CodeUnauthorized,
				"missing or invalid request signature", nil)
		}

		// The verified digest doubles as the audit fingerprint for this call.
		sc := SecurityCtx(c)
		sc.Fingerprint = fp
		sc.AddFlag("signed")

		return c.Next()
	}
}

func (m *signatureMiddleware) isSkipPath(path string) bool {
	for _, p := range m.cfg.SkipPaths {
		if path == p {
			return true
		}
	}
	return false
}

func (m *signatureMiddleware) isProtected(path, method string) bool {
	pathMatch := false
	for _, prefix := range m.cfg.ProtectedPaths {
		if strings.HasPrefix(path, prefix) {
			pathMatch = true
			break
		}
	}
	if !pathMatch {
		return false
	}
	for _, mth := range m.cfg.ProtectedMethods {
		if strings.EqualFold(mth, method) {
			return true
		}
	}
	return false
}

func rejectionReason(err error) string {
	switch err {
	case signature.ErrMissingSignature:
		return "missing_signature"
	case signature.ErrMissingTimestamp:
		return "missing_timestamp"
	case signature.ErrInvalidTimestamp:
		return "invalid_timestamp"
	case signature.ErrStaleTimestamp:
		return "stale_timestamp"
	case signature.ErrInvalidSignature:
		return "signature_mismatch"
	default:
		return "error"
	}
}
