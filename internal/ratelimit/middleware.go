package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/quillworks/quill-gateway/internal/auth"
	"github.com/quillworks/quill-gateway/internal/httputil"
	"github.com/quillworks/quill-gateway/internal/telemetry"
)

const (
	defaultRPM = 60

	headerRateLimitRequests          = "X-RateLimit-Limit-Requests"
	headerRateLimitRemainingRequests = "X-RateLimit-Remaining-Requests"
	headerRateLimitReset             = "X-RateLimit-Reset-Requests"
	headerRetryAfter                 = "Retry-After"
)

// Middleware returns chi middleware that enforces per-key request rate
// and daily quota limits on the HTTP surface.
func Middleware(limiter *Limiter, quota *QuotaTracker, metrics *telemetry.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := w.Header().Get("X-Request-ID")

			authInfo, ok := auth.AuthFromContext(r.Context())
			if !ok {
				// No auth info — let request pass (auth middleware will catch it)
				next.ServeHTTP(w, r)
				return
			}

			rpm := defaultRPM
			if authInfo.RPMLimit != nil {
				rpm = *authInfo.RPMLimit
			}

			rpmKey := fmt.Sprintf("rpm:%s", authInfo.KeyID)
			result, _ := limiter.Check(r.Context(), rpmKey, int64(rpm), time.Minute)

			// Always set rate limit headers
			w.Header().Set(headerRateLimitRequests, strconv.Itoa(rpm))
			w.Header().Set(headerRateLimitRemainingRequests, strconv.FormatInt(result.Remaining, 10))
			w.Header().Set(headerRateLimitReset, result.ResetAt.Format(time.RFC3339))

			if !result.Allowed {
				slog.Warn("rate limit exceeded",
					"request_id", reqID,
					"key_id", authInfo.KeyID,
					"dimension", "rpm",
					"limit", rpm,
				)
				if metrics != nil {
					metrics.RecordRateLimitHit("rpm", authInfo.KeyID)
				}
				w.Header().Set(headerRetryAfter, strconv.Itoa(int(result.RetryAfter.Seconds())))
				httputil.WriteRateLimitError(w, reqID,
					fmt.Sprintf("Rate limit exceeded: %d requests per minute. Retry after %s", rpm, result.ResetAt.Format(time.RFC3339)))
				return
			}

			if authInfo.DailyRequestLimit != nil {
				quotaResult, _ := quota.CheckDaily(r.Context(), authInfo.KeyID, int64(*authInfo.DailyRequestLimit))
				if !quotaResult.Allowed {
					slog.Warn("daily quota exceeded",
						"request_id", reqID,
						"key_id", authInfo.KeyID,
						"used", quotaResult.Used,
						"limit", quotaResult.Limit,
					)
					if metrics != nil {
						metrics.RecordRateLimitHit("quota", authInfo.KeyID)
					}
					httputil.WriteQuotaExceededError(w, reqID,
						fmt.Sprintf("Daily quota exceeded: %d of %d requests used", quotaResult.Used, quotaResult.Limit))
					return
				}
				if err := quota.RecordUse(r.Context(), authInfo.KeyID); err != nil {
					slog.Warn("failed to record quota use", "key_id", authInfo.KeyID, "error", err)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
