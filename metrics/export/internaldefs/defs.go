package internaldefs

import (
	goToken "github.com/MrEthical07/goToken"
)

// CounterDef defines a public type used by goToken APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goToken.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goToken APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goToken.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the token engine.
var CounterDefs = []CounterDef{
	{ID: goToken.MetricLoginSuccess, Name: "gotoken_login_success_total", Help: "Successful login attempts."},
	{ID: goToken.MetricLoginFailure, Name: "gotoken_login_failure_total", Help: "Failed login attempts."},
	{ID: goToken.MetricLoginRateLimited, Name: "gotoken_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: goToken.MetricVerifySuccess, Name: "gotoken_verify_success_total", Help: "Successful token verifications."},
	{ID: goToken.MetricVerifyFailure, Name: "gotoken_verify_failure_total", Help: "Failed token verifications."},
	{ID: goToken.MetricVerifyRevoked, Name: "gotoken_verify_revoked_total", Help: "Verifications rejected for a revoked token."},
	{ID: goToken.MetricRefreshSuccess, Name: "gotoken_refresh_success_total", Help: "Successful refresh operations."},
	{ID: goToken.MetricRefreshFailure, Name: "gotoken_refresh_failure_total", Help: "Failed refresh operations."},
	{ID: goToken.MetricRefreshJoined, Name: "gotoken_refresh_joined_total", Help: "Refresh calls that joined an in-flight rotation."},
	{ID: goToken.MetricRefreshRateLimited, Name: "gotoken_refresh_rate_limited_total", Help: "Rate-limited refresh attempts."},
	{ID: goToken.MetricTokenRevoked, Name: "gotoken_token_revoked_total", Help: "Tokens recorded in the revocation blacklist."},
	{ID: goToken.MetricRevocationFailed, Name: "gotoken_revocation_failed_total", Help: "Revocation writes that failed."},
	{ID: goToken.MetricBlacklistFailOpen, Name: "gotoken_blacklist_fail_open_total", Help: "Revocation checks skipped because the blacklist was unavailable."},
	{ID: goToken.MetricLogout, Name: "gotoken_logout_total", Help: "Logout operations."},
}

// HistogramDefs is an exported constant or variable used by the token engine.
var HistogramDefs = []HistogramDef{
	{ID: goToken.MetricVerifyLatency, Name: "gotoken_verify_latency_seconds", Help: "Verify latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the token engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the token engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw bucket counts into the fixed 8-slot layout
// shared by all exporters.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus histograms expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
