package internaldefs

import (
	"github.com/MrEthical07/tokenguard"
	internalmetrics "github.com/MrEthical07/tokenguard/internal/metrics"
)

// BucketCount is the number of histogram buckets, +Inf included.
const BucketCount = internalmetrics.BucketCount

// CounterDef names one engine counter.
type CounterDef struct {
	ID   tokenguard.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram.
type HistogramDef struct {
	ID   tokenguard.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: tokenguard.MetricLoginSuccess, Name: "tokenguard_login_success_total", Help: "Successful login attempts."},
	{ID: tokenguard.MetricLoginFailure, Name: "tokenguard_login_failure_total", Help: "Failed login attempts."},
	{ID: tokenguard.MetricLoginRateLimited, Name: "tokenguard_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: tokenguard.MetricSignupSuccess, Name: "tokenguard_signup_success_total", Help: "Registered principals."},
	{ID: tokenguard.MetricSignupDuplicate, Name: "tokenguard_signup_duplicate_total", Help: "Signups rejected for a registered email."},
	{ID: tokenguard.MetricRefreshSuccess, Name: "tokenguard_refresh_success_total", Help: "Successful refresh operations."},
	{ID: tokenguard.MetricRefreshFailure, Name: "tokenguard_refresh_failure_total", Help: "Failed refresh operations."},
	{ID: tokenguard.MetricRefreshWrongKind, Name: "tokenguard_refresh_wrong_kind_total", Help: "Access tokens presented for refresh."},
	{ID: tokenguard.MetricLogout, Name: "tokenguard_logout_total", Help: "Tokens written to the denylist."},
	{ID: tokenguard.MetricValidateSuccess, Name: "tokenguard_validate_success_total", Help: "Accepted bearer tokens."},
	{ID: tokenguard.MetricValidateRejected, Name: "tokenguard_validate_rejected_total", Help: "Rejected bearer tokens."},
	{ID: tokenguard.MetricValidateUnavailable, Name: "tokenguard_validate_unavailable_total", Help: "Validations aborted by backend failure."},
	{ID: tokenguard.MetricAuthorizeDenied, Name: "tokenguard_authorize_denied_total", Help: "Authorization checks that denied access."},
	{ID: tokenguard.MetricConfigurationFault, Name: "tokenguard_configuration_fault_total", Help: "Requests failed by a setup invariant violation."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: tokenguard.MetricValidateLatency, Name: "tokenguard_validate_latency_seconds", Help: "Validate latency histogram."},
}

// HistogramBounds are the Prometheus le labels, +Inf last.
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

// HistogramUpperBounds are the finite bucket bounds in seconds.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix are instrument-name-safe forms of HistogramBounds.
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

// NormalizeBuckets copies raw into a fixed-size array, zero-filling.
func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
