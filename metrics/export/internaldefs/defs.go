package internaldefs

import (
	authbridge "github.com/Codeseer/authbridge"
)

// CounterDef binds a facade metric ID to its exported name.
type CounterDef struct {
	ID   authbridge.MetricID
	Name string
	Help string
}

// HistogramDef binds a facade histogram ID to its exported name.
type HistogramDef struct {
	ID   authbridge.MetricID
	Name string
	Help string
}

// CounterDefs enumerates every exported counter, in stable order.
var CounterDefs = []CounterDef{
	{ID: authbridge.MetricSignInSuccess, Name: "authbridge_sign_in_success_total", Help: "Sign-in operations the bridge resolved."},
	{ID: authbridge.MetricSignInFailure, Name: "authbridge_sign_in_failure_total", Help: "Sign-in operations the bridge rejected."},
	{ID: authbridge.MetricSignOut, Name: "authbridge_sign_out_total", Help: "Completed sign-out operations."},
	{ID: authbridge.MetricAccountCreated, Name: "authbridge_account_created_total", Help: "Successful account creations."},
	{ID: authbridge.MetricAccountCreationFailure, Name: "authbridge_account_creation_failure_total", Help: "Rejected account creations."},
	{ID: authbridge.MetricReauthSuccess, Name: "authbridge_reauthenticate_success_total", Help: "Successful reauthentications."},
	{ID: authbridge.MetricReauthFailure, Name: "authbridge_reauthenticate_failure_total", Help: "Rejected reauthentications."},
	{ID: authbridge.MetricLinkSuccess, Name: "authbridge_credential_link_success_total", Help: "Successful credential links."},
	{ID: authbridge.MetricLinkFailure, Name: "authbridge_credential_link_failure_total", Help: "Rejected credential links."},
	{ID: authbridge.MetricUnlink, Name: "authbridge_provider_unlink_total", Help: "Provider unlink operations."},
	{ID: authbridge.MetricProfileUpdated, Name: "authbridge_profile_updated_total", Help: "Profile updates."},
	{ID: authbridge.MetricEmailUpdated, Name: "authbridge_email_updated_total", Help: "Email updates."},
	{ID: authbridge.MetricPasswordUpdated, Name: "authbridge_password_updated_total", Help: "Password updates."},
	{ID: authbridge.MetricVerificationEmailSent, Name: "authbridge_verification_email_sent_total", Help: "Verification emails requested."},
	{ID: authbridge.MetricPasswordResetEmailSent, Name: "authbridge_password_reset_email_sent_total", Help: "Password reset emails requested."},
	{ID: authbridge.MetricUserDeleted, Name: "authbridge_user_deleted_total", Help: "Account deletions."},
	{ID: authbridge.MetricUserReloaded, Name: "authbridge_user_reloaded_total", Help: "User reloads."},
	{ID: authbridge.MetricTokenFetched, Name: "authbridge_id_token_fetched_total", Help: "Successful ID token retrievals."},
	{ID: authbridge.MetricTokenFetchFailure, Name: "authbridge_id_token_fetch_failure_total", Help: "Rejected ID token retrievals."},
	{ID: authbridge.MetricStateEvents, Name: "authbridge_state_events_total", Help: "Auth state events received from the bridge."},
	{ID: authbridge.MetricListenerNotifications, Name: "authbridge_listener_notifications_total", Help: "Individual listener invocations."},
}

// HistogramDefs enumerates every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: authbridge.MetricSignInLatency, Name: "authbridge_sign_in_latency_seconds", Help: "Sign-in latency histogram."},
}

// HistogramBounds are the bucket upper bounds in seconds, as label values.
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

// HistogramBoundSuffix mirrors HistogramBounds as metric-name-safe suffixes.
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

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed width.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// exposition formats expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
