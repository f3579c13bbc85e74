package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles for the results hub.
// Supports gradual rollout, department targeting, and per-actor overrides,
// so risky workflow changes (new approval gates, batch semantics) can be
// enabled for one department before the whole faculty.
type FeatureFlags struct {
	mu sync.RWMutex

	// Core features
	features map[string]*Feature

	// Override rules (for testing/debugging)
	actorOverrides map[string]map[string]bool // actorID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Actors are assigned based on hash of their ID
	RolloutPercent int

	// Department targeting (e.g., "CSC", "MTH")
	// Empty means all departments
	TargetDepartments []string

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	ActorID    string // staff portal ID
	Department string // actor's department code
	IsAdmin    bool   // admin staff bypass all gates
}

// Predefined feature flag names.
const (
	// === Result Entry Features ===
	FeatureResultsBatchUpload   = "results.batch_upload"   // CSV-style batch submission
	FeatureResultsPartialBatch  = "results.partial_batch"  // accept valid rows when some fail
	FeatureResultsHardDelete    = "results.hard_delete"    // allow deleting unlocked results

	// === Approval Workflow Features ===
	FeatureApprovalHODUnlock    = "approval.hod_unlock"    // HOD can unlock locked sheets
	FeatureApprovalFinalGate    = "approval.final_gate"    // senate final approval step
	FeatureApprovalLockCascade  = "approval.lock_cascade"  // lock covers late-added rows

	// === Carryover Features ===
	FeatureCarryoverAutoScan      = "carryover.auto_scan"      // end-of-session ledger scan
	FeatureCarryoverAutoClear     = "carryover.auto_clear"     // clear on passing retake
	FeatureCarryoverCoverageCheck = "carryover.coverage_check" // registration coverage report

	// === Audit Features ===
	FeatureAuditGeoLookup = "audit.geo_lookup" // resolve actor IP to a location
	FeatureAuditUAParsing = "audit.ua_parsing" // parse device/browser from User-Agent

	// === Cache Features ===
	FeatureCacheGradingScheme = "cache.grading_scheme" // Redis-backed grading scheme
	FeatureCacheStanding      = "cache.standing"       // Redis standing projection

	// === Experimental Features ===
	FeatureExperimentalTranscriptPDF = "experimental.transcript_pdf" // rendered transcripts
	FeatureExperimentalAnalytics     = "experimental.analytics"      // cohort performance dashboards
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:       make(map[string]*Feature),
		actorOverrides: make(map[string]map[string]bool),
	}

	// Initialize all features with defaults
	ff.initializeDefaults()

	// Load overrides from environment
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	// Result entry - core workflow, enabled by default
	ff.features[FeatureResultsBatchUpload] = &Feature{
		Name:           FeatureResultsBatchUpload,
		Description:    "Batch result sheet submission",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureResultsPartialBatch] = &Feature{
		Name:           FeatureResultsPartialBatch,
		Description:    "Accept valid rows when a batch has per-row errors",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureResultsHardDelete] = &Feature{
		Name:           FeatureResultsHardDelete,
		Description:    "Permit deleting unlocked results",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Approval workflow
	ff.features[FeatureApprovalHODUnlock] = &Feature{
		Name:           FeatureApprovalHODUnlock,
		Description:    "HOD unlock of approved sheets",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureApprovalFinalGate] = &Feature{
		Name:           FeatureApprovalFinalGate,
		Description:    "Senate final approval gate",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureApprovalLockCascade] = &Feature{
		Name:           FeatureApprovalLockCascade,
		Description:    "Course lock covers rows added after locking",
		Enabled:        false, // Phase 2
		RolloutPercent: 0,
	}

	// Carryover ledger
	ff.features[FeatureCarryoverAutoScan] = &Feature{
		Name:           FeatureCarryoverAutoScan,
		Description:    "End-of-session carryover scan",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureCarryoverAutoClear] = &Feature{
		Name:           FeatureCarryoverAutoClear,
		Description:    "Clear carryovers when a retake passes",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureCarryoverCoverageCheck] = &Feature{
		Name:           FeatureCarryoverCoverageCheck,
		Description:    "Registration coverage check for advisers",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Audit enrichment - degradable, on by default
	ff.features[FeatureAuditGeoLookup] = &Feature{
		Name:           FeatureAuditGeoLookup,
		Description:    "Resolve actor IP to location for audit rows",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureAuditUAParsing] = &Feature{
		Name:           FeatureAuditUAParsing,
		Description:    "Parse device and browser from User-Agent",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Caches
	ff.features[FeatureCacheGradingScheme] = &Feature{
		Name:           FeatureCacheGradingScheme,
		Description:    "Redis-backed grading scheme cache",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureCacheStanding] = &Feature{
		Name:           FeatureCacheStanding,
		Description:    "Redis standing projection",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Experimental features - disabled by default
	ff.features[FeatureExperimentalTranscriptPDF] = &Feature{
		Name:           FeatureExperimentalTranscriptPDF,
		Description:    "Rendered transcript documents",
		Enabled:        false,
		RolloutPercent: 0,
	}

	ff.features[FeatureExperimentalAnalytics] = &Feature{
		Name:           FeatureExperimentalAnalytics,
		Description:    "Cohort performance dashboards",
		Enabled:        false,
		RolloutPercent: 0,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_CARRYOVER_AUTO_SCAN=true
// Example: FEATURE_APPROVAL_LOCK_CASCADE=25 (25% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			// Try parsing as boolean
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
				if b {
					feature.RolloutPercent = 100
				} else {
					feature.RolloutPercent = 0
				}
				continue
			}

			// Try parsing as percentage
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				feature.Enabled = p > 0
				feature.RolloutPercent = p
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "carryover.auto_scan" -> "FEATURE_CARRYOVER_AUTO_SCAN"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check actor overrides first
	if ctx != nil && ctx.ActorID != "" {
		if overrides, ok := ff.actorOverrides[ctx.ActorID]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	// Admin staff get all features
	if ctx != nil && ctx.IsAdmin {
		return true
	}

	// Check if feature is enabled at all
	if !feature.Enabled {
		return false
	}

	// Check time-based activation
	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	// Check department targeting
	if len(feature.TargetDepartments) > 0 && ctx != nil && ctx.Department != "" {
		deptMatch := false
		for _, d := range feature.TargetDepartments {
			if d == ctx.Department {
				deptMatch = true
				break
			}
		}
		if !deptMatch {
			return false
		}
	}

	// Check rollout percentage
	if feature.RolloutPercent < 100 && ctx != nil && ctx.ActorID != "" {
		return ff.isInRollout(ctx.ActorID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if an actor is in the rollout percentage.
// Uses consistent hashing so actors stay in their bucket.
func (ff *FeatureFlags) isInRollout(actorID, featureName string, percent int) bool {
	// Create a consistent hash for this actor+feature combination
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(actorID))
	hash := h.Sum32()

	// Map to 0-99 range
	bucket := int(hash % 100)

	return bucket < percent
}

// SetActorOverride sets a feature override for a specific actor.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetActorOverride(actorID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.actorOverrides[actorID]; !ok {
		ff.actorOverrides[actorID] = make(map[string]bool)
	}
	ff.actorOverrides[actorID][featureName] = enabled
}

// ClearActorOverrides removes all overrides for an actor.
func (ff *FeatureFlags) ClearActorOverrides(actorID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.actorOverrides, actorID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		// Return a copy
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Convenience methods for common checks ---

// AuditEnrichmentEnabled checks if any audit context enrichment is enabled.
func (ff *FeatureFlags) AuditEnrichmentEnabled(ctx *FeatureContext) bool {
	return ff.IsEnabled(FeatureAuditGeoLookup, ctx) ||
		ff.IsEnabled(FeatureAuditUAParsing, ctx)
}

// CachingEnabled checks if any Redis-backed cache is enabled.
func (ff *FeatureFlags) CachingEnabled(ctx *FeatureContext) bool {
	return ff.IsEnabled(FeatureCacheGradingScheme, ctx) ||
		ff.IsEnabled(FeatureCacheStanding, ctx)
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
