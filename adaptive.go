package convpolicy

import (
	"sync"
)

// ──────────────────────────────────────────────
// Adaptive learning store: per-user intent reinforcement
// ──────────────────────────────────────────────

const (
	// personalizationMinSamples is how many reinforced samples of one intent
	// a user needs before classification is biased toward it.
	personalizationMinSamples = 5
	// personalizationCeiling is the base confidence above which no bias applies.
	personalizationCeiling = 0.8
	personalizationBoost   = 0.1
)

// AdaptiveLearningStore counts positively reinforced intents per user.
// It is owned by one Engine and safe for concurrent use. The durable copy of
// the counts lives in the user's profile; the engine seeds from it each turn.
type AdaptiveLearningStore struct {
	mu     sync.RWMutex
	counts map[string]map[Intent]int
}

// NewAdaptiveLearningStore creates an empty store.
func NewAdaptiveLearningStore() *AdaptiveLearningStore {
	return &AdaptiveLearningStore{counts: make(map[string]map[Intent]int)}
}

// Reinforce records one positive sample of intent for userID.
func (s *AdaptiveLearningStore) Reinforce(userID string, intent Intent) {
	if userID == "" || intent == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.counts[userID]
	if m == nil {
		m = make(map[Intent]int)
		s.counts[userID] = m
	}
	m[intent]++
}

// Counts returns a copy of the reinforced intent counts for userID.
func (s *AdaptiveLearningStore) Counts(userID string) map[Intent]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Intent]int, len(s.counts[userID]))
	for k, v := range s.counts[userID] {
		out[k] = v
	}
	return out
}

// Seed replaces the counts for userID with a copy of counts, typically the
// ones persisted in the user's profile.
func (s *AdaptiveLearningStore) Seed(userID string, counts map[Intent]int) {
	if userID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(counts) == 0 {
		delete(s.counts, userID)
		return
	}
	m := make(map[Intent]int, len(counts))
	for k, v := range counts {
		if k != "" && v > 0 {
			m[k] = v
		}
	}
	s.counts[userID] = m
}

// Forget drops everything learned about userID.
func (s *AdaptiveLearningStore) Forget(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counts, userID)
}

// dominant returns the most reinforced intent, ties broken by AllIntents order.
func (s *AdaptiveLearningStore) dominant(userID string) (Intent, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.counts[userID]
	best, bestN := Intent(""), 0
	for _, in := range AllIntents {
		if n := m[in]; n > bestN {
			best, bestN = in, n
		}
	}
	return best, bestN
}

// Personalize biases a low-confidence classification toward the user's
// dominant reinforced intent. The input is not modified.
func (s *AdaptiveLearningStore) Personalize(userID string, result ClassificationResult) ClassificationResult {
	if result.Fallback || result.IntentConfidence >= personalizationCeiling {
		return result
	}
	intent, n := s.dominant(userID)
	if n < personalizationMinSamples {
		return result
	}

	switch {
	case intent == result.Intent:
		result.IntentConfidence = clamp(result.IntentConfidence+personalizationBoost, 0, maxPatternConfidence)
	case result.IntentScores[intent] > 0:
		result.Intent = intent
		result.IntentConfidence = clamp(intentConfidence(result.IntentScores[intent])+personalizationBoost, 0, maxPatternConfidence)
	default:
		return result
	}
	result.Personalized = true
	return result
}
