package detection

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
	"github.com/lcalzada-xor/nettrust/internal/core/ports"
	"github.com/lcalzada-xor/nettrust/internal/core/services/features"
	"github.com/lcalzada-xor/nettrust/internal/core/services/registry"
	"github.com/lcalzada-xor/nettrust/internal/core/services/rules"
	"github.com/lcalzada-xor/nettrust/internal/core/services/scoring"
	"github.com/lcalzada-xor/nettrust/internal/core/services/vendor"
	"github.com/lcalzada-xor/nettrust/internal/telemetry"
)

const notLoadedAdvisory = "Model not loaded"

// Option configures an Engine.
type Option func(*Engine)

// WithVendorDirectory overrides the embedded vendor directory.
func WithVendorDirectory(d rules.VendorDirectory) Option {
	return func(e *Engine) { e.vendors = d }
}

// WithLogger sets the logger used for trust transitions and failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock sets the time source used for observations without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithObserver registers an observer for baseline and confirmation events.
func WithObserver(o registry.ProfileObserver) Option {
	return func(e *Engine) { e.subject.AddObserver(o) }
}

// Engine classifies access point observations and tracks per-device trust.
// It implements ports.Detector and is safe for concurrent use; observations
// of the same address are applied one at a time.
type Engine struct {
	params    domain.ModelParams
	loadErr   error
	extractor *features.Extractor
	scaler    *features.Scaler
	scorer    *scoring.Scorer
	vendors   rules.VendorDirectory
	rules     *rules.Engine
	registry  *registry.ProfileRegistry
	subject   *registry.RegistrySubject
	logger    *slog.Logger
	now       func() time.Time
}

var _ ports.Detector = (*Engine)(nil)

// NewEngine loads the model configuration once. A loader failure or an
// inconsistent configuration leaves the engine in the not-loaded state; it
// never makes construction fail.
func NewEngine(loader ports.ModelLoader, opts ...Option) *Engine {
	e := &Engine{
		scorer:   scoring.NewScorer(),
		registry: registry.NewProfileRegistry(),
		subject:  registry.NewRegistrySubject(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.vendors == nil {
		e.vendors = vendor.MustDirectory()
	}
	e.rules = rules.NewEngine(e.vendors, e.registry.SSIDs())

	if err := e.load(loader); err != nil {
		e.loadErr = err
		e.logger.Error("Detection model not loaded", "error", err)
		return e
	}

	e.logger.Info("Detection model loaded",
		"version", e.params.Metadata.ModelVersion,
		"features", e.extractor.Len(),
		"test_accuracy", fmt.Sprintf("%.2f%%", e.params.TestAccuracyPercent()),
		"evil_twin_threshold", evilTwinThreshold,
		"rogue_ap_threshold", rogueAPThreshold,
	)
	return e
}

func (e *Engine) load(loader ports.ModelLoader) error {
	if loader == nil {
		return domain.ErrModelNotLoaded
	}
	params, err := loader.Load()
	if err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}

	extractor := features.NewExtractor(params.FeatureNames)
	scaler, err := features.NewScaler(params.Scaler, extractor.Len())
	if err != nil {
		return err
	}

	e.params = params
	e.extractor = extractor
	e.scaler = scaler
	return nil
}

// IsLoaded reports whether valid model parameters were loaded.
func (e *Engine) IsLoaded() bool {
	return e.loadErr == nil
}

// LoadError returns the configuration error that left the engine unloaded.
func (e *Engine) LoadError() error {
	return e.loadErr
}

// Params returns the loaded model configuration.
func (e *Engine) Params() domain.ModelParams {
	return e.params
}

// Profile returns a copy of the tracked profile for an address.
func (e *Engine) Profile(address string) (domain.DeviceProfile, bool) {
	return e.registry.Get(domain.NormalizeAddress(address))
}

// DetectAll classifies a batch in input order. A failing observation yields a
// safe result and never aborts the batch.
func (e *Engine) DetectAll(obs []domain.Observation) []domain.DetectionResult {
	out := make([]domain.DetectionResult, len(obs))
	for i, o := range obs {
		out[i] = e.Detect(o)
	}
	return out
}

// Detect classifies one observation.
func (e *Engine) Detect(obs domain.Observation) (result domain.DetectionResult) {
	if obs.SeenAt.IsZero() {
		obs.SeenAt = e.now()
	}
	if !e.IsLoaded() {
		telemetry.DetectionFailures.WithLabelValues("not_loaded").Inc()
		return notLoadedResult(obs)
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Detection failed", "bssid", obs.BSSID, "panic", r)
			telemetry.DetectionFailures.WithLabelValues("panic").Inc()
			result = failureResult(obs, fmt.Errorf("%v", r))
		}
	}()

	result, err := e.detect(obs)
	if err != nil {
		e.logger.Error("Detection failed", "bssid", obs.BSSID, "error", err)
		telemetry.DetectionFailures.WithLabelValues("error").Inc()
		return failureResult(obs, err)
	}
	telemetry.RecordResult(result)
	return result
}

type transition uint8

const (
	noTransition transition = iota
	learnedBaseline
	confirmedAttack
)

func (e *Engine) detect(obs domain.Observation) (domain.DetectionResult, error) {
	addr, err := domain.ParseAddress(obs.BSSID)
	if err != nil {
		return domain.DetectionResult{}, err
	}
	key := addr.String()

	vector := e.extractor.Extract(obs)
	standardized, err := e.scaler.Transform(vector)
	if err != nil {
		return domain.DetectionResult{}, err
	}
	probs := e.scorer.Score(standardized, obs.Signal, obs.Frequency)

	var (
		result   domain.DetectionResult
		event    transition
		snapshot domain.DeviceProfile
	)

	e.registry.WithProfile(key, func(p *domain.DeviceProfile, created bool) {
		if created {
			e.logger.Debug("New access point", "ssid", obs.SSID, "bssid", key)
			telemetry.TrackedProfiles.Inc()
		}
		p.Observe(obs)
		e.registry.SSIDs().Add(obs.SSID, key)

		verdict := e.rules.Apply(rules.Input{Observation: obs, Address: key})
		decision := Fuse(verdict, probs, p.IsBaseline())
		attack, conf := decision.Attack, decision.Confidence

		if decision.Accepted {
			reported, confirmed := p.RecordAttack(attack, conf, obs.SeenAt)
			conf = reported
			if confirmed {
				event = confirmedAttack
			} else if p.DetectionCount() == 1 {
				e.logger.Debug("Attack evidence opened", "ssid", obs.SSID, "bssid", key, "attack", attack.String(), "confidence", conf)
			}
		} else if p.RecordClean() {
			event = learnedBaseline
		}

		reasons := decision.Reasons
		if persisted, pconf, ok := p.PersistentVerdict(); ok {
			attack, conf = persisted, pconf
			reasons = append(reasons, fmt.Sprintf("Persistent %s confirmed across %d detections", attack, p.DetectionCount()))
		}

		baseline := p.IsBaseline()
		if baseline && attack == domain.AttackSafe {
			conf = 0
		} else if baseline && conf < baselineFloor {
			attack, conf = domain.AttackSafe, 0
		}

		level := ClassifyThreat(conf, attack, baseline)
		result = domain.DetectionResult{
			NetworkName:       obs.DisplayName(),
			BSSID:             obs.BSSID,
			AttackType:        attack,
			Confidence:        conf,
			IsRogueAP:         attack.IsAttack(),
			IsThreat:          level != domain.ThreatSafe,
			ThreatLevel:       level,
			Probabilities:     probs.Labeled(),
			SignalStrength:    obs.Signal,
			Frequency:         obs.Frequency,
			Channel:           obs.ResolvedChannel(),
			Timestamp:         obs.SeenAt,
			RecommendedAction: Advisory(attack, level, baseline),
			IsBaseline:        baseline,
			DetectionCount:    p.DetectionCount(),
			Reasons:           reasons,
		}
		if event != noTransition {
			snapshot = p.Clone()
		}
	})

	switch event {
	case learnedBaseline:
		e.logger.Info("Baseline learned", "ssid", snapshot.SSID, "bssid", key)
		e.subject.NotifyBaseline(snapshot)
	case confirmedAttack:
		e.logger.Warn("Attack confirmed",
			"ssid", snapshot.SSID,
			"bssid", key,
			"attack", snapshot.Evidence.Type.String(),
			"detections", snapshot.Evidence.Count,
		)
		e.subject.NotifyConfirmed(snapshot)
	}

	if result.Reasons == nil {
		result.Reasons = []string{}
	}
	return result, nil
}

func notLoadedResult(obs domain.Observation) domain.DetectionResult {
	return safeResult(obs, notLoadedAdvisory, domain.ErrModelNotLoaded.Error())
}

func failureResult(obs domain.Observation, err error) domain.DetectionResult {
	return safeResult(obs, "Detection unavailable for this network", "detection error: "+err.Error())
}

func safeResult(obs domain.Observation, advisory, reason string) domain.DetectionResult {
	return domain.DetectionResult{
		NetworkName:       obs.DisplayName(),
		BSSID:             obs.BSSID,
		AttackType:        domain.AttackSafe,
		ThreatLevel:       domain.ThreatSafe,
		Probabilities:     map[string]float64{},
		SignalStrength:    obs.Signal,
		Frequency:         obs.Frequency,
		Channel:           obs.ResolvedChannel(),
		Timestamp:         obs.SeenAt,
		RecommendedAction: advisory,
		Reasons:           []string{reason},
	}
}

// ClearTracking drops every profile and the SSID index.
func (e *Engine) ClearTracking() {
	e.registry.Clear()
	telemetry.TrackedProfiles.Set(0)
	e.logger.Info("Tracking cleared")
}

// LearnedNetworks returns every baseline access point, ordered by address.
func (e *Engine) LearnedNetworks() []domain.LearnedNetwork {
	return e.registry.Learned()
}

// Stats returns the engine state in structured form.
func (e *Engine) Stats() domain.TrackingStats {
	s := domain.TrackingStats{Loaded: e.IsLoaded()}
	for _, p := range e.registry.All() {
		s.Tracked++
		if p.IsBaseline() {
			s.Baseline++
		}
		if p.IsConfirmed() {
			s.Confirmed++
		}
	}
	if e.IsLoaded() {
		s.Features = e.extractor.Len()
		s.TestAccuracy = e.params.TestAccuracyPercent()
		s.ModelVersion = e.params.Metadata.ModelVersion
	}
	return s
}

// ModelInfo returns a human-readable summary of the engine state.
func (e *Engine) ModelInfo() string {
	s := e.Stats()
	var b strings.Builder

	if !s.Loaded {
		fmt.Fprintf(&b, "Detection model: NOT LOADED (%v)\n", e.loadErr)
	} else {
		fmt.Fprintf(&b, "Detection model: %s\n", valueOr(s.ModelVersion, "unversioned"))
	}
	fmt.Fprintf(&b, "Features: %d\n", s.Features)
	fmt.Fprintf(&b, "Test accuracy: %.2f%%\n", s.TestAccuracy)
	fmt.Fprintf(&b, "Thresholds: Evil Twin %.0f%%, Rogue AP %.0f%%\n", evilTwinThreshold*100, rogueAPThreshold*100)
	fmt.Fprintf(&b, "Tracked APs: %d\n", s.Tracked)
	fmt.Fprintf(&b, "Learned APs: %d\n", s.Baseline)
	fmt.Fprintf(&b, "Confirmed attacks: %d\n", s.Confirmed)
	return b.String()
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
