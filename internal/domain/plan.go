package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NetworkType identifies a medical plan's network design
type NetworkType string

const (
	NetworkHMO NetworkType = "hmo" // referrals, OON covered for emergencies only
	NetworkPPO NetworkType = "ppo" // some OON coverage, subject to an OON cap
	NetworkEPO NetworkType = "epo" // no referrals, no OON coverage
)

// ParseNetworkType parses a case-insensitive network type name
func ParseNetworkType(s string) (NetworkType, error) {
	switch NetworkType(strings.ToLower(strings.TrimSpace(s))) {
	case NetworkHMO:
		return NetworkHMO, nil
	case NetworkPPO:
		return NetworkPPO, nil
	case NetworkEPO:
		return NetworkEPO, nil
	}
	return "", NewConfigurationError("parse_network_type", "unknown network type %q (valid: hmo, ppo, epo)", s)
}

// String returns the upper-case display form, e.g. "HMO"
func (nt NetworkType) String() string {
	return strings.ToUpper(string(nt))
}

// probabilityTolerance bounds the rounding allowed when tier probabilities are summed.
var probabilityTolerance = decimal.New(1, -9)

// Tier is one severity level of post-stabilization out-of-network exposure.
type Tier struct {
	Name        string          `yaml:"name" json:"name"`
	Exposure    decimal.Decimal `yaml:"exposure" json:"exposure"`
	Probability decimal.Decimal `yaml:"probability" json:"probability"`
}

// PostStabilizationTierModel describes the extra exposure a member faces when
// care continues out of network after emergency stabilization and a consent
// waiver is signed. Build it with NewPostStabilizationTierModel.
type PostStabilizationTierModel struct {
	tiers                   []Tier
	groundAmbulanceExposure decimal.Decimal
	waiverProbability       decimal.Decimal
}

// NewPostStabilizationTierModel validates and builds a tier model. Tier
// probabilities must sum to 1.
func NewPostStabilizationTierModel(tiers []Tier, groundAmbulance, waiverProbability decimal.Decimal) (*PostStabilizationTierModel, error) {
	const op = "new_tier_model"

	if len(tiers) == 0 {
		return nil, NewConfigurationError(op, "at least one tier is required")
	}
	if groundAmbulance.IsNegative() {
		return nil, NewConfigurationError(op, "ground ambulance exposure cannot be negative")
	}
	if !isFraction(waiverProbability) {
		return nil, NewConfigurationError(op, "waiver probability must be between 0 and 1, got %s", waiverProbability.String())
	}

	seen := make(map[string]bool, len(tiers))
	sum := decimal.Zero
	for i, t := range tiers {
		if t.Name == "" {
			return nil, NewConfigurationError(op, "tier %d: name is required", i)
		}
		if seen[t.Name] {
			return nil, NewConfigurationError(op, "duplicate tier name %q", t.Name)
		}
		seen[t.Name] = true
		if t.Exposure.IsNegative() {
			return nil, NewConfigurationError(op, "tier %q: exposure cannot be negative", t.Name)
		}
		if !isFraction(t.Probability) {
			return nil, NewConfigurationError(op, "tier %q: probability must be between 0 and 1, got %s", t.Name, t.Probability.String())
		}
		sum = sum.Add(t.Probability)
	}
	if sum.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(probabilityTolerance) {
		return nil, NewConfigurationError(op, "tier probabilities must sum to 1, got %s", sum.String())
	}

	copied := make([]Tier, len(tiers))
	copy(copied, tiers)
	return &PostStabilizationTierModel{
		tiers:                   copied,
		groundAmbulanceExposure: groundAmbulance,
		waiverProbability:       waiverProbability,
	}, nil
}

// Tiers returns a copy of the ordered tiers
func (m *PostStabilizationTierModel) Tiers() []Tier {
	out := make([]Tier, len(m.tiers))
	copy(out, m.tiers)
	return out
}

// Tier looks up a tier by name
func (m *PostStabilizationTierModel) Tier(name string) (Tier, bool) {
	for _, t := range m.tiers {
		if t.Name == name {
			return t, true
		}
	}
	return Tier{}, false
}

// GroundAmbulanceExposure is charged on every post-stabilization event regardless of tier.
func (m *PostStabilizationTierModel) GroundAmbulanceExposure() decimal.Decimal {
	return m.groundAmbulanceExposure
}

// WaiverProbability is the chance a consent waiver is signed once stabilized.
// It is descriptive only: the tiers already assume a signed waiver, and no
// score or scenario probability reads it.
func (m *PostStabilizationTierModel) WaiverProbability() decimal.Decimal {
	return m.waiverProbability
}

// expected returns sum(p_i x f(e_i)) over the tiers
func (m *PostStabilizationTierModel) expected(f func(decimal.Decimal) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, t := range m.tiers {
		total = total.Add(t.Probability.Mul(f(t.Exposure)))
	}
	return total
}

// TierSelection picks which post-stabilization outcome to resolve: a single
// named tier, or the probability-weighted expected case.
type TierSelection struct {
	Tier     string
	Expected bool
}

// SelectTier selects a named tier
func SelectTier(name string) TierSelection {
	return TierSelection{Tier: name}
}

// ExpectedTier selects the probability-weighted expectation across tiers.
// Feeding it to a geometric mean loses tail sensitivity; the standard scenario
// sets emit one scenario per tier instead.
func ExpectedTier() TierSelection {
	return TierSelection{Expected: true}
}

func (s TierSelection) String() string {
	if s.Expected {
		return "expected"
	}
	return s.Tier
}

// NetworkRules is the network-specific out-of-network model of a medical plan.
// Only ClosedNetwork and PPONetwork implement it.
type NetworkRules interface {
	Type() NetworkType
	PostStabilization() *PostStabilizationTierModel
	ResolveOONExposure(sel TierSelection) (decimal.Decimal, error)
	validate() error
}

// ClosedNetwork covers HMO and EPO plans: no OON cost-sharing, no OON cap.
type ClosedNetwork struct {
	Network NetworkType
	Tiers   *PostStabilizationTierModel

	// PostStabilizationCovered removes the tier exposure; ground ambulance remains.
	PostStabilizationCovered bool
}

func (c ClosedNetwork) Type() NetworkType { return c.Network }

func (c ClosedNetwork) PostStabilization() *PostStabilizationTierModel { return c.Tiers }

// ResolveOONExposure returns ground ambulance plus the selected tier's exposure.
func (c ClosedNetwork) ResolveOONExposure(sel TierSelection) (decimal.Decimal, error) {
	if err := c.validate(); err != nil {
		return decimal.Zero, err
	}
	ambulance := c.Tiers.GroundAmbulanceExposure()
	if c.PostStabilizationCovered {
		if err := checkSelection(c.Tiers, sel); err != nil {
			return decimal.Zero, err
		}
		return ambulance, nil
	}
	identity := func(e decimal.Decimal) decimal.Decimal { return e }
	extra, err := resolveTier(c.Tiers, sel, identity)
	if err != nil {
		return decimal.Zero, err
	}
	return ambulance.Add(extra), nil
}

func (c ClosedNetwork) validate() error {
	if c.Network != NetworkHMO && c.Network != NetworkEPO {
		return NewConfigurationError("validate_network", "closed network must be HMO or EPO, got %q", c.Network)
	}
	if c.Tiers == nil {
		return NewConfigurationError("validate_network", "%s plan requires a post-stabilization tier model", c.Network)
	}
	return nil
}

// PPONetwork carries the out-of-network cost-sharing of a PPO plan.
type PPONetwork struct {
	Tiers          *PostStabilizationTierModel
	OONDeductible  decimal.Decimal
	OONCoinsurance decimal.Decimal // member share after the deductible, 0.0-1.0
	OONOOPMax      decimal.Decimal

	// BillCapped charges min(bill, deductible) when the bill is under the
	// deductible. By default the member owes the full deductible.
	BillCapped bool
}

func (p PPONetwork) Type() NetworkType { return NetworkPPO }

func (p PPONetwork) PostStabilization() *PostStabilizationTierModel { return p.Tiers }

// ResolveOONExposure applies OON cost-sharing to the selected tier, caps it at
// the OON out-of-pocket maximum, then adds ground ambulance.
func (p PPONetwork) ResolveOONExposure(sel TierSelection) (decimal.Decimal, error) {
	if err := p.validate(); err != nil {
		return decimal.Zero, err
	}
	extra, err := resolveTier(p.Tiers, sel, p.memberShare)
	if err != nil {
		return decimal.Zero, err
	}
	return extra.Add(p.Tiers.GroundAmbulanceExposure()), nil
}

// memberShare is min(cap, ded + (e - ded)+ x coinsurance)
func (p PPONetwork) memberShare(billed decimal.Decimal) decimal.Decimal {
	share := p.OONDeductible
	if p.BillCapped {
		share = decimal.Min(billed, p.OONDeductible)
	}
	if over := billed.Sub(p.OONDeductible); over.IsPositive() {
		share = share.Add(over.Mul(p.OONCoinsurance))
	}
	return decimal.Min(p.OONOOPMax, share)
}

func (p PPONetwork) validate() error {
	const op = "validate_network"
	if p.Tiers == nil {
		return NewConfigurationError(op, "PPO plan requires a post-stabilization tier model")
	}
	if p.OONDeductible.IsNegative() {
		return NewConfigurationError(op, "OON deductible cannot be negative")
	}
	if !isFraction(p.OONCoinsurance) {
		return NewConfigurationError(op, "OON coinsurance must be between 0 and 1, got %s", p.OONCoinsurance.String())
	}
	if p.OONOOPMax.IsNegative() {
		return NewConfigurationError(op, "OON out-of-pocket max cannot be negative")
	}
	return nil
}

func resolveTier(m *PostStabilizationTierModel, sel TierSelection, share func(decimal.Decimal) decimal.Decimal) (decimal.Decimal, error) {
	if sel.Expected {
		return m.expected(share), nil
	}
	t, ok := m.Tier(sel.Tier)
	if !ok {
		return decimal.Zero, NewConfigurationError("resolve_oon_exposure", "unknown post-stabilization tier %q", sel.Tier)
	}
	return share(t.Exposure), nil
}

func checkSelection(m *PostStabilizationTierModel, sel TierSelection) error {
	if sel.Expected {
		return nil
	}
	if _, ok := m.Tier(sel.Tier); !ok {
		return NewConfigurationError("resolve_oon_exposure", "unknown post-stabilization tier %q", sel.Tier)
	}
	return nil
}

// MedicalPlan is a medical insurance plan with its cost-sharing structure
type MedicalPlan struct {
	Name             string
	AnnualPremium    decimal.Decimal
	InNetworkOOPMax  decimal.Decimal
	Deductible       decimal.Decimal
	ExpectedMinorOOP decimal.Decimal // OOP of a typical low-use year

	// EmergencyAtInNetworkRates applies in-network cost-sharing to OON
	// emergencies. When false an emergency is charged at twice the OOP max.
	EmergencyAtInNetworkRates bool

	Network NetworkRules
}

// NetworkType returns the plan's network type
func (mp *MedicalPlan) NetworkType() NetworkType {
	if mp.Network == nil {
		return ""
	}
	return mp.Network.Type()
}

// EmergencyOOP returns the in-network portion of an out-of-network emergency
func (mp *MedicalPlan) EmergencyOOP() decimal.Decimal {
	if mp.EmergencyAtInNetworkRates {
		return mp.InNetworkOOPMax
	}
	return mp.InNetworkOOPMax.Mul(decimal.NewFromInt(2))
}

// Validate checks the plan's static invariants
func (mp *MedicalPlan) Validate() error {
	const op = "validate_medical_plan"
	if mp.Name == "" {
		return NewConfigurationError(op, "plan name is required")
	}
	if mp.AnnualPremium.IsNegative() {
		return NewConfigurationError(op, "plan %q: annual premium cannot be negative", mp.Name)
	}
	if mp.InNetworkOOPMax.IsNegative() {
		return NewConfigurationError(op, "plan %q: in-network OOP max cannot be negative", mp.Name)
	}
	if mp.Deductible.IsNegative() {
		return NewConfigurationError(op, "plan %q: deductible cannot be negative", mp.Name)
	}
	if mp.ExpectedMinorOOP.IsNegative() {
		return NewConfigurationError(op, "plan %q: expected minor OOP cannot be negative", mp.Name)
	}
	if mp.Network == nil {
		return NewConfigurationError(op, "plan %q: network rules are required", mp.Name)
	}
	if err := mp.Network.validate(); err != nil {
		return &ConfigurationError{Operation: op, Message: fmt.Sprintf("plan %q", mp.Name), Cause: err}
	}
	return nil
}

// AddOnPlan is a dental or vision add-on
type AddOnPlan struct {
	Name          string          `yaml:"name" json:"name"`
	AnnualPremium decimal.Decimal `yaml:"annual_premium" json:"annualPremium"`
	ExpectedOOP   decimal.Decimal `yaml:"expected_oop" json:"expectedOOP"`
}

// DentalPlan is a dental insurance add-on
type DentalPlan = AddOnPlan

// VisionPlan is a vision insurance add-on
type VisionPlan = AddOnPlan

func (a *AddOnPlan) validate(kind string) error {
	const op = "validate_add_on"
	if a.Name == "" {
		return NewConfigurationError(op, "%s plan name is required", kind)
	}
	if a.AnnualPremium.IsNegative() {
		return NewConfigurationError(op, "%s plan %q: annual premium cannot be negative", kind, a.Name)
	}
	if a.ExpectedOOP.IsNegative() {
		return NewConfigurationError(op, "%s plan %q: expected OOP cannot be negative", kind, a.Name)
	}
	return nil
}

// PlanBundle is one medical plan with optional dental and vision add-ons
type PlanBundle struct {
	Medical MedicalPlan
	Dental  *DentalPlan
	Vision  *VisionPlan
}

// Name returns the medical plan's name, which identifies the bundle
func (pb *PlanBundle) Name() string {
	return pb.Medical.Name
}

// TotalPremium sums the annual premium of every present component
func (pb *PlanBundle) TotalPremium() decimal.Decimal {
	total := pb.Medical.AnnualPremium
	if pb.Dental != nil {
		total = total.Add(pb.Dental.AnnualPremium)
	}
	if pb.Vision != nil {
		total = total.Add(pb.Vision.AnnualPremium)
	}
	return total
}

// AddOnOOP is the expected dental and vision OOP, charged in every scenario
func (pb *PlanBundle) AddOnOOP() decimal.Decimal {
	total := decimal.Zero
	if pb.Dental != nil {
		total = total.Add(pb.Dental.ExpectedOOP)
	}
	if pb.Vision != nil {
		total = total.Add(pb.Vision.ExpectedOOP)
	}
	return total
}

// ResolveOONExposure resolves the waiver-signed post-stabilization exposure
// under the medical plan's network rules.
func (pb *PlanBundle) ResolveOONExposure(sel TierSelection) (decimal.Decimal, error) {
	if pb.Medical.Network == nil {
		return decimal.Zero, NewConfigurationError("resolve_oon_exposure", "plan %q has no network rules", pb.Medical.Name)
	}
	return pb.Medical.Network.ResolveOONExposure(sel)
}

// Validate checks every component of the bundle
func (pb *PlanBundle) Validate() error {
	if err := pb.Medical.Validate(); err != nil {
		return err
	}
	if pb.Dental != nil {
		if err := pb.Dental.validate("dental"); err != nil {
			return err
		}
	}
	if pb.Vision != nil {
		if err := pb.Vision.validate("vision"); err != nil {
			return err
		}
	}
	return nil
}

func isFraction(d decimal.Decimal) bool {
	return !d.IsNegative() && !d.GreaterThan(decimal.NewFromInt(1))
}
