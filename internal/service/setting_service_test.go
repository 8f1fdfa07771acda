package service

import (
	"errors"
	"testing"
	"time"

	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/models"
)

type mockSettingRepo struct {
	store map[string]models.JSON
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{store: map[string]models.JSON{}}
}

func (m *mockSettingRepo) Get(key string) (*models.Setting, error) {
	value, ok := m.store[key]
	if !ok {
		return nil, nil
	}
	return &models.Setting{Key: key, Value: value}, nil
}

func (m *mockSettingRepo) Put(setting *models.Setting) error {
	m.store[setting.Key] = setting.Value
	return nil
}

func TestUpdateReferralSettingNormalized(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())

	result, err := svc.Put(constants.SettingKeyReferralConfig, map[string]interface{}{
		"referral_active":     "on",
		"commission_rate":     "1.7",
		"bonus_days":          "-3",
		"min_referral_payout": 4.567,
		"extra":               "drop",
	}, 1)
	if err != nil {
		t.Fatalf("update referral config failed: %v", err)
	}
	if result["referral_active"] != true {
		t.Fatalf("expected referral_active true, got %v", result["referral_active"])
	}
	if rate, ok := settingFloat(result["commission_rate"]); !ok || rate != 1 {
		t.Fatalf("expected commission_rate clamped to 1, got %v", result["commission_rate"])
	}
	if days, ok := settingInt(result["bonus_days"]); !ok || days != 0 {
		t.Fatalf("expected bonus_days clamped to 0, got %v", result["bonus_days"])
	}
	if minPayout, ok := settingFloat(result["min_referral_payout"]); !ok || minPayout != 4.57 {
		t.Fatalf("expected min_referral_payout 4.57, got %v", result["min_referral_payout"])
	}
	if _, ok := result["extra"]; ok {
		t.Fatalf("unexpected extra field kept: %v", result)
	}
}

func TestGetReferralSettingFallsBackToDefaults(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())

	setting, err := svc.GetReferralSetting()
	if err != nil {
		t.Fatalf("get referral setting failed: %v", err)
	}
	if !setting.ReferralActive || setting.CommissionRate != 0.10 || setting.BonusDays != 0 {
		t.Fatalf("unexpected defaults: %+v", setting)
	}
	if setting.BonusExpiresAt(time.Now()) != nil {
		t.Fatalf("zero bonus days must mean unlimited")
	}
}

func TestUpdateReferralSettingRejectsInvalidRaw(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())

	_, err := svc.UpdateReferralSetting(ReferralSetting{ReferralActive: true, CommissionRate: 1.5}, 1)
	if !errors.Is(err, ErrReferralConfigInvalid) {
		t.Fatalf("expected ErrReferralConfigInvalid, got %v", err)
	}
	_, err = svc.UpdateReferralSetting(ReferralSetting{ReferralActive: true, CommissionRate: 0.2, BonusDays: -1}, 1)
	if !errors.Is(err, ErrReferralConfigInvalid) {
		t.Fatalf("expected ErrReferralConfigInvalid for negative days, got %v", err)
	}

	saved, err := svc.UpdateReferralSetting(ReferralSetting{ReferralActive: false, CommissionRate: 0.25, BonusDays: 30, MinPayout: 10}, 1)
	if err != nil {
		t.Fatalf("update referral setting failed: %v", err)
	}
	loaded, err := svc.GetReferralSetting()
	if err != nil {
		t.Fatalf("reload referral setting failed: %v", err)
	}
	if loaded != saved || loaded.ReferralActive || loaded.BonusDays != 30 {
		t.Fatalf("unexpected round trip: saved=%+v loaded=%+v", saved, loaded)
	}
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if expires := loaded.BonusExpiresAt(from); expires == nil || !expires.Equal(from.AddDate(0, 0, 30)) {
		t.Fatalf("unexpected bonus expiry: %v", expires)
	}
}

func TestSettingBool(t *testing.T) {
	cases := map[interface{}]bool{
		true:    true,
		"yes":   true,
		" On ":  true,
		"0":     false,
		1.0:     true,
		0:       false,
		nil:     false,
		"maybe": false,
		"off":   false,
	}
	for raw, want := range cases {
		if got := settingBool(raw); got != want {
			t.Fatalf("settingBool(%v) expected %v got %v", raw, want, got)
		}
	}
}

func TestReferralSettingKeepsFallbackForMissingKeys(t *testing.T) {
	fallback := ReferralDefaultSetting()
	got := referralSettingFromJSON(models.JSON{"commission_rate": "0.2"}, fallback)
	if got.CommissionRate != 0.2 {
		t.Fatalf("expected commission_rate 0.2, got %v", got.CommissionRate)
	}
	if got.MinPayout != fallback.MinPayout || got.ReferralActive != fallback.ReferralActive {
		t.Fatalf("missing keys must keep fallback values: %+v", got)
	}
	if got := referralSettingFromJSON(models.JSON{"bonus_days": nil}, ReferralSetting{BonusDays: 7}); got.BonusDays != 0 {
		t.Fatalf("null bonus_days must mean unlimited, got %d", got.BonusDays)
	}
}
