package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuota_DangerBelowThreshold(t *testing.T) {
	gw := &fakeGateway{UsageSnap: models.QuotaSnapshot{UsedBytes: 900 * common.MiB, EffectiveQuotaBytes: common.GiB}}
	q := NewQuotaService(gw, testUser, 0, 0, nil)

	snap, err := q.Usage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 124*common.MiB, snap.Remaining())
	assert.Equal(t, models.SeverityDanger, q.Severity(snap))
}

func TestQuota_Severity(t *testing.T) {
	q := NewQuotaService(&fakeGateway{}, testUser, 0, common.GiB, nil)

	tests := []struct {
		name string
		snap models.QuotaSnapshot
		want models.Severity
	}{
		{"plenty left", models.QuotaSnapshot{UsedBytes: common.GiB, EffectiveQuotaBytes: 5 * common.GiB}, models.SeverityOK},
		{"more than half used", models.QuotaSnapshot{UsedBytes: 3 * common.GiB, EffectiveQuotaBytes: 5 * common.GiB}, models.SeverityWarning},
		{"exactly threshold left", models.QuotaSnapshot{UsedBytes: 4 * common.GiB, EffectiveQuotaBytes: 5 * common.GiB}, models.SeverityDanger},
		{"over quota", models.QuotaSnapshot{UsedBytes: 6 * common.GiB, EffectiveQuotaBytes: 5 * common.GiB}, models.SeverityDanger},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, q.Severity(tt.snap))
		})
	}
}

func TestQuota_AnonymousUsesFreeTier(t *testing.T) {
	gw := &fakeGateway{}
	q := NewQuotaService(gw, common.AnonymousUserID, 0, 0, nil)

	snap, err := q.Usage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.QuotaSnapshot{UsedBytes: 0, EffectiveQuotaBytes: DefaultFreeBaseQuota}, snap)
	assert.Zero(t, gw.Calls)
}

func TestQuota_ZeroEffectiveFallsBackToFreeTier(t *testing.T) {
	gw := &fakeGateway{UsageSnap: models.QuotaSnapshot{UsedBytes: 10}}
	q := NewQuotaService(gw, testUser, 2*common.GiB, 0, nil)

	snap, err := q.Usage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2*common.GiB, snap.EffectiveQuotaBytes)
}

func TestQuota_CanCreate(t *testing.T) {
	ctx := context.Background()

	full := NewQuotaService(&fakeGateway{UsageSnap: models.QuotaSnapshot{UsedBytes: common.GiB, EffectiveQuotaBytes: common.GiB}}, testUser, 0, 0, nil)
	require.ErrorIs(t, full.CanCreate(ctx), common.ErrQuotaExceeded)

	roomy := NewQuotaService(&fakeGateway{UsageSnap: models.QuotaSnapshot{UsedBytes: 1, EffectiveQuotaBytes: common.GiB}}, testUser, 0, 0, nil)
	require.NoError(t, roomy.CanCreate(ctx))

	offline := NewQuotaService(&fakeGateway{UsageErr: errors.New("down")}, testUser, 0, 0, nil)
	require.NoError(t, offline.CanCreate(ctx))
}
