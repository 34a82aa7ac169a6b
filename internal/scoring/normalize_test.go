package scoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sproutsell/agricredit/internal/contracts"
)

func TestNormalizeEmptyPayload(t *testing.T) {
	input := Normalize(RawAssessment{})

	assert.Equal(t, 0.0, input.FarmData.FarmSizeHectares)
	assert.Equal(t, 0, input.FarmData.YearsExperience)
	assert.Equal(t, contracts.DefaultFarmType, input.FarmData.FarmType)
	assert.NotNil(t, input.FarmData.MainCrops)
	assert.Empty(t, input.FarmData.MainCrops)

	assert.Equal(t, 0.0, input.FinancialData.AnnualRevenue)
	assert.Equal(t, 0, input.FinancialData.FinancialReadiness)

	assert.Equal(t, contracts.UnknownValue, input.LocationData.Region)
	assert.Equal(t, contracts.UnknownValue, input.LocationData.Country)

	assert.Nil(t, input.Mpesa)
}

func TestNormalizeClampsNegatives(t *testing.T) {
	raw := RawAssessment{
		FarmData: &RawFarmData{
			FarmSize:        -3,
			YearsExperience: -1,
		},
		FinancialData: &RawFinancialData{
			AnnualRevenue:      -5000,
			ExistingDebt:       -100,
			FinancialReadiness: -4,
		},
		Mpesa: &RawMpesaData{
			TotalInflows: -200,
			InflowCount:  -7,
		},
	}

	input := Normalize(raw)

	assert.Equal(t, 0.0, input.FarmData.FarmSizeHectares)
	assert.Equal(t, 0, input.FarmData.YearsExperience)
	assert.Equal(t, 0.0, input.FinancialData.AnnualRevenue)
	assert.Equal(t, 0.0, input.FinancialData.ExistingDebt)
	assert.Equal(t, 0, input.FinancialData.FinancialReadiness)

	require.NotNil(t, input.Mpesa)
	assert.Equal(t, 0.0, input.Mpesa.TotalInflows)
	assert.Equal(t, 0, input.Mpesa.InflowCount)
}

func TestNormalizePrefersCanonicalFarmSize(t *testing.T) {
	raw := RawAssessment{
		FarmData: &RawFarmData{
			FarmSize:         4,
			FarmSizeHectares: 10,
		},
	}

	input := Normalize(raw)
	assert.Equal(t, 10.0, input.FarmData.FarmSizeHectares)

	// Legacy field used when the canonical one is absent
	input = Normalize(RawAssessment{FarmData: &RawFarmData{FarmSize: 4}})
	assert.Equal(t, 4.0, input.FarmData.FarmSizeHectares)
}

func TestNormalizeReadinessClampedToTen(t *testing.T) {
	raw := RawAssessment{
		FinancialData: &RawFinancialData{FinancialReadiness: 42},
	}

	input := Normalize(raw)
	assert.Equal(t, 10, input.FinancialData.FinancialReadiness)
}

func TestNumberUnmarshalTolerant(t *testing.T) {
	tests := []struct {
		name string
		json string
		want float64
	}{
		{"plain number", `{"v": 12.5}`, 12.5},
		{"quoted number", `{"v": "8"}`, 8},
		{"quoted with comma", `{"v": "12,500"}`, 12500},
		{"garbage", `{"v": "lots"}`, 0},
		{"null", `{"v": null}`, 0},
		{"empty string", `{"v": ""}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dest struct {
				V Number `json:"v"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.json), &dest))
			assert.Equal(t, tt.want, float64(dest.V))
		})
	}
}

func TestNormalizeMalformedJSONBody(t *testing.T) {
	// A partial body with wrong-typed numerics must still decode and
	// normalize without error.
	body := `{"farmData":{"farmSize":"ten","farmType":"dairy"},"financialData":{"annualRevenue":"50000"}}`

	var raw RawAssessment
	require.NoError(t, json.Unmarshal([]byte(body), &raw))

	input := Normalize(raw)
	assert.Equal(t, 0.0, input.FarmData.FarmSizeHectares)
	assert.Equal(t, "dairy", input.FarmData.FarmType)
	assert.Equal(t, 50000.0, input.FinancialData.AnnualRevenue)
}

func TestAssessmentToRawRoundTrip(t *testing.T) {
	input := contracts.FarmerAssessmentInput{
		FarmData: contracts.FarmData{
			FarmSizeHectares: 7,
			FarmType:         "mixed",
			YearsExperience:  3,
			MainCrops:        []string{"maize", "beans"},
		},
		FinancialData: contracts.FinancialData{
			AnnualRevenue:      40000,
			FinancialReadiness: 4,
		},
		LocationData: contracts.LocationData{Region: "Nakuru", Country: "Kenya"},
		Mpesa:        &contracts.MpesaData{TotalInflows: 1000, InflowCount: 12},
	}

	got := Normalize(AssessmentToRaw(input))
	assert.Equal(t, input, got)
}
