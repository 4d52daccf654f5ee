package reconciliation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubReader serves canned aggregate rows to the checks
type stubReader struct {
	batchLots     []BatchLotWeight
	growers       []PartyIntakePayment
	teams         []PartyIntakePayment
	exportWeights []ExportContainerWeight
	exportValues  []ExportInvoiceValue
	pallets       []ContainerPalletCount
	labour        []LabourCostRecord
	unpaid        []UnpaidGrower
	err           error
}

func (s *stubReader) BatchLotWeights(context.Context) ([]BatchLotWeight, error) {
	return s.batchLots, s.err
}
func (s *stubReader) GrowerIntakePayments(context.Context) ([]PartyIntakePayment, error) {
	return s.growers, s.err
}
func (s *stubReader) HarvestTeamIntakePayments(context.Context) ([]PartyIntakePayment, error) {
	return s.teams, s.err
}
func (s *stubReader) ExportContainerWeights(context.Context) ([]ExportContainerWeight, error) {
	return s.exportWeights, s.err
}
func (s *stubReader) ExportInvoiceValues(context.Context) ([]ExportInvoiceValue, error) {
	return s.exportValues, s.err
}
func (s *stubReader) ContainerPalletCounts(context.Context) ([]ContainerPalletCount, error) {
	return s.pallets, s.err
}
func (s *stubReader) LabourCostRecords(context.Context) ([]LabourCostRecord, error) {
	return s.labour, s.err
}
func (s *stubReader) UnpaidGrowers(context.Context) ([]UnpaidGrower, error) {
	return s.unpaid, s.err
}

func TestBatchLotWeightCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("four percent variance raises a low alert", func(t *testing.T) {
		r := &stubReader{batchLots: []BatchLotWeight{{
			BatchID:     uuid.New(),
			BatchNumber: "B-1001",
			NetWeightKg: d("1000"),
			LotWeightKg: d("960"),
		}}}

		alerts, err := BatchLotWeightCheck{}.Evaluate(ctx, r)
		require.NoError(t, err)
		require.Len(t, alerts, 1)

		a := alerts[0]
		assert.Equal(t, AlertTypeBatchLotWeight, a.AlertType)
		assert.Equal(t, SeverityLow, a.Severity)
		assert.True(t, a.VariancePct.Equal(d("4")))
		assert.True(t, a.Variance.Equal(d("-40")))
		assert.Equal(t, "kg", a.Unit)
		assert.Contains(t, a.Title, "B-1001")
	})

	t.Run("variance at exactly the tolerance is not reported", func(t *testing.T) {
		r := &stubReader{batchLots: []BatchLotWeight{{
			BatchNumber: "B-1002",
			NetWeightKg: d("1000"),
			LotWeightKg: d("980"),
		}}}

		alerts, err := BatchLotWeightCheck{}.Evaluate(ctx, r)
		require.NoError(t, err)
		assert.Empty(t, alerts)
	})

	t.Run("both weights zero reports nothing", func(t *testing.T) {
		r := &stubReader{batchLots: []BatchLotWeight{{
			BatchNumber: "B-1003",
			NetWeightKg: decimal.Zero,
			LotWeightKg: decimal.Zero,
		}}}

		alerts, err := BatchLotWeightCheck{}.Evaluate(ctx, r)
		require.NoError(t, err)
		assert.Empty(t, alerts)
	})
}

func TestGrowerPaymentCheck(t *testing.T) {
	t.Run("underpaid grower raises critical alert", func(t *testing.T) {
		growerID := uuid.New()
		r := &stubReader{growers: []PartyIntakePayment{{
			PartyID:    growerID,
			PartyName:  "Terraced Orchards",
			BatchCount: 3,
			IntakeKg:   d("5000"),
			PaidKg:     d("3000"),
		}}}

		alerts, err := GrowerPaymentCheck{}.Evaluate(context.Background(), r)
		require.NoError(t, err)
		require.Len(t, alerts, 1)

		a := alerts[0]
		assert.Equal(t, AlertTypeGrowerIntakePayment, a.AlertType)
		assert.Equal(t, SeverityCritical, a.Severity)
		assert.True(t, a.VariancePct.Equal(d("40")))
		assert.Equal(t, growerID.String(), a.EntityRefs["grower_id"])
	})

	t.Run("grower paid within tolerance is silent", func(t *testing.T) {
		r := &stubReader{growers: []PartyIntakePayment{{
			PartyName: "Quiet Grove",
			IntakeKg:  d("5000"),
			PaidKg:    d("4950"),
		}}}

		alerts, err := GrowerPaymentCheck{}.Evaluate(context.Background(), r)
		require.NoError(t, err)
		assert.Empty(t, alerts)
	})
}

func TestTeamPaymentCheck(t *testing.T) {
	teamID := uuid.New()
	r := &stubReader{teams: []PartyIntakePayment{{
		PartyID:    teamID,
		PartyName:  "North Crew",
		BatchCount: 2,
		IntakeKg:   d("2000"),
		PaidKg:     d("2300"),
	}}}

	alerts, err := TeamPaymentCheck{}.Evaluate(context.Background(), r)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertTypeTeamIntakePayment, alerts[0].AlertType)
	assert.Equal(t, SeverityHigh, alerts[0].Severity)
	assert.Equal(t, teamID.String(), alerts[0].EntityRefs["harvest_team_id"])
}

func TestExportWeightCheck(t *testing.T) {
	t.Run("loaded weight off by more than two percent alerts", func(t *testing.T) {
		r := &stubReader{exportWeights: []ExportContainerWeight{{
			ExportID:          uuid.New(),
			ExportNumber:      "EXP-01",
			HeaderWeightKg:    d("20000"),
			ContainerWeightKg: d("18000"),
		}}}

		alerts, err := ExportWeightCheck{}.Evaluate(context.Background(), r)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, AlertTypeExportInvoice, alerts[0].AlertType)
		assert.Equal(t, SeverityHigh, alerts[0].Severity)
	})

	t.Run("matching weights are silent", func(t *testing.T) {
		r := &stubReader{exportWeights: []ExportContainerWeight{{
			ExportNumber:      "EXP-02",
			HeaderWeightKg:    d("20000"),
			ContainerWeightKg: d("20000"),
		}}}

		alerts, err := ExportWeightCheck{}.Evaluate(context.Background(), r)
		require.NoError(t, err)
		assert.Empty(t, alerts)
	})
}

func TestExportValueCheck(t *testing.T) {
	t.Run("uses absolute tolerance of fifty currency units", func(t *testing.T) {
		r := &stubReader{exportValues: []ExportInvoiceValue{
			{ExportNumber: "EXP-10", Currency: "USD", HeaderValue: d("10000"), InvoiceTotal: d("10050"), InvoiceCount: 2},
			{ExportNumber: "EXP-11", Currency: "USD", HeaderValue: d("10000"), InvoiceTotal: d("10051"), InvoiceCount: 2},
		}}

		alerts, err := ExportValueCheck{}.Evaluate(context.Background(), r)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Contains(t, alerts[0].Title, "EXP-11")
		assert.Equal(t, "USD", alerts[0].Unit)
	})

	t.Run("header and invoices both zero are silent", func(t *testing.T) {
		r := &stubReader{exportValues: []ExportInvoiceValue{{
			ExportNumber: "EXP-12", Currency: "USD",
			HeaderValue: decimal.Zero, InvoiceTotal: decimal.Zero,
		}}}

		alerts, err := ExportValueCheck{}.Evaluate(context.Background(), r)
		require.NoError(t, err)
		assert.Empty(t, alerts)
	})

	t.Run("uninvoiced export alerts at full variance", func(t *testing.T) {
		r := &stubReader{exportValues: []ExportInvoiceValue{{
			ExportNumber: "EXP-13", Currency: "USD",
			HeaderValue: d("8000"), InvoiceTotal: decimal.Zero, InvoiceCount: 0,
		}}}

		alerts, err := ExportValueCheck{}.Evaluate(context.Background(), r)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, SeverityCritical, alerts[0].Severity)
	})
}

func TestContainerPalletCheck(t *testing.T) {
	t.Run("any non-zero delta alerts", func(t *testing.T) {
		r := &stubReader{pallets: []ContainerPalletCount{{
			ContainerID:     uuid.New(),
			ContainerNumber: "CONT-7",
			DeclaredCount:   24,
			LinkedCount:     23,
		}}}

		alerts, err := ContainerPalletCheck{}.Evaluate(context.Background(), r)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, AlertTypeContainerPallet, alerts[0].AlertType)
		assert.Equal(t, "pallets", alerts[0].Unit)
		assert.Equal(t, SeverityLow, alerts[0].Severity)
	})

	t.Run("exact match is silent", func(t *testing.T) {
		r := &stubReader{pallets: []ContainerPalletCount{{
			ContainerNumber: "CONT-8", DeclaredCount: 24, LinkedCount: 24,
		}}}

		alerts, err := ContainerPalletCheck{}.Evaluate(context.Background(), r)
		require.NoError(t, err)
		assert.Empty(t, alerts)
	})
}

func TestLabourCostCheck(t *testing.T) {
	workDate := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)

	t.Run("booked cost within tolerance is silent", func(t *testing.T) {
		// 8 hours at 20 with headcount 2 computes to 320; booked 300 is
		// within the 50 unit tolerance.
		r := &stubReader{labour: []LabourCostRecord{{
			RecordID: uuid.New(), WorkDate: workDate,
			Hours: d("8"), HourlyRate: d("20"), Headcount: 2, TotalCost: d("300"),
		}}}

		alerts, err := LabourCostCheck{}.Evaluate(context.Background(), r)
		require.NoError(t, err)
		assert.Empty(t, alerts)
	})

	t.Run("booked cost past tolerance alerts", func(t *testing.T) {
		r := &stubReader{labour: []LabourCostRecord{{
			RecordID: uuid.New(), WorkDate: workDate,
			Hours: d("8"), HourlyRate: d("20"), Headcount: 2, TotalCost: d("400"),
		}}}

		alerts, err := LabourCostCheck{}.Evaluate(context.Background(), r)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, AlertTypeLabourCost, alerts[0].AlertType)
		assert.True(t, alerts[0].ExpectedValue.Equal(d("320")))
		assert.True(t, alerts[0].ActualValue.Equal(d("400")))
	})

	t.Run("cost booked with zero inputs cannot be verified and always alerts", func(t *testing.T) {
		r := &stubReader{labour: []LabourCostRecord{{
			RecordID: uuid.New(), WorkDate: workDate,
			Hours: decimal.Zero, HourlyRate: d("20"), Headcount: 2, TotalCost: d("180"),
		}}}

		alerts, err := LabourCostCheck{}.Evaluate(context.Background(), r)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Contains(t, alerts[0].Title, "cannot be verified")
		assert.Equal(t, SeverityCritical, alerts[0].Severity)
	})

	t.Run("zero inputs with zero cost are silent", func(t *testing.T) {
		r := &stubReader{labour: []LabourCostRecord{{
			RecordID: uuid.New(), WorkDate: workDate,
			Hours: decimal.Zero, HourlyRate: decimal.Zero, Headcount: 0, TotalCost: decimal.Zero,
		}}}

		alerts, err := LabourCostCheck{}.Evaluate(context.Background(), r)
		require.NoError(t, err)
		assert.Empty(t, alerts)
	})
}

func TestUnpaidBatchesCheck(t *testing.T) {
	t.Run("grower without payments raises critical presence alert", func(t *testing.T) {
		growerID := uuid.New()
		r := &stubReader{unpaid: []UnpaidGrower{{
			GrowerID:         growerID,
			GrowerName:       "Hillside Farm",
			CompletedBatches: 4,
			DeliveredKg:      d("1200"),
		}}}

		alerts, err := UnpaidBatchesCheck{}.Evaluate(context.Background(), r)
		require.NoError(t, err)
		require.Len(t, alerts, 1)

		a := alerts[0]
		assert.Equal(t, AlertTypeUnpaidBatches, a.AlertType)
		assert.Equal(t, SeverityCritical, a.Severity)
		assert.True(t, a.ExpectedValue.IsZero())
		assert.True(t, a.ActualValue.Equal(d("1200")))
		assert.Equal(t, growerID.String(), a.EntityRefs["grower_id"])
	})

	t.Run("zero delivered weight is silent", func(t *testing.T) {
		r := &stubReader{unpaid: []UnpaidGrower{{
			GrowerName: "Empty Farm", CompletedBatches: 1, DeliveredKg: decimal.Zero,
		}}}

		alerts, err := UnpaidBatchesCheck{}.Evaluate(context.Background(), r)
		require.NoError(t, err)
		assert.Empty(t, alerts)
	})
}

func TestPipelineEvaluate(t *testing.T) {
	t.Run("collects candidates across checks", func(t *testing.T) {
		r := &stubReader{
			batchLots: []BatchLotWeight{{BatchNumber: "B-1", NetWeightKg: d("1000"), LotWeightKg: d("900")}},
			unpaid:    []UnpaidGrower{{GrowerName: "G", CompletedBatches: 1, DeliveredKg: d("100")}},
		}

		alerts, err := DefaultPipeline().Evaluate(context.Background(), r)
		require.NoError(t, err)
		assert.Len(t, alerts, 2)
	})

	t.Run("first failing check aborts the pass", func(t *testing.T) {
		r := &stubReader{err: errors.New("relation does not exist")}

		alerts, err := DefaultPipeline().Evaluate(context.Background(), r)
		assert.Nil(t, alerts)
		assert.ErrorIs(t, err, ErrCheckFailed)

		var checkErr *CheckError
		require.ErrorAs(t, err, &checkErr)
		assert.Equal(t, AlertTypeBatchLotWeight, checkErr.CheckType)
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := DefaultPipeline().Evaluate(ctx, &stubReader{})
		assert.ErrorIs(t, err, ErrCheckFailed)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("is deterministic over unchanged data", func(t *testing.T) {
		r := &stubReader{
			batchLots: []BatchLotWeight{{BatchNumber: "B-9", NetWeightKg: d("500"), LotWeightKg: d("430")}},
			growers:   []PartyIntakePayment{{PartyName: "G-9", BatchCount: 1, IntakeKg: d("500"), PaidKg: d("100")}},
		}

		first, err := DefaultPipeline().Evaluate(context.Background(), r)
		require.NoError(t, err)
		second, err := DefaultPipeline().Evaluate(context.Background(), r)
		require.NoError(t, err)

		require.Len(t, second, len(first))
		for i := range first {
			assert.Equal(t, first[i].AlertType, second[i].AlertType)
			assert.Equal(t, first[i].Title, second[i].Title)
			assert.Equal(t, first[i].Description, second[i].Description)
			assert.Equal(t, first[i].Severity, second[i].Severity)
			assert.True(t, first[i].ExpectedValue.Equal(second[i].ExpectedValue))
			assert.True(t, first[i].ActualValue.Equal(second[i].ActualValue))
		}
	})
}
