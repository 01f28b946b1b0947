package charts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/heliowatt/heliowatt/internal/domain/simulation"
)

func TestRenderMonthly(t *testing.T) {
	months := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	rows := make([]simulation.MonthlyRow, 0, len(months))
	for i, month := range months {
		rows = append(rows, simulation.MonthlyRow{
			Month:         month,
			ACKWh:         400 + float64(i)*20,
			SpecificYield: 80 + float64(i)*4,
		})
	}

	var buf bytes.Buffer
	err := RenderMonthly(&buf, simulation.Report{Monthly: rows})
	require.NoError(t, err)

	pngMagic := []byte{0x89, 'P', 'N', 'G'}
	require.Greater(t, buf.Len(), len(pngMagic))
	require.Equal(t, pngMagic, buf.Bytes()[:len(pngMagic)])
}

func TestRenderMonthly_NoSeries(t *testing.T) {
	var buf bytes.Buffer
	err := RenderMonthly(&buf, simulation.Report{})
	require.Error(t, err)
	require.Zero(t, buf.Len())
}
